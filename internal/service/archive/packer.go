package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/service/integrity"
)

// Extension is appended to the package name to form the archive filename.
const Extension = ".lmod"

// DefaultName is used when the project has no name.
const DefaultName = "mod"

// Stats describes a finished archive.
type Stats struct {
	// Path is the archive location.
	Path string
	// Size is the archive size in bytes.
	Size int64
	// Entries is the number of files and directories archived.
	Entries int
	// Checksum is the digest of the archive bytes as written.
	Checksum []byte
}

// Filename returns "<name>.lmod", falling back to DefaultName.
func Filename(name string) string {
	if name == "" {
		name = DefaultName
	}

	return name + Extension
}

// CountEntries returns the number of files and directories below root.
func CountEntries(root string) (int, error) {
	total := 0

	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != root {
			total++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count entries of %s: %w", root, err)
	}

	return total, nil
}

// Pack writes the tree under root to outputPath, replacing any existing file.
// onProgress, when set, is called once per archived entry.
func Pack(ctx context.Context, root, outputPath string, onProgress mod.ProgressFunc) (*Stats, error) {
	total, err := CountEntries(root)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	output, err := os.Create(filepath.Clean(outputPath))
	if err != nil {
		return nil, fmt.Errorf("create archive %s: %w", outputPath, err)
	}

	var (
		reader, writer = io.Pipe()
		group, gctx    = errgroup.WithContext(ctx)
		hasher         = integrity.DefaultChecksumFunction.New()
		size           int64
	)

	group.Go(func() error {
		produceErr := writeArchive(gctx, root, writer, total, onProgress)
		_ = writer.CloseWithError(produceErr)

		return produceErr
	})

	group.Go(func() error {
		var consumeErr error

		size, consumeErr = io.Copy(io.MultiWriter(output, hasher), reader)
		if consumeErr != nil {
			_ = reader.CloseWithError(consumeErr)
			return fmt.Errorf("write archive: %w", consumeErr)
		}

		return nil
	})

	err = group.Wait()
	if closeErr := output.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close archive: %w", closeErr)
	}

	if err != nil {
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf("pack %s: %w", root, err)
	}

	return &Stats{
		Path:     outputPath,
		Size:     size,
		Entries:  total,
		Checksum: hasher.Sum(nil),
	}, nil
}

// writeArchive walks root in lexical order and writes a zip stream to w.
func writeArchive(ctx context.Context, root string, w io.Writer, total int, onProgress mod.ProgressFunc) error {
	zipWriter := zip.NewWriter(w)
	zipWriter.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	processed := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err = ctx.Err(); err != nil {
			return err
		}

		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		name := filepath.ToSlash(rel)

		if err = addEntry(zipWriter, path, name, d); err != nil {
			return err
		}

		processed++

		if onProgress != nil {
			onProgress(mod.Progress{Entry: name, Processed: processed, Total: total})
		}

		return nil
	})
	if walkErr != nil {
		_ = zipWriter.Close()
		return walkErr
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	return nil
}

// addEntry writes a directory marker or a deflated file.
func addEntry(zipWriter *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header for %s: %w", path, err)
	}

	if d.IsDir() {
		header.Name = name + "/"
		header.Method = zip.Store

		if _, err = zipWriter.CreateHeader(header); err != nil {
			return fmt.Errorf("add directory %s: %w", name, err)
		}

		return nil
	}

	header.Name = name
	header.Method = zip.Deflate

	entry, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add file %s: %w", name, err)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	if _, err = io.Copy(entry, file); err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}

	return nil
}
