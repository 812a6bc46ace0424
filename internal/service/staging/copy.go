package staging

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DirMode is used for every directory created in the staging tree.
const DirMode = 0o755

// skipFunc decides whether a top-level entry of a copied directory is left out.
type skipFunc func(name string) bool

// copyTree copies src into dst recursively. skip only applies to the direct
// children of src.
func copyTree(ctx context.Context, src, dst string, skip skipFunc) error {
	if err := os.MkdirAll(dst, DirMode); err != nil {
		return fmt.Errorf("create directory %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return err
		}

		if skip != nil && skip(entry.Name()) {
			continue
		}

		if err = copyEntry(ctx, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// copyEntry copies one file or directory. Symlinked files are followed,
// symlinked directories and special files are skipped.
func copyEntry(ctx context.Context, src, dst string) error {
	linfo, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	info := linfo
	if linfo.Mode()&fs.ModeSymlink != 0 {
		info, err = os.Stat(src)
		if err != nil {
			return fmt.Errorf("follow symlink %s: %w", src, err)
		}

		if info.IsDir() {
			return nil
		}
	}

	switch {
	case info.IsDir():
		return copyTree(ctx, src, dst, nil)
	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())
	default:
		return nil
	}
}

// copyFile copies file contents byte-for-byte.
func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	if err = os.MkdirAll(filepath.Dir(dst), DirMode); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, closeErr)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	return nil
}
