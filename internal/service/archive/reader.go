package archive

import (
	"archive/zip"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/service/integrity"
)

var (
	// ErrIntegrityMismatch is returned when archive contents disagree with the descriptor.
	ErrIntegrityMismatch = errors.New("integrity mismatch")
	// ErrNoDescriptor is returned when the archive carries no mod.json.
	ErrNoDescriptor = errors.New("archive has no descriptor")

	errUnsafePath = errors.New("entry escapes destination")
)

// ReadDescriptor decodes the mod.json stored in the archive.
func ReadDescriptor(archivePath string) (desc *mod.Descriptor, err error) {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	return readDescriptor(&reader.Reader)
}

func readDescriptor(reader *zip.Reader) (*mod.Descriptor, error) {
	for _, file := range reader.File {
		if file.Name != mod.DescriptorFilename {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open descriptor: %w", err)
		}

		var desc mod.Descriptor

		err = json.NewDecoder(rc).Decode(&desc)
		_ = rc.Close()

		if err != nil {
			return nil, fmt.Errorf("decode descriptor: %w", err)
		}

		return &desc, nil
	}

	return nil, ErrNoDescriptor
}

// Verify checks that every file in the archive except the descriptor is
// listed in the descriptor with a matching digest, and that nothing listed
// is missing. It returns the decoded descriptor.
func Verify(archivePath string) (*mod.Descriptor, error) {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	desc, err := readDescriptor(&reader.Reader)
	if err != nil {
		return nil, err
	}

	var (
		problems []string
		seen     = make(map[string]struct{}, len(desc.Integrity))
	)

	for _, file := range reader.File {
		if file.FileInfo().IsDir() || file.Name == mod.DescriptorFilename {
			continue
		}

		seen[file.Name] = struct{}{}

		expected, listed := desc.Integrity[file.Name]
		if !listed {
			problems = append(problems, "unlisted "+file.Name)
			continue
		}

		actual, digestErr := entryDigest(file)
		if digestErr != nil {
			return nil, digestErr
		}

		if actual != expected {
			problems = append(problems, "modified "+file.Name)
		}
	}

	for name := range desc.Integrity {
		if _, ok := seen[name]; !ok {
			problems = append(problems, "missing "+name)
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return nil, fmt.Errorf("%w: %s", ErrIntegrityMismatch, strings.Join(problems, ", "))
	}

	return desc, nil
}

func entryDigest(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open entry %s: %w", file.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	sum, err := integrity.ReaderChecksum(rc)
	if err != nil {
		return "", fmt.Errorf("digest entry %s: %w", file.Name, err)
	}

	return hex.EncodeToString(sum), nil
}

// Extract unpacks the archive into dest, creating it if needed.
func Extract(archivePath, dest string) (err error) {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = reader.Close()
		return fmt.Errorf("%w: %s", errUnsafePath, archivePath)
	}

	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	if err = os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	for _, file := range reader.File {
		target := filepath.Join(absDest, filepath.FromSlash(file.Name))

		rel, relErr := filepath.Rel(absDest, target)
		if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", errUnsafePath, file.Name)
		}

		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

			continue
		}

		if err = extractFile(file, target); err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}

	return nil
}

func extractFile(file *zip.File, target string) (err error) {
	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := file.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = rc.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm()|0o200)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // Packages are produced locally; size is bounded by the staging tree.
	_, err = io.Copy(out, rc)

	return err
}
