package integrity

import (
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/lmod-packager/internal/domain/mod"

	// Register SHA-256 for DefaultChecksumFunction.
	_ "crypto/sha256"
)

// DefaultChecksumFunction is used for every digest in the descriptor.
const DefaultChecksumFunction crypto.Hash = crypto.SHA256

var errHashUnavailable = errors.New("hash function unavailable")

// FileChecksum returns the raw digest of the file at path.
func FileChecksum(path string) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	return ReaderChecksum(file)
}

// ReaderChecksum digests everything r yields.
func ReaderChecksum(r io.Reader) ([]byte, error) {
	hasher := DefaultChecksumFunction.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// FileDigest returns the hex-encoded digest of the file at path.
func FileDigest(path string) (string, error) {
	sum, err := FileChecksum(path)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(sum), nil
}

// Compute hashes every regular file under root. onFile, when set, is called
// after each file with its relative path and the running count.
func Compute(ctx context.Context, root string, onFile mod.HashFunc) (mod.Digests, error) {
	digests := make(mod.Digests)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		digest, err := FileDigest(path)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(rel)
		digests[key] = digest

		if onFile != nil {
			onFile(key, len(digests))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute integrity digests: %w", err)
	}

	return digests, nil
}
