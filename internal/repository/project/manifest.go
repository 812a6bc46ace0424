package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
)

// ManifestFilename is the per-directory package manifest.
const ManifestFilename = "package.json"

// ErrNotFound is returned when the requested file does not exist.
var ErrNotFound = errors.New("file not found")

// Manifest is the subset of package.json the packager reads.
type Manifest struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Description  string             `json:"description"`
	Main         string             `json:"main"`
	Author       Person             `json:"author"`
	Dependencies *mod.DependencyMap `json:"dependencies"`
}

// Person is a package.json person field, given either as a string or as an object.
type Person string

// UnmarshalJSON accepts "Name <mail> (url)" strings and {name, email, url} objects.
func (p *Person) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = Person(text)
		return nil
	}

	var object struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		URL   string `json:"url"`
	}

	if err := json.Unmarshal(data, &object); err != nil {
		return fmt.Errorf("person must be a string or an object: %w", err)
	}

	parts := make([]string, 0, 3)
	if object.Name != "" {
		parts = append(parts, object.Name)
	}

	if object.Email != "" {
		parts = append(parts, "<"+object.Email+">")
	}

	if object.URL != "" {
		parts = append(parts, "("+object.URL+")")
	}

	*p = Person(strings.Join(parts, " "))

	return nil
}

// DependencyCount returns the number of declared dependencies.
func (m *Manifest) DependencyCount() int {
	if m == nil || m.Dependencies == nil {
		return 0
	}

	return m.Dependencies.Len()
}

// ManifestReader loads the manifest stored in a directory.
type ManifestReader interface {
	ReadManifest(dir string) (*Manifest, error)
}

// FileRepository reads project files from disk.
type FileRepository struct{}

// NewFileRepository creates a repository backed by the local filesystem.
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// ReadManifest parses <dir>/package.json.
func (r *FileRepository) ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err = json.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	return &manifest, nil
}
