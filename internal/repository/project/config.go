package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
)

// ConfigFilePermissions is used when writing mod.json back to the project.
const ConfigFilePermissions = 0o644

// ReadConfig parses <dir>/mod.json.
func (r *FileRepository) ReadConfig(dir string) (*mod.Config, error) {
	path := filepath.Join(dir, mod.DescriptorFilename)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg mod.Config
	if err = json.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return &cfg, nil
}

// WriteConfig stores cfg as <dir>/mod.json.
func (r *FileRepository) WriteConfig(dir string, cfg *mod.Config) error {
	data, err := MarshalIndent(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := filepath.Join(dir, mod.DescriptorFilename)
	if err = os.WriteFile(filepath.Clean(path), data, ConfigFilePermissions); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

// DefaultConfig derives project defaults from the root manifest.
// A missing manifest yields defaults with only the entry point set.
func (r *FileRepository) DefaultConfig(dir string) (*mod.Config, error) {
	manifest, err := r.ReadManifest(dir)

	switch {
	case errors.Is(err, ErrNotFound):
		manifest = new(Manifest)
	case err != nil:
		return nil, err
	}

	cfg := &mod.Config{
		Name:         manifest.Name,
		Entry:        manifest.Main,
		Version:      manifest.Version,
		Description:  manifest.Description,
		Author:       string(manifest.Author),
		Dependencies: manifest.Dependencies,
	}

	if cfg.Entry == "" {
		cfg.Entry = mod.DefaultEntry
	}

	return cfg, nil
}

// LoadConfig returns the merged project configuration. When mod.json is
// absent the defaults, including the manifest dependencies, are written back
// to it and created is true. Otherwise dependencies come from mod.json only.
func (r *FileRepository) LoadConfig(dir string) (cfg *mod.Config, created bool, err error) {
	defaults, err := r.DefaultConfig(dir)
	if err != nil {
		return nil, false, err
	}

	user, err := r.ReadConfig(dir)

	switch {
	case errors.Is(err, ErrNotFound):
		if err = r.WriteConfig(dir, defaults); err != nil {
			return nil, false, err
		}

		return defaults, true, nil
	case err != nil:
		return nil, false, err
	}

	// An existing mod.json owns the dependency map; absent means empty.
	defaults.Dependencies = nil

	return mod.MergeConfig(defaults, user), false, nil
}

// MarshalIndent encodes v as JSON indented with four spaces, without HTML escaping.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
