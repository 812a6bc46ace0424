package descriptor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/repository/project"
	"github.com/oshokin/lmod-packager/internal/version"
)

// FileMode is used for the descriptor written into the staging root.
const FileMode = 0o644

// Build assembles the descriptor from the merged project configuration and
// the digests of the staged tree. digests is attached as is.
func Build(cfg *mod.Config, digests mod.Digests) *mod.Descriptor {
	if cfg == nil {
		cfg = new(mod.Config)
	}

	if digests == nil {
		digests = make(mod.Digests)
	}

	dependencies := cfg.Dependencies
	if dependencies == nil {
		dependencies = mod.NewDependencyMap()
	}

	return &mod.Descriptor{
		Name:         cfg.Name,
		Version:      cfg.Version,
		Description:  cfg.Description,
		Entry:        cfg.Entry,
		SDKVersion:   version.SDKVersion,
		Integrity:    digests,
		Dependencies: dependencies,
	}
}

// Write stores desc as <root>/mod.json and returns the file path.
func Write(root string, desc *mod.Descriptor) (string, error) {
	data, err := project.MarshalIndent(desc)
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %w", err)
	}

	path := filepath.Join(root, mod.DescriptorFilename)
	if err = os.WriteFile(path, data, FileMode); err != nil {
		return "", fmt.Errorf("write descriptor %s: %w", path, err)
	}

	return path, nil
}
