package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/lmod-packager/internal/logger"
)

// Config holds packager settings that are not part of the project itself.
type Config struct {
	// HostDir is the host package directory the archive is installed into.
	HostDir string `yaml:"host_dir"`
	// OutputDir is where the archive is written, relative to the project root unless absolute.
	OutputDir string `yaml:"output_dir"`
	// HostProcess is the executable name of the host, used to warn when it is running.
	HostProcess string `yaml:"host_process"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Verify re-reads the finished archive and checks every digest before installing.
	Verify *bool `yaml:"verify,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for packager settings.
	DefaultConfigFilename = "lmod-packager.yaml"

	// DefaultOutputDir is the project-local directory receiving the archive.
	DefaultOutputDir = "dist"

	// DefaultHostProcess is the executable name of the host application.
	DefaultHostProcess = "lilith"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	hostHomeDir  = "lilith"
	hostPackages = "mods"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned for log levels ParseLogLevel does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// DefaultHostDir returns ~/lilith/mods.
func DefaultHostDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, hostHomeDir, hostPackages), nil
}

// Load reads settings from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
		}
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills unset fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if strings.TrimSpace(cfg.HostProcess) == "" {
		cfg.HostProcess = DefaultHostProcess
	}

	if strings.TrimSpace(cfg.HostDir) == "" {
		hostDir, err := DefaultHostDir()
		if err != nil {
			return err
		}

		cfg.HostDir = hostDir
	}

	if cfg.Verify == nil {
		verify := true
		cfg.Verify = &verify
	}

	return nil
}

// ShouldVerify reports whether the archive is verified before installation.
func (c *Config) ShouldVerify() bool {
	return c.Verify == nil || *c.Verify
}
