package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/docker/go-units"

	"github.com/oshokin/lmod-packager/internal/config"
	"github.com/oshokin/lmod-packager/internal/domain/mod"
	"github.com/oshokin/lmod-packager/internal/logger"
	"github.com/oshokin/lmod-packager/internal/repository/project"
	"github.com/oshokin/lmod-packager/internal/service/archive"
	"github.com/oshokin/lmod-packager/internal/service/descriptor"
	"github.com/oshokin/lmod-packager/internal/service/installer"
	"github.com/oshokin/lmod-packager/internal/service/integrity"
	"github.com/oshokin/lmod-packager/internal/service/resolver"
	"github.com/oshokin/lmod-packager/internal/service/staging"
)

// Options contains inputs for the packager entry point.
// Empty strings and false flags leave the settings file values untouched.
type Options struct {
	// ProjectDir is the project root; defaults to the working directory.
	ProjectDir string
	// ConfigPath is the settings file (defaults to lmod-packager.yaml);
	// relative paths are taken from ProjectDir.
	ConfigPath string
	// HostDir overrides the host package directory.
	HostDir string
	// OutputDir overrides the archive output directory.
	OutputDir string
	// LogLevel overrides the log level.
	LogLevel string
	// NoVerify skips re-reading the archive before installation.
	NoVerify bool
	// SaveConfig persists the effective settings to ConfigPath.
	SaveConfig bool
}

// Report summarizes a successful run.
type Report struct {
	// Name is the package name from the project config.
	Name string
	// ArchivePath is the archive written to the output directory.
	ArchivePath string
	// InstalledPath is the archive copy inside the host package directory.
	InstalledPath string
	// Dependencies is the number of distinct dependency directories staged.
	Dependencies int
	// Files is the number of files recorded in the descriptor.
	Files int
	// Size is the archive size in bytes.
	Size int64
}

// packager holds the state of one run. Callers use Run.
type packager struct {
	settings *config.Config
	projects *project.FileRepository
	root     string
}

var errNotADirectory = errors.New("project path is not a directory")

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	_, err := Package(ctx, opts)

	return err
}

// Package executes the packaging workflow and returns a summary of what was produced.
func Package(ctx context.Context, opts *Options) (*Report, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lmod-packager")

	if opts == nil {
		opts = new(Options)
	}

	pkg, err := newPackager(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("initialize packager: %w", err)
	}

	report, err := pkg.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("packager failed: %w", err)
	}

	logger.InfoKV(ctx, "Package installed",
		"name", report.Name,
		"path", report.InstalledPath,
		"size", units.HumanSize(float64(report.Size)),
	)

	return report, nil
}

// newPackager loads the settings and applies the command-line overrides.
// A relative settings path is resolved against the project directory.
func newPackager(ctx context.Context, opts *Options) (*packager, error) {
	root := opts.ProjectDir
	if root == "" {
		root = "."
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	if err = ensureDir(root); err != nil {
		return nil, err
	}

	configPath := settingsPath(root, opts.ConfigPath)

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	applyOverrides(settings, opts)

	if err = config.Validate(settings); err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if opts.SaveConfig {
		if err = config.Save(configPath, settings); err != nil {
			return nil, fmt.Errorf("save settings: %w", err)
		}

		logger.InfoKV(ctx, "Saved settings", "path", configPath)
	}

	return &packager{
		settings: settings,
		projects: project.NewFileRepository(),
		root:     root,
	}, nil
}

func settingsPath(root, configPath string) string {
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	if filepath.IsAbs(configPath) {
		return configPath
	}

	return filepath.Join(root, configPath)
}

func applyOverrides(settings *config.Config, opts *Options) {
	if opts.HostDir != "" {
		settings.HostDir = opts.HostDir
	}

	if opts.OutputDir != "" {
		settings.OutputDir = opts.OutputDir
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if opts.NoVerify {
		verify := false
		settings.Verify = &verify
	}
}

// Run performs every phase in order. The scratch directory is released on return.
func (p *packager) Run(ctx context.Context) (report *Report, err error) {
	ctx = logger.WithKV(ctx, "project", p.root)

	cfg, created, err := p.projects.LoadConfig(p.root)
	if err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}

	if created {
		logger.WarnKV(ctx, "No project config found, created one from package.json",
			"path", filepath.Join(p.root, mod.DescriptorFilename))
	}

	logger.InfoKV(ctx, "Packaging", "name", cfg.Name, "version", cfg.Version)

	resolved, err := resolver.New(p.root, p.projects).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	for _, cycle := range resolved.Cycles {
		logger.WarnKV(ctx, "Dependency cycle was cut", "chain", cycle.String())
	}

	workspace, err := staging.Acquire(ctx, p.root)
	if err != nil {
		return nil, fmt.Errorf("acquire staging directory: %w", err)
	}

	defer func() {
		if releaseErr := workspace.Release(ctx); releaseErr != nil {
			logger.ErrorKV(ctx, "Failed to remove staging directory", "path", workspace.Root(), "error", releaseErr)

			if err == nil {
				err = fmt.Errorf("release staging directory: %w", releaseErr)
				report = nil
			}
		}
	}()

	if err = workspace.StageDependencies(ctx, resolved.Dependencies); err != nil {
		return nil, fmt.Errorf("stage dependencies: %w", err)
	}

	ignore := staging.NewIgnoreSet(append(slices.Clone(cfg.Ignore), config.DefaultConfigFilename)...).
		WithOutputDir(p.root, p.settings.OutputDir)
	if err = workspace.StageProject(ctx, ignore); err != nil {
		return nil, fmt.Errorf("stage project: %w", err)
	}

	digests, err := integrity.Compute(ctx, workspace.Root(), func(relPath string, hashed int) {
		logger.DebugKV(ctx, "Hashed file", "path", relPath, "count", hashed)
	})
	if err != nil {
		return nil, fmt.Errorf("compute digests: %w", err)
	}

	logger.InfoKV(ctx, "Computed digests", "files", len(digests))

	desc := descriptor.Build(cfg, digests)
	if _, err = descriptor.Write(workspace.Root(), desc); err != nil {
		return nil, fmt.Errorf("write descriptor: %w", err)
	}

	archivePath := filepath.Join(p.outputDir(), archive.Filename(cfg.Name))

	stats, err := archive.Pack(ctx, workspace.Root(), archivePath, func(progress mod.Progress) {
		logger.DebugKV(ctx, "Archived entry",
			"entry", progress.Entry,
			"progress", fmt.Sprintf("%.1f%%", progress.Percent()),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	logger.InfoKV(ctx, "Created archive",
		"path", stats.Path,
		"entries", stats.Entries,
		"size", units.HumanSize(float64(stats.Size)),
	)

	if p.settings.ShouldVerify() {
		if _, err = archive.Verify(stats.Path); err != nil {
			return nil, fmt.Errorf("verify archive: %w", err)
		}

		logger.Debug(ctx, "Archive verified")
	}

	p.warnIfHostRunning(ctx)

	installed, err := installer.Install(ctx, stats.Path, p.settings.HostDir, stats.Checksum)
	if err != nil {
		return nil, fmt.Errorf("install package: %w", err)
	}

	return &Report{
		Name:          cfg.Name,
		ArchivePath:   stats.Path,
		InstalledPath: installed,
		Dependencies:  workspace.CopiedCount(),
		Files:         len(digests),
		Size:          stats.Size,
	}, nil
}

// outputDir resolves the configured output directory against the project root.
func (p *packager) outputDir() string {
	if filepath.IsAbs(p.settings.OutputDir) {
		return p.settings.OutputDir
	}

	return filepath.Join(p.root, p.settings.OutputDir)
}

func (p *packager) warnIfHostRunning(ctx context.Context) {
	running, err := installer.HostRunning(p.settings.HostProcess)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if running {
		logger.WarnKV(ctx, "Host is running, restart it to load the new package", "process", p.settings.HostProcess)
	}
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat project directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errNotADirectory, path)
	}

	return nil
}
