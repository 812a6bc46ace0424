package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lmod-packager/internal/config"
	"github.com/oshokin/lmod-packager/internal/logger"
	"github.com/oshokin/lmod-packager/internal/service/packager"
	"github.com/oshokin/lmod-packager/internal/version"
)

var (
	// options collects flag values for the packager run.
	options packager.Options

	// rootCmd represents the base command for packaging a project.
	rootCmd = &cobra.Command{
		Use:   "lmod-packager [project-dir]",
		Short: "Package a project and its node_modules dependencies as an .lmod archive",
		Long: "Resolves the project's node_modules tree, stages a deduplicated copy with the project files, " +
			"writes mod.json with SHA-256 digests, zips it into <output-dir>/<name>.lmod and installs it " +
			"into the host package directory as mod.lmod.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ProjectDir = args[0]
			}

			return packager.Run(ctx, &options)
		},
	}
)

// Execute runs the lmod-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "Packaging failed", "error", err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to settings file, relative to the project directory")
	flags.StringVar(&options.HostDir, "host-dir", "", "host package directory (default ~/lilith/mods)")
	flags.StringVar(&options.OutputDir, "output-dir", "", "archive output directory (default dist)")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&options.NoVerify, "no-verify", false, "skip verifying the archive before installing it")
	flags.BoolVar(&options.SaveConfig, "save-config", false, "persist the effective settings to the settings file")
}
