package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lessonforge/internal/content"
	"lessonforge/internal/loader"
	"lessonforge/internal/manifest"
)

var (
	// Global flags
	verbose      bool
	manifestPath string
	contentDir   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lessonforge",
	Short: "lessonforge - on-demand lesson artifact loader",
	Long: `lessonforge serves the 120-lesson curriculum of the interactive
pointer-learning app without fetching everything up front.

Lessons are resolved through a per-range name registry, cached with TTL
expiry, and preloaded per group under a priority-tiered batch schedule.
Failed or unpublished lessons degrade to a placeholder instead of an error.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadManifest reads the manifest flag, falling back to the built-in
// deployment manifest when no file is given.
func loadManifest() (*manifest.Manifest, error) {
	if manifestPath == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(manifestPath)
}

// buildService wires the full loader stack from the manifest and the
// file-backed content loader.
func buildService(m *manifest.Manifest) (*loader.Service, error) {
	cfg, err := m.ServiceConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	dir := contentDir
	if dir == "" {
		dir = m.Lessons.ContentDir
	}
	fl := content.NewFileLoader(dir, logger)

	return loader.New(m.Catalog(), m.Registry(), fl.Load, content.Placeholder, cfg)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "path to the deployment manifest (default: built-in)")
	rootCmd.PersistentFlags().StringVarP(&contentDir, "content", "c", "", "lesson content directory (default: from manifest)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(preloadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
