package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/lookgen/internal/cli/config"
	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	jobs := config.DefaultJobs
	if v := os.Getenv("LOOKGEN_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			jobs = n
		}
	}

	return &config.Config{
		TargetDir:          getEnvOrDefault("LOOKGEN_TARGET_DIR", config.DefaultTargetDir),
		OutputDir:          getEnvOrDefault("LOOKGEN_OUTPUT_DIR", config.DefaultOutputDir),
		Cookbook:           os.Getenv("LOOKGEN_COOKBOOK"),
		FolderStructure:    getEnvOrDefault("LOOKGEN_FOLDER_STRUCTURE", config.DefaultFolderStructure),
		RemoveSchemaPrefix: os.Getenv("LOOKGEN_REMOVE_SCHEMA_PREFIX"),
		Jobs:               jobs,
		Verbose:            os.Getenv("LOOKGEN_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadArtifacts reads and parses the dbt manifest and catalog from the
// target directory.
func loadArtifacts(targetDir string) (*dbt.Manifest, *dbt.Catalog, error) {
	manifestData, err := os.ReadFile(filepath.Join(targetDir, "manifest.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	manifest, err := dbt.ParseManifest(manifestData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	catalogData, err := os.ReadFile(filepath.Join(targetDir, "catalog.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	catalog, err := dbt.ParseCatalog(catalogData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return manifest, catalog, nil
}
