package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// validFolderStructures enumerates accepted folder_structure values.
var validFolderStructures = map[string]bool{
	"dataset": true,
	"dbt":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TargetDir == "" {
		return fmt.Errorf("target_dir is required")
	}
	if !validFolderStructures[c.FolderStructure] {
		return fmt.Errorf("invalid folder_structure %q: must be \"dataset\" or \"dbt\"", c.FolderStructure)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}

// ValidateTargetDir checks that the dbt target directory exists and holds
// the artifacts lookgen reads.
func (c *Config) ValidateTargetDir() error {
	if _, err := os.Stat(c.TargetDir); os.IsNotExist(err) {
		return fmt.Errorf("target directory does not exist: %s\nHint: run dbt docs generate, or use --target-dir to point at the dbt target directory", c.TargetDir)
	}
	for _, name := range []string{"manifest.json", "catalog.json"} {
		artifact := filepath.Join(c.TargetDir, name)
		if _, err := os.Stat(artifact); os.IsNotExist(err) {
			return fmt.Errorf("missing dbt artifact: %s\nHint: run dbt docs generate to produce manifest.json and catalog.json", artifact)
		}
	}
	return nil
}
