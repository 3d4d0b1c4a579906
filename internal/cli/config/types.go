// Package config provides configuration management for the lookgen CLI.
//
// Configuration is assembled from defaults, an optional lookgen.yaml file,
// LOOKGEN_-prefixed environment variables, and CLI flags, in increasing
// order of precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	TargetDir          string `koanf:"target_dir"`
	OutputDir          string `koanf:"output_dir"`
	Cookbook           string `koanf:"cookbook"`
	FolderStructure    string `koanf:"folder_structure"`
	RemoveSchemaPrefix string `koanf:"remove_schema_prefix"`
	UseTableName       bool   `koanf:"use_table_name"`
	BuildExplore       bool   `koanf:"build_explore"`
	AllHidden          bool   `koanf:"all_hidden"`
	ImplicitPrimaryKey bool   `koanf:"implicit_primary_key"`
	Jobs               int    `koanf:"jobs"`
	Verbose            bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultTargetDir       = "./target"
	DefaultOutputDir       = "."
	DefaultFolderStructure = "dataset"
	DefaultJobs            = 4
)
