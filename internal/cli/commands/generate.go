package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/lookgen/internal/cookbook"
	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/generator"
	"github.com/leapstack-labs/lookgen/internal/warn"
	"github.com/spf13/cobra"
)

// generateFlags holds flags local to the generate command.
type generateFlags struct {
	selectModels       []string
	tag                string
	exposuresOnly      bool
	exposuresTag       string
	buildExplore       bool
	useTableName       bool
	allHidden          bool
	implicitPrimaryKey bool
	folderStructure    string
	removeSchemaPrefix string
	jobs               int
	watch              bool
	dryRun             bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate LookML view files from dbt artifacts",
		Long: `Generate reads manifest.json and catalog.json from the dbt target
directory and writes one .view.lkml file per selected model. Nested
ARRAY and STRUCT columns become separate views; with --build-explore a
hidden explore joining them via UNNEST is emitted as well.`,
		Example: `  # Generate views for every model
  lookgen generate

  # Only models with a dbt tag, with explores
  lookgen generate --tag looker --build-explore

  # Select specific models and apply a recipe file
  lookgen generate --select orders customers --cookbook recipes.yaml

  # Regenerate whenever dbt artifacts change
  lookgen generate --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, &flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.selectModels, "select", "s", nil, "Generate only the named models")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "Generate only models carrying this dbt tag")
	cmd.Flags().BoolVar(&flags.exposuresOnly, "exposures-only", false, "Generate only models referenced by exposures")
	cmd.Flags().StringVar(&flags.exposuresTag, "exposures-tag", "", "Restrict exposure references to exposures with this tag")
	cmd.Flags().BoolVar(&flags.buildExplore, "build-explore", false, "Emit a hidden explore with UNNEST joins per model")
	cmd.Flags().BoolVar(&flags.useTableName, "use-table-name", false, "Name files after the physical table instead of the model")
	cmd.Flags().BoolVar(&flags.allHidden, "all-hidden", false, "Mark every generated dimension as hidden")
	cmd.Flags().BoolVar(&flags.implicitPrimaryKey, "implicit-primary-key", false, "Mark the first root dimension as primary key")
	cmd.Flags().StringVar(&flags.folderStructure, "folder-structure", "", "Output grouping: dataset or dbt")
	cmd.Flags().StringVar(&flags.removeSchemaPrefix, "remove-schema-prefix", "", "Prefix stripped from dataset folder names")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Number of models generated in parallel")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Watch the target directory and regenerate on changes")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Render without writing files")

	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	// Local flags override config file and env values
	if cmd.Flags().Changed("folder-structure") {
		cfg.FolderStructure = flags.folderStructure
	}
	if cmd.Flags().Changed("remove-schema-prefix") {
		cfg.RemoveSchemaPrefix = flags.removeSchemaPrefix
	}
	if cmd.Flags().Changed("use-table-name") {
		cfg.UseTableName = flags.useTableName
	}
	if cmd.Flags().Changed("build-explore") {
		cfg.BuildExplore = flags.buildExplore
	}
	if cmd.Flags().Changed("all-hidden") {
		cfg.AllHidden = flags.allHidden
	}
	if cmd.Flags().Changed("implicit-primary-key") {
		cfg.ImplicitPrimaryKey = flags.implicitPrimaryKey
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = flags.jobs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateTargetDir(); err != nil {
		return err
	}

	run := func() error {
		return generateOnce(cmd, cmdCtx, flags)
	}

	if err := run(); err != nil {
		return err
	}

	if flags.watch {
		logger.Info("watching for artifact changes", "target_dir", cfg.TargetDir)
		return generator.Watch(cmd.Context(), logger, cfg.TargetDir, run)
	}
	return nil
}

func generateOnce(cmd *cobra.Command, cmdCtx *CommandContext, flags *generateFlags) error {
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger
	warnings := &warn.Collector{}

	manifest, catalog, err := loadArtifacts(cfg.TargetDir)
	if err != nil {
		return err
	}

	var cb *cookbook.Cookbook
	if cfg.Cookbook != "" {
		cb, err = cookbook.LoadFile(cfg.Cookbook, warnings)
		if err != nil {
			return fmt.Errorf("failed to load cookbook %s: %w", cfg.Cookbook, err)
		}
		logger.Debug("cookbook loaded", "path", cfg.Cookbook, "recipes", len(cb.Recipes))
	}

	parser := dbt.NewParser(manifest, catalog)
	models := parser.Models(dbt.FilterOptions{
		Select:        flags.selectModels,
		Tag:           flags.tag,
		ExposuresOnly: flags.exposuresOnly,
		ExposuresTag:  flags.exposuresTag,
	}, warnings)
	if len(models) == 0 {
		return fmt.Errorf("no models matched the given filters")
	}

	gen := generator.New(logger, cb, generator.Options{
		OutputDir:          cfg.OutputDir,
		FolderStructure:    cfg.FolderStructure,
		RemoveSchemaPrefix: cfg.RemoveSchemaPrefix,
		UseTableName:       cfg.UseTableName,
		BuildExplore:       cfg.BuildExplore,
		AllHidden:          cfg.AllHidden,
		ImplicitPrimaryKey: cfg.ImplicitPrimaryKey,
		Concurrency:        cfg.Jobs,
		DryRun:             flags.dryRun,
	})

	result, err := gen.Generate(cmd.Context(), models)
	if err != nil {
		return err
	}

	printGenerateSummary(cmd, result, warnings, flags.dryRun)
	return nil
}

// printGenerateSummary writes the per-file table and the deduplicated
// warning list to the command's output.
func printGenerateSummary(cmd *cobra.Command, result *generator.Result, warnings *warn.Collector, dryRun bool) {
	w := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "File", "Views"})
	for _, f := range result.Files {
		t.AppendRow(table.Row{f.Model, f.Path, f.Views})
	}
	t.Render()

	verb := "written"
	if dryRun {
		verb = "rendered (dry run)"
	}
	_, _ = fmt.Fprintf(w, "%d files %s\n", len(result.Files), verb)

	for _, msg := range result.Warnings {
		warnings.Add(msg)
	}
	if all := warnings.Sorted(); len(all) > 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\n%d warnings:\n", len(all))
		for _, msg := range all {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", msg)
		}
	}
}
