// Package generator orchestrates LookML generation: cookbook application,
// structure decomposition, view building, rendering, and file writing.
package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/lookgen/internal/cookbook"
	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/lookml"
	"github.com/leapstack-labs/lookgen/internal/warn"
)

// Folder structure modes for generated files.
const (
	FolderByDataset = "dataset"
	FolderByDbt     = "dbt"
)

// Options configures a generation run.
type Options struct {
	// OutputDir is the root directory for generated files.
	OutputDir string
	// FolderStructure selects how files are grouped: by BigQuery dataset
	// or by dbt folder layout.
	FolderStructure string
	// RemoveSchemaPrefix is stripped from dataset folder names.
	RemoveSchemaPrefix string
	// UseTableName names files after the physical table instead of the
	// model.
	UseTableName bool
	// BuildExplore emits a hidden explore with unnest joins per model.
	BuildExplore bool
	// AllHidden forces all generated dimensions to hidden.
	AllHidden bool
	// ImplicitPrimaryKey marks the first root dimension as primary key.
	ImplicitPrimaryKey bool
	// Concurrency bounds the number of models generated in parallel.
	// Zero means sequential.
	Concurrency int
	// DryRun renders without writing files.
	DryRun bool
}

// File describes one generated LookML file.
type File struct {
	Model string
	Path  string
	Views int
}

// Result is the outcome of a generation run.
type Result struct {
	RunID    string
	Files    []File
	Warnings []string
}

// Generator converts typed dbt models into LookML view files.
type Generator struct {
	logger   *slog.Logger
	cookbook *cookbook.Cookbook
	opts     Options
}

// New creates a generator. The cookbook may be nil; no recipes are
// applied then.
func New(logger *slog.Logger, cb *cookbook.Cookbook, opts Options) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.FolderStructure == "" {
		opts.FolderStructure = FolderByDataset
	}
	return &Generator{logger: logger, cookbook: cb, opts: opts}
}

// Generate renders every model and writes the resulting files.
// Models are independent, so they are processed in parallel workers;
// warnings are merged into one deduplicated list on the result.
func (g *Generator) Generate(ctx context.Context, models []*dbt.Model) (*Result, error) {
	runID := uuid.NewString()
	g.logger.Info("starting generation", "run_id", runID, "models", len(models))

	var mu sync.Mutex
	var files []File
	warnings := &warn.Collector{}

	eg, ctx := errgroup.WithContext(ctx)
	if g.opts.Concurrency > 0 {
		eg.SetLimit(g.opts.Concurrency)
	} else {
		eg.SetLimit(1)
	}

	for _, model := range models {
		model := model
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, modelWarnings, err := g.generateModel(model)
			if err != nil {
				return fmt.Errorf("model %s: %w", model.Name, err)
			}
			mu.Lock()
			files = append(files, file)
			warnings.Merge(modelWarnings)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	g.logger.Info("generation finished",
		"run_id", runID, "files", len(files), "warnings", warnings.Len())

	return &Result{
		RunID:    runID,
		Files:    files,
		Warnings: warnings.Sorted(),
	}, nil
}

// generateModel renders one model to its LookML file.
func (g *Generator) generateModel(model *dbt.Model) (File, *warn.Collector, error) {
	warnings := &warn.Collector{}

	g.applyCookbook(model)

	grouping, err := lookml.GroupColumns(model)
	if err != nil {
		return File{}, nil, err
	}

	builder := lookml.Builder{
		Dimensions: lookml.DimensionBuilder{
			AllHidden:          g.opts.AllHidden,
			ImplicitPrimaryKey: g.opts.ImplicitPrimaryKey,
		},
	}
	views := builder.BuildViews(model, grouping, warnings)

	var explore *lookml.Explore
	if g.opts.BuildExplore {
		explore = (&lookml.ExploreBuilder{}).Build(model, grouping)
	}

	content := lookml.Render(explore, views)

	path := g.filePath(model)
	if !g.opts.DryRun {
		if err := writeFile(path, content); err != nil {
			return File{}, nil, err
		}
	}

	g.logger.Debug("generated model", "model", model.Name, "path", path, "views", len(views))
	return File{Model: model.Name, Path: path, Views: len(views)}, warnings, nil
}

// applyCookbook merges the matching recipe's action into every column's
// metadata.
func (g *Generator) applyCookbook(model *dbt.Model) {
	if g.cookbook == nil {
		return
	}
	for _, col := range model.Columns {
		g.cookbook.Apply(col)
	}
}

// filePath computes the output path of a model's LookML file.
func (g *Generator) filePath(model *dbt.Model) string {
	var folder string
	switch g.opts.FolderStructure {
	case FolderByDbt:
		folder = filepath.Dir(model.Path)
	default:
		folder = model.Schema
		if g.opts.RemoveSchemaPrefix != "" {
			folder = strings.Replace(folder, g.opts.RemoveSchemaPrefix, "", 1)
		}
	}

	fileName := model.Name
	if g.opts.UseTableName {
		parts := strings.Split(model.RelationName, ".")
		fileName = strings.Trim(parts[len(parts)-1], "`")
	}

	return filepath.Join(g.opts.OutputDir, "views", folder, fileName+".view.lkml")
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
