package dbt

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/lookgen/internal/warn"
)

// FilterOptions narrows the set of models returned by a Parser.
type FilterOptions struct {
	// Select keeps only models whose name matches one of the given
	// selectors. Selectors may carry dbt path or file suffixes
	// ("models/orders.sql" selects "orders").
	Select []string
	// Tag keeps only models carrying the tag.
	Tag string
	// ExposuresOnly keeps only models referenced by an exposure.
	ExposuresOnly bool
	// ExposuresTag keeps only models referenced by exposures carrying the
	// tag. Implies ExposuresOnly.
	ExposuresTag string
}

// Parser joins a manifest with a catalog and produces fully typed models.
type Parser struct {
	manifest *Manifest
	catalog  *Catalog
}

// NewParser creates a parser over parsed artifacts.
func NewParser(manifest *Manifest, catalog *Catalog) *Parser {
	return &Parser{manifest: manifest, catalog: catalog}
}

// Models returns the filtered models with catalog types resolved.
// Models missing from the catalog are skipped with a soft warning; they
// were never materialized and have no physical schema to read.
func (p *Parser) Models(opts FilterOptions, warnings *warn.Collector) []*Model {
	models := p.filterModels(opts)

	var out []*Model
	var missing []string
	for _, model := range models {
		if joined := p.joinCatalog(model, warnings); joined != nil {
			out = append(out, joined)
		} else {
			missing = append(missing, model.UniqueID)
		}
	}
	if len(missing) > 0 {
		warnings.Addf("not all models were materialized: %s", strings.Join(missing, ", "))
	}
	return out
}

func (p *Parser) filterModels(opts FilterOptions) []*Model {
	models := p.manifest.Models

	if len(opts.Select) > 0 {
		selectors := make(map[string]struct{}, len(opts.Select))
		for _, s := range opts.Select {
			selectors[StripModelName(s)] = struct{}{}
		}
		var selected []*Model
		for _, m := range models {
			if _, ok := selectors[m.Name]; ok {
				selected = append(selected, m)
			}
		}
		return selected
	}

	if opts.Tag != "" {
		var tagged []*Model
		for _, m := range models {
			if m.HasTag(opts.Tag) {
				tagged = append(tagged, m)
			}
		}
		models = tagged
	}

	if opts.ExposuresOnly || opts.ExposuresTag != "" {
		exposed := p.exposedModelNames(opts.ExposuresTag)
		var filtered []*Model
		for _, m := range models {
			if _, ok := exposed[m.Name]; ok {
				filtered = append(filtered, m)
			}
		}
		models = filtered
	}

	return models
}

// exposedModelNames returns the set of model names referenced by exposures,
// optionally restricted to exposures carrying the given tag.
func (p *Parser) exposedModelNames(tag string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, exp := range p.manifest.Exposures {
		if tag != "" && !hasTag(exp.Tags, tag) {
			continue
		}
		for _, ref := range exp.Refs {
			names[ref] = struct{}{}
		}
	}
	return names
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// joinCatalog merges catalog type information into a model's columns.
// The catalog is the source of truth for which columns exist: nested
// columns appear only there, and manifest columns that were never
// materialized are dropped with a warning.
func (p *Parser) joinCatalog(model *Model, warnings *warn.Collector) *Model {
	node, ok := p.catalog.Nodes[model.UniqueID]
	if !ok {
		return nil
	}

	joined := &Model{
		Name:         model.Name,
		UniqueID:     model.UniqueID,
		RelationName: model.RelationName,
		Schema:       model.Schema,
		Description:  model.Description,
		Path:         model.Path,
		Tags:         model.Tags,
		Meta:         model.Meta,
		Columns:      make(map[string]*Column, len(node.Columns)),
	}

	for name, cc := range node.Columns {
		col, ok := model.Columns[name]
		if ok {
			col = col.Clone()
		} else {
			col = &Column{
				Name:   name,
				Nested: strings.Contains(name, "."),
			}
		}
		col.DataType = ParseDataType(cc.Type)
		col.InnerTypes = ParseInnerTypes(cc.Type)
		col.Index = cc.Index
		joined.Columns[name] = col
	}

	var dropped []string
	for name := range model.Columns {
		if _, ok := node.Columns[name]; !ok {
			dropped = append(dropped, name)
		}
	}
	if len(dropped) > 0 {
		sort.Strings(dropped)
		warnings.Addf("model %s: columns not found in catalog: %s",
			model.Name, strings.Join(dropped, ", "))
	}

	return joined
}

// StripModelName reduces a dbt selector to a bare model name.
// "models/marts/orders.sql" becomes "orders".
func StripModelName(selector string) string {
	if i := strings.LastIndexByte(selector, '/'); i >= 0 {
		selector = selector[i+1:]
	}
	if i := strings.IndexByte(selector, '.'); i >= 0 {
		selector = selector[:i]
	}
	return selector
}
