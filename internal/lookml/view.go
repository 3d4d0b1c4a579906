package lookml

import (
	"strings"

	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/warn"
)

// Builder assembles the per-model view hierarchy.
type Builder struct {
	Dimensions DimensionBuilder
	Measures   MeasureBuilder
}

// BuildViews turns a grouping into an ordered list of views: the root
// view first, then one view per array group in seeding order. Each view
// receives the dimensions, dimension groups, sets, and measures
// synthesized from its group's column entries.
func (b *Builder) BuildViews(model *dbt.Model, grouping *Grouping, warnings *warn.Collector) []*View {
	rootLabel := model.Meta.View.Label

	var views []*View
	for _, key := range grouping.Keys() {
		view := &View{}
		if key.IsRoot() {
			view.Name = model.Name
			view.IsRoot = true
			view.SQLTableName = model.RelationName
			view.Label = rootLabel
		} else {
			view.Name = RemoveDots(model.Name + "." + key.Path)
			view.ArrayPath = key.Path
			if rootLabel != "" {
				view.Label = childLabel(rootLabel, key.Path)
			}
		}

		entries := grouping.Entries(key)
		view.Dimensions, view.DimensionGroups, view.Sets = b.Dimensions.Build(view, entries, warnings)
		view.Measures = b.Measures.Build(view, entries, warnings)
		views = append(views, view)
	}
	return views
}

// childLabel derives a nested view's label from the root label and the
// view's array path. The derivation is idempotent: applying it to its
// own output yields the same string.
func childLabel(rootLabel, path string) string {
	p := strings.ReplaceAll(path, "__", " : ")
	p = strings.ReplaceAll(p, "_", " ")
	p = titleCaser.String(TextualizeDots(p))
	return TextualizeDots(rootLabel + " : " + p)
}
