package lookml

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/warn"
)

var titleCaser = cases.Title(language.English)

// titleize turns an identifier into a human-readable title.
func titleize(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// DimensionBuilder synthesizes dimensions, dimension groups, and
// timeframe sets from a view's column entries.
type DimensionBuilder struct {
	// AllHidden forces every generated dimension to hidden: yes.
	AllHidden bool
	// ImplicitPrimaryKey marks the first dimension of the root view as
	// the primary key when no column declares one.
	ImplicitPrimaryKey bool
}

// Build returns the dimensions, dimension groups, and sets for one view.
// Columns whose type has no Looker equivalent produce a soft warning and
// no dimension.
func (b *DimensionBuilder) Build(view *View, entries []ColumnEntry, warnings *warn.Collector) ([]Dimension, []DimensionGroup, []DimensionSet) {
	var dims []Dimension
	var groups []DimensionGroup
	var sets []DimensionSet

	firstDimension := true
	for _, entry := range entries {
		col := entry.Column
		meta, err := DecodeColumnMeta(col.Name, col.Meta, warnings)
		if err != nil {
			warnings.Add(err.Error())
		}

		lookerType := MapBigQueryType(entry.DataType)
		if lookerType == "" {
			warnings.Addf("column type %s is not supported for conversion to Looker, no dimension will be created for %s",
				entry.DataType, col.Name)
			continue
		}

		switch {
		case dateTimeLookerTypes[lookerType]:
			group, set := b.dimensionGroup(entry, view, lookerType, "time", meta.Dimension)
			groups = append(groups, group)
			sets = append(sets, set)
		case lookerType == "date":
			group, set := b.dimensionGroup(entry, view, lookerType, "date", meta.Dimension)
			isoDims := b.isoDimensions(entry, view, meta.Dimension)
			for _, d := range isoDims {
				set.Fields = append(set.Fields, d.Name)
			}
			groups = append(groups, group)
			sets = append(sets, set)
			dims = append(dims, isoDims...)
		case scalarLookerTypes[lookerType]:
			d := b.dimension(entry, view, lookerType, meta.Dimension)
			if d.PrimaryKey == "" && b.ImplicitPrimaryKey && view.IsRoot && firstDimension {
				d.PrimaryKey = "yes"
			}
			firstDimension = false
			dims = append(dims, d)
		}
	}
	return dims, groups, sets
}

func (b *DimensionBuilder) dimension(entry ColumnEntry, view *View, lookerType string, meta DimensionMeta) Dimension {
	col := entry.Column
	d := Dimension{
		Name:        dimensionName(entry, view),
		Type:        lookerType,
		SQL:         sqlExpression(entry, view, rootName(view)),
		Description: col.Description,
	}

	// Composite columns stay navigable but hidden; their fields live in
	// the unnested child view.
	if strings.Contains(entry.DataType, dbt.TypeArray) {
		d.Hidden = "yes"
		d.Tags = []string{"array"}
		d.Type = ""
	} else if strings.Contains(entry.DataType, dbt.TypeStruct) {
		d.Hidden = "yes"
		d.Tags = []string{"struct"}
	}

	if col.IsPrimaryKey {
		d.PrimaryKey = "yes"
	}

	if meta.Label != "" {
		d.Label = meta.Label
	}
	if meta.GroupLabel != "" {
		d.GroupLabel = meta.GroupLabel
	}
	if meta.Description != "" {
		d.Description = meta.Description
	}
	if meta.Hidden != nil {
		d.Hidden = yesNo(*meta.Hidden)
	}
	if meta.ValueFormatName != "" {
		d.ValueFormatName = meta.ValueFormatName
	}
	if meta.HTML != "" {
		d.HTML = meta.HTML
	}
	if len(meta.Tags) > 0 {
		d.Tags = append(d.Tags, meta.Tags...)
	}

	if b.AllHidden {
		d.Hidden = "yes"
	}
	return d
}

func (b *DimensionBuilder) dimensionGroup(entry ColumnEntry, view *View, lookerType, groupKind string, meta DimensionMeta) (DimensionGroup, DimensionSet) {
	col := entry.Column
	baseName := strings.ReplaceAll(dimensionName(entry, view), "_date", "")

	group := DimensionGroup{
		Name:        baseName,
		Type:        "time",
		SQL:         LastDotOnly(sqlExpression(entry, view, rootName(view))),
		Label:       titleize(baseName),
		GroupLabel:  titleize(lastSegment(col.Name)),
		Description: col.Description,
		Datatype:    lookerType,
	}
	if groupKind == "time" {
		group.ConvertTZ = "yes"
		group.Timeframes = TimeTimeframes
	} else {
		group.ConvertTZ = "no"
		group.Timeframes = DateTimeframes
	}

	if len(meta.Timeframes) > 0 {
		group.Timeframes = meta.Timeframes
	}
	if meta.Label != "" {
		group.Label = meta.Label
	}
	if meta.GroupLabel != "" {
		group.GroupLabel = meta.GroupLabel
	}
	if meta.Description != "" {
		group.Description = meta.Description
	}
	if meta.ConvertTZ != nil {
		group.ConvertTZ = yesNo(*meta.ConvertTZ)
	}

	set := DimensionSet{Name: "s_" + baseName}
	for _, tf := range group.Timeframes {
		set.Fields = append(set.Fields, baseName+"_"+tf)
	}
	return group, set
}

// isoDimensions generates the ISO year and ISO week-of-year helper
// dimensions for date columns; Looker's built-in timeframes do not cover
// them.
func (b *DimensionBuilder) isoDimensions(entry ColumnEntry, view *View, meta DimensionMeta) []Dimension {
	col := entry.Column
	base := dimensionName(entry, view)
	baseLabel := titleize(strings.ReplaceAll(lastSegment(col.Name), "_date", ""))
	groupLabel := titleize(lastSegment(col.Name))
	if meta.GroupLabel != "" {
		groupLabel = meta.GroupLabel
	}

	isoYear := Dimension{
		Name:            base + "_iso_year",
		Label:           baseLabel + " ISO Year",
		Type:            "number",
		SQL:             "Extract(isoyear from ${TABLE}." + col.Name + ")",
		Description:     "iso year for " + col.Name,
		GroupLabel:      groupLabel,
		ValueFormatName: "id",
	}
	isoWeek := Dimension{
		Name:            base + "_iso_week_of_year",
		Label:           baseLabel + " ISO Week Of Year",
		Type:            "number",
		SQL:             "Extract(isoweek from ${TABLE}." + col.Name + ")",
		Description:     "iso week of year for " + col.Name,
		GroupLabel:      groupLabel,
		ValueFormatName: "id",
	}
	if meta.Label != "" {
		isoYear.Label = meta.Label + " ISO Year"
		isoWeek.Label = meta.Label + " ISO Week Of Year"
	}
	if b.AllHidden {
		isoYear.Hidden = "yes"
		isoWeek.Hidden = "yes"
	}
	return []Dimension{isoYear, isoWeek}
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// rootName recovers the model name from a view: child views are named
// "<model>__<path>", the root view is the model name itself.
func rootName(view *View) string {
	if view.IsRoot || view.ArrayPath == "" {
		return view.Name
	}
	suffix := "__" + RemoveDots(view.ArrayPath)
	return strings.TrimSuffix(view.Name, suffix)
}
