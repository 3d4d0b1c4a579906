package lookml

import (
	"github.com/leapstack-labs/lookgen/internal/warn"
)

// MeasureBuilder synthesizes measures from per-column metadata
// declarations.
type MeasureBuilder struct{}

// Build returns the measures declared on a view's columns. Only columns
// whose effective type maps to a scalar Looker type may declare measures.
func (b *MeasureBuilder) Build(view *View, entries []ColumnEntry, warnings *warn.Collector) []Measure {
	var measures []Measure
	for _, entry := range entries {
		col := entry.Column
		meta, err := DecodeColumnMeta(col.Name, col.Meta, warnings)
		if err != nil {
			warnings.Add(err.Error())
		}
		if len(meta.Measures) == 0 {
			continue
		}
		if !scalarLookerTypes[MapBigQueryType(entry.DataType)] {
			warnings.Addf("column %s: measures are only supported on scalar columns, skipping", col.Name)
			continue
		}
		for _, mm := range meta.Measures {
			measures = append(measures, b.measure(entry, view, mm, meta.Dimension, warnings))
		}
	}
	return measures
}

func (b *MeasureBuilder) measure(entry ColumnEntry, view *View, mm MeasureMeta, dim DimensionMeta, warnings *warn.Collector) Measure {
	col := entry.Column
	name := mm.Name
	if name == "" {
		name = "m_" + mm.Type + "_" + dimensionName(entry, view)
	}

	m := Measure{
		Name:                 name,
		Type:                 mm.Type,
		SQL:                  sqlExpression(entry, view, rootName(view)),
		Description:          mm.Type + " of " + col.Name,
		Label:                mm.Label,
		GroupLabel:           mm.GroupLabel,
		Alias:                mm.Alias,
		Hidden:               yesNoPtr(mm.Hidden),
		Approximate:          yesNoPtr(mm.Approximate),
		ApproximateThreshold: mm.ApproximateThreshold,
		Precision:            mm.Precision,
		Percentile:           mm.Percentile,
		CanFilter:            yesNoPtr(mm.CanFilter),
		Suggestable:          yesNoPtr(mm.Suggestable),
		ConvertTZ:            yesNoPtr(mm.ConvertTZ),
		Tags:                 mm.Tags,
	}
	if mm.Description != "" {
		m.Description = mm.Description
	}

	// Value format is inherited from the dimension unless the measure
	// declares its own.
	switch {
	case mm.ValueFormatName != "":
		m.ValueFormatName = mm.ValueFormatName
	case dim.ValueFormatName != "":
		m.ValueFormatName = dim.ValueFormatName
	}

	if mm.SQL != "" {
		if validated := ValidateSQL(mm.SQL, warnings); validated != "" {
			m.SQL = validated
			if mm.Type != "number" {
				warnings.Addf("measure %s: custom SQL requires a number measure, overriding type %s", name, mm.Type)
				m.Type = "number"
			}
		}
	}
	if mm.SQLDistinctKey != "" {
		if validated := ValidateSQL(mm.SQLDistinctKey, warnings); validated != "" {
			m.SQLDistinctKey = validated
		} else {
			warnings.Addf("measure %s: sql_distinct_key %q is not a valid Looker expression, dropping it", name, mm.SQLDistinctKey)
		}
	}

	for _, f := range mm.Filters {
		m.Filters = append(m.Filters, MeasureFilter{
			Field: f.FilterDimension,
			Value: f.FilterExpression,
		})
	}
	return m
}
