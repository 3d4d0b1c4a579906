package lookml

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/lookgen/internal/warn"
)

// DimensionMeta holds the display overrides a column may declare for its
// dimension, either in the manifest or via a cookbook recipe.
type DimensionMeta struct {
	Label           string   `mapstructure:"label"`
	GroupLabel      string   `mapstructure:"group_label"`
	Description     string   `mapstructure:"description"`
	Hidden          *bool    `mapstructure:"hidden"`
	ValueFormatName string   `mapstructure:"value_format_name"`
	HTML            string   `mapstructure:"html"`
	Tags            []string `mapstructure:"tags"`
	Timeframes      []string `mapstructure:"timeframes"`
	ConvertTZ       *bool    `mapstructure:"convert_tz"`
	CanFilter       *bool    `mapstructure:"can_filter"`
}

// MeasureFilterMeta is a filter attached to a declared measure.
type MeasureFilterMeta struct {
	FilterDimension  string `mapstructure:"filter_dimension"`
	FilterExpression string `mapstructure:"filter_expression"`
}

// MeasureMeta is a measure declaration on a column.
type MeasureMeta struct {
	Type                 string              `mapstructure:"type"`
	Name                 string              `mapstructure:"name"`
	Label                string              `mapstructure:"label"`
	GroupLabel           string              `mapstructure:"group_label"`
	Description          string              `mapstructure:"description"`
	Hidden               *bool               `mapstructure:"hidden"`
	ValueFormatName      string              `mapstructure:"value_format_name"`
	SQL                  string              `mapstructure:"sql"`
	SQLDistinctKey       string              `mapstructure:"sql_distinct_key"`
	Approximate          *bool               `mapstructure:"approximate"`
	ApproximateThreshold *int                `mapstructure:"approximate_threshold"`
	Precision            *int                `mapstructure:"precision"`
	Percentile           *int                `mapstructure:"percentile"`
	CanFilter            *bool               `mapstructure:"can_filter"`
	Suggestable          *bool               `mapstructure:"suggestable"`
	ConvertTZ            *bool               `mapstructure:"convert_tz"`
	Alias                string              `mapstructure:"alias"`
	Tags                 []string            `mapstructure:"tags"`
	Filters              []MeasureFilterMeta `mapstructure:"filters"`
}

// ColumnMeta is a column's decoded looker metadata subtree.
type ColumnMeta struct {
	Dimension DimensionMeta `mapstructure:"dimension"`
	Measures  []MeasureMeta `mapstructure:"measures"`
}

// dimensionAttrKeys are the attributes accepted directly under "looker:"
// by older manifests, before the "dimension:" subtree existed.
var dimensionAttrKeys = []string{
	"label", "group_label", "description", "hidden",
	"value_format_name", "html", "tags", "timeframes", "convert_tz",
}

// DecodeColumnMeta decodes a raw looker metadata mapping into typed form,
// validating enum-constrained attributes. Invalid values are dropped with
// a soft warning; they never abort generation.
func DecodeColumnMeta(name string, meta map[string]any, warnings *warn.Collector) (ColumnMeta, error) {
	var out ColumnMeta
	if meta == nil {
		return out, nil
	}

	meta = normalizeMeta(name, meta, warnings)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(meta); err != nil {
		return out, fmt.Errorf("column %s: invalid looker metadata: %w", name, err)
	}

	validateDimensionMeta(name, &out.Dimension, warnings)
	out.Measures = validateMeasures(name, out.Measures, warnings)
	return out, nil
}

// normalizeMeta lifts legacy top-level dimension attributes into the
// dimension subtree and turns bare-string measures into typed mappings.
func normalizeMeta(name string, meta map[string]any, warnings *warn.Collector) map[string]any {
	normalized := make(map[string]any, len(meta))
	for k, v := range meta {
		normalized[k] = v
	}

	legacy := make(map[string]any)
	for _, key := range dimensionAttrKeys {
		if v, ok := normalized[key]; ok {
			legacy[key] = v
			delete(normalized, key)
		}
	}
	if len(legacy) > 0 {
		warnings.Addf("column %s: dimension attributes directly under 'looker' are deprecated, move them under 'looker: dimension:'", name)
		if dim, ok := normalized["dimension"].(map[string]any); ok {
			normalized["dimension"] = MergeMetaMaps(legacy, dim)
		} else {
			normalized["dimension"] = legacy
		}
	}

	if measures, ok := normalized["measures"].([]any); ok {
		converted := make([]any, 0, len(measures))
		for _, m := range measures {
			if s, ok := m.(string); ok {
				m = map[string]any{"type": s}
			}
			converted = append(converted, m)
		}
		normalized["measures"] = converted
	}
	return normalized
}

// MergeMetaMaps shallow-merges two mappings with override precedence.
// Used only for legacy attribute lifting; the cookbook merger owns the
// deep-merge semantics.
func MergeMetaMaps(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func validateDimensionMeta(name string, dim *DimensionMeta, warnings *warn.Collector) {
	if dim.ValueFormatName != "" && !valueFormatNames[dim.ValueFormatName] {
		warnings.Addf("column %s: invalid value_format_name %q, dropping it", name, dim.ValueFormatName)
		dim.ValueFormatName = ""
	}
	if len(dim.Timeframes) > 0 {
		var kept []string
		for _, tf := range dim.Timeframes {
			if validTimeframes[tf] {
				kept = append(kept, tf)
				continue
			}
			warnings.Addf("column %s: invalid timeframe %q, excluding it", name, tf)
		}
		dim.Timeframes = kept
	}
}

func validateMeasures(name string, measures []MeasureMeta, warnings *warn.Collector) []MeasureMeta {
	var kept []MeasureMeta
	for _, m := range measures {
		if !measureTypes[m.Type] {
			warnings.Addf("column %s: measure type %q is not supported, no measure will be created", name, m.Type)
			continue
		}
		if m.ValueFormatName != "" && !valueFormatNames[m.ValueFormatName] {
			warnings.Addf("column %s: invalid value_format_name %q on measure, dropping it", name, m.ValueFormatName)
			m.ValueFormatName = ""
		}
		kept = append(kept, m)
	}
	return kept
}
