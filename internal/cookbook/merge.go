package cookbook

import (
	"reflect"

	"github.com/leapstack-labs/lookgen/internal/dbt"
)

// MergeMeta deep-merges an override mapping into a base mapping and
// returns the result. Neither input is mutated.
//
// When both sides hold a nested mapping at a key the merge recurses; when
// only one side does, the mapping is merged against an empty one so the
// shape is normalized. Otherwise the override value wins unless it is
// empty (nil, empty string, empty sequence or mapping), in which case the
// base value is kept. Keys whose resolved value is nil are dropped, so an
// override can add or replace concrete values but never blank out a
// previously set attribute.
func MergeMeta(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))

	for key, baseVal := range base {
		overrideVal, ok := override[key]
		if !ok {
			merged[key] = mergeValue(baseVal, nil)
			continue
		}
		merged[key] = mergeValue(baseVal, overrideVal)
	}
	for key, overrideVal := range override {
		if _, ok := base[key]; ok {
			continue
		}
		merged[key] = mergeValue(nil, overrideVal)
	}

	for key, val := range merged {
		if val == nil {
			delete(merged, key)
		}
	}
	return merged
}

func mergeValue(baseVal, overrideVal any) any {
	baseMap, baseIsMap := asMap(baseVal)
	overrideMap, overrideIsMap := asMap(overrideVal)

	switch {
	case baseIsMap && overrideIsMap:
		return MergeMeta(baseMap, overrideMap)
	case baseIsMap:
		return MergeMeta(baseMap, map[string]any{})
	case overrideIsMap:
		return MergeMeta(map[string]any{}, overrideMap)
	}

	if isEmpty(overrideVal) {
		return baseVal
	}
	return overrideVal
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// isEmpty reports whether a value carries no information: nil, the empty
// string, or a zero-length sequence or mapping.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}

// Apply matches a column against the cookbook and merges the winning
// recipe's action into the column's dimension metadata. Description
// append/prepend effects are applied to the resolved description rather
// than replacing it.
func (c *Cookbook) Apply(col *dbt.Column) {
	recipe := c.Match(col.Name, col.DataType, col.Tags)
	if recipe == nil || len(recipe.Action) == 0 {
		return
	}

	action := make(map[string]any, len(recipe.Action))
	for k, v := range recipe.Action {
		action[k] = v
	}
	appendDesc, _ := action["description_append"].(string)
	prependDesc, _ := action["description_prepend"].(string)
	delete(action, "description_append")
	delete(action, "description_prepend")

	if col.Meta == nil {
		col.Meta = make(map[string]any)
	}
	dim, _ := col.Meta["dimension"].(map[string]any)
	dim = MergeMeta(dim, action)

	if appendDesc != "" || prependDesc != "" {
		desc, _ := dim["description"].(string)
		if desc == "" {
			desc = col.Description
		}
		if prependDesc != "" {
			desc = joinDescription(prependDesc, desc)
		}
		if appendDesc != "" {
			desc = joinDescription(desc, appendDesc)
		}
		dim["description"] = desc
	}

	col.Meta["dimension"] = dim
}

func joinDescription(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
