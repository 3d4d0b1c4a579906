// Package cookbook implements user-declared metadata override rules.
// A cookbook is an ordered list of recipes; each recipe pairs a filter
// (which fields it applies to) with an action (the metadata to apply).
package cookbook

import (
	"fmt"
	"regexp"
)

// Filter is the conjunctive constraint of a recipe. Every set constraint
// must hold for the recipe to apply; unset constraints always hold.
type Filter struct {
	DataType      string   `yaml:"data_type"`
	RegexInclude  string   `yaml:"regex_include"`
	RegexExclude  string   `yaml:"regex_exclude"`
	Tags          []string `yaml:"tags"`
	FieldsInclude []string `yaml:"fields_include"`
	FieldsExclude []string `yaml:"fields_exclude"`

	includeRe *regexp.Regexp
	excludeRe *regexp.Regexp
}

// compile prepares the filter's regular expressions.
func (f *Filter) compile() error {
	var err error
	if f.RegexInclude != "" {
		if f.includeRe, err = regexp.Compile(f.RegexInclude); err != nil {
			return fmt.Errorf("invalid regex_include %q: %w", f.RegexInclude, err)
		}
	}
	if f.RegexExclude != "" {
		if f.excludeRe, err = regexp.Compile(f.RegexExclude); err != nil {
			return fmt.Errorf("invalid regex_exclude %q: %w", f.RegexExclude, err)
		}
	}
	return nil
}

// Matches reports whether the filter applies to a field.
// Regex constraints use substring search, not full-string anchoring.
func (f *Filter) Matches(fieldName, dataType string, tags []string) bool {
	if f == nil {
		return true
	}
	if f.DataType != "" && f.DataType != dataType {
		return false
	}
	if f.includeRe != nil && !f.includeRe.MatchString(fieldName) {
		return false
	}
	if f.excludeRe != nil && f.excludeRe.MatchString(fieldName) {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatch(f.Tags, tags) {
		return false
	}
	if len(f.FieldsInclude) > 0 && !contains(f.FieldsInclude, fieldName) {
		return false
	}
	if contains(f.FieldsExclude, fieldName) {
		return false
	}
	return true
}

func anyTagMatch(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Action is the metadata payload a recipe applies to a matched field.
// It is kept as a raw mapping so it can be deep-merged into the field's
// existing metadata.
type Action map[string]any

// Recipe pairs a filter with an action.
type Recipe struct {
	Name    string  `yaml:"name"`
	Filters *Filter `yaml:"filters"`
	Action  Action  `yaml:"action"`
}

// Cookbook is an ordered, non-empty list of recipes.
type Cookbook struct {
	Recipes []Recipe `yaml:"recipes"`
}
