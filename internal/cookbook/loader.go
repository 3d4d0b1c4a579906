package cookbook

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/lookgen/internal/warn"
)

// ErrEmptyCookbook is returned when a cookbook document contains no recipes.
var ErrEmptyCookbook = errors.New("no recipes found in cookbook")

// actionKeys are the metadata attributes a recipe action may set.
// Unknown keys are applied anyway but produce a soft warning, since they
// are most often typos.
var actionKeys = map[string]struct{}{
	"label":               {},
	"group_label":         {},
	"description":         {},
	"description_append":  {},
	"description_prepend": {},
	"hidden":              {},
	"value_format_name":   {},
	"html":                {},
	"tags":                {},
	"timeframes":          {},
	"convert_tz":          {},
}

// Load parses a cookbook YAML document.
// A cookbook with zero recipes or an invalid filter regex is a
// configuration error.
func Load(data []byte, warnings *warn.Collector) (*Cookbook, error) {
	var cb Cookbook
	if err := yaml.Unmarshal(data, &cb); err != nil {
		return nil, fmt.Errorf("failed to parse cookbook: %w", err)
	}
	if len(cb.Recipes) == 0 {
		return nil, ErrEmptyCookbook
	}

	for i := range cb.Recipes {
		recipe := &cb.Recipes[i]
		if recipe.Filters != nil {
			if err := recipe.Filters.compile(); err != nil {
				return nil, fmt.Errorf("recipe %s: %w", recipe.describe(i), err)
			}
		}
		warnUnknownKeys(recipe, i, warnings)
	}
	return &cb, nil
}

// LoadFile reads and parses a cookbook YAML file.
func LoadFile(path string, warnings *warn.Collector) (*Cookbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read cookbook %s: %w", path, err)
	}
	cb, err := Load(data, warnings)
	if err != nil {
		return nil, fmt.Errorf("cookbook %s: %w", path, err)
	}
	return cb, nil
}

func warnUnknownKeys(recipe *Recipe, index int, warnings *warn.Collector) {
	var unknown []string
	for key := range recipe.Action {
		if _, ok := actionKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings.Addf("recipe %s: unknown action attribute %q", recipe.describe(index), key)
	}
}

func (r *Recipe) describe(index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", index+1)
}
