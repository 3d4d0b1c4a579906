package lookml

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lookgen/internal/dbt"
)

// ExploreBuilder generates the hidden explore definition that stitches a
// model's array views together with UNNEST joins.
type ExploreBuilder struct {
	// Prefix is prepended to the explore name when set.
	Prefix string
}

// Build returns the explore for a model, or nil when the model has no
// array groups and therefore nothing to join.
func (b *ExploreBuilder) Build(model *dbt.Model, grouping *Grouping) *Explore {
	baseName := model.Name
	if b.Prefix != "" {
		baseName = b.Prefix + "_" + model.Name
	}

	joins := b.joins(baseName, grouping)
	if len(joins) == 0 {
		return nil
	}

	explore := &Explore{
		Name:   baseName,
		Hidden: "yes",
		Joins:  joins,
	}
	if model.Description != "" {
		explore.Description = model.Description
	}
	if model.Meta.View.Label != "" {
		explore.Label = model.Meta.View.Label
	}
	if model.Meta.View.Description != "" {
		explore.Description = model.Meta.View.Description
	}
	if model.Meta.Explore.Label != "" {
		explore.Label = model.Meta.Explore.Label
	}
	if model.Meta.Explore.Description != "" {
		explore.Description = model.Meta.Explore.Description
	}
	if model.Meta.Explore.GroupLabel != "" {
		explore.GroupLabel = model.Meta.Explore.GroupLabel
	}
	if model.Meta.Explore.Hidden != nil {
		explore.Hidden = yesNo(*model.Meta.Explore.Hidden)
	}
	return explore
}

func (b *ExploreBuilder) joins(baseName string, grouping *Grouping) []Join {
	var joins []Join
	for _, key := range grouping.Keys() {
		if key.IsRoot() {
			continue
		}

		viewBase := baseName + "." + key.Path
		viewName := RemoveDots(viewBase)
		joinRef := LastDotOnly(viewBase)

		var required []string
		if key.Depth > 1 {
			required = reducedPaths(key.Path, baseName)
		}

		joins = append(joins, Join{
			Name:          viewName,
			Relationship:  "one_to_many",
			SQL:           fmt.Sprintf("LEFT JOIN UNNEST(${%s}) AS %s", joinRef, viewName),
			Type:          "left_outer",
			RequiredJoins: required,
		})
	}
	return joins
}

// reducedPaths lists the ancestor join names a nested array join depends
// on, most specific first.
func reducedPaths(path, base string) []string {
	parts := strings.Split(path, ".")
	var result []string
	for i := len(parts) - 1; i >= 1; i-- {
		reduced := strings.Join(parts[:i], ".")
		result = append(result, RemoveDots(base+"."+reduced))
	}
	return result
}
