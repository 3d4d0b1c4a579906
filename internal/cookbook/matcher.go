package cookbook

// Match returns the recipe that applies to a field, or nil when none does.
// Recipes are evaluated in declaration order and the last relevant recipe
// wins; actions of earlier matches are not accumulated.
func (c *Cookbook) Match(fieldName, dataType string, tags []string) *Recipe {
	var matched *Recipe
	for i := range c.Recipes {
		recipe := &c.Recipes[i]
		if recipe.Filters.Matches(fieldName, dataType, tags) {
			matched = recipe
		}
	}
	return matched
}
