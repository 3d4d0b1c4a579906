package lookml

// Dimension is a render-ready LookML dimension.
// Yes/no attributes use the LookML literals "yes"/"no"; an empty string
// means the attribute is unset and not rendered.
type Dimension struct {
	Name            string
	Type            string
	SQL             string
	Label           string
	GroupLabel      string
	Description     string
	Hidden          string
	PrimaryKey      string
	ValueFormatName string
	HTML            string
	Tags            []string
}

// DimensionGroup is a render-ready LookML dimension_group.
type DimensionGroup struct {
	Name        string
	Type        string
	Label       string
	GroupLabel  string
	SQL         string
	Description string
	Datatype    string
	ConvertTZ   string
	Timeframes  []string
}

// DimensionSet is a named set of timeframe fields belonging to one
// dimension group.
type DimensionSet struct {
	Name   string
	Fields []string
}

// MeasureFilter restricts a measure to rows matching a dimension filter.
type MeasureFilter struct {
	Field string
	Value string
}

// Measure is a render-ready LookML measure.
type Measure struct {
	Name                 string
	Type                 string
	SQL                  string
	Label                string
	GroupLabel           string
	Description          string
	Hidden               string
	ValueFormatName      string
	SQLDistinctKey       string
	Alias                string
	Approximate          string
	ApproximateThreshold *int
	Precision            *int
	Percentile           *int
	CanFilter            string
	Suggestable          string
	ConvertTZ            string
	Tags                 []string
	Filters              []MeasureFilter
}

// View is one synthesized grouping-level output unit.
// ArrayPath is internal bookkeeping (the PathKey path the view was built
// from); it drives nested SQL references and unnest joins and is never
// serialized.
type View struct {
	Name         string
	Label        string
	SQLTableName string
	IsRoot       bool
	ArrayPath    string

	Dimensions      []Dimension
	DimensionGroups []DimensionGroup
	Sets            []DimensionSet
	Measures        []Measure
}

// Join is a LookML explore join over an unnested array view.
type Join struct {
	Name          string
	Relationship  string
	SQL           string
	Type          string
	RequiredJoins []string
}

// Explore is a render-ready LookML explore.
type Explore struct {
	Name        string
	Label       string
	GroupLabel  string
	Description string
	Hidden      string
	Joins       []Join
}

// yesNo renders a boolean as a LookML yes/no literal.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// yesNoPtr renders an optional boolean, empty when unset.
func yesNoPtr(b *bool) string {
	if b == nil {
		return ""
	}
	return yesNo(*b)
}
