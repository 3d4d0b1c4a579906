package lookml

import (
	"fmt"
	"strings"
)

// Render serializes an optional explore and a list of views to LookML
// text. Views appear in the order given; transient bookkeeping fields
// (ArrayPath, IsRoot) are not serialized.
func Render(explore *Explore, views []*View) string {
	var b lkmlWriter

	if explore != nil {
		b.renderExplore(explore)
	}
	for _, view := range views {
		b.renderView(view)
	}
	return b.String()
}

// lkmlWriter emits indented LookML blocks.
type lkmlWriter struct {
	sb     strings.Builder
	indent int
}

func (w *lkmlWriter) String() string {
	return w.sb.String()
}

func (w *lkmlWriter) line(format string, args ...any) {
	w.sb.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *lkmlWriter) open(kind, name string) {
	if w.sb.Len() > 0 {
		w.sb.WriteByte('\n')
	}
	w.line("%s: %s {", kind, name)
	w.indent++
}

func (w *lkmlWriter) close() {
	w.indent--
	w.line("}")
}

// attr writes a plain attribute, skipping empty values.
func (w *lkmlWriter) attr(key, value string) {
	if value == "" {
		return
	}
	w.line("%s: %s", key, value)
}

// quoted writes a double-quoted attribute, skipping empty values.
func (w *lkmlWriter) quoted(key, value string) {
	if value == "" {
		return
	}
	w.line("%s: %s", key, quote(value))
}

// sql writes a ";;"-terminated attribute, skipping empty values.
func (w *lkmlWriter) sql(key, value string) {
	if value == "" {
		return
	}
	w.line("%s: %s ;;", key, value)
}

// list writes a bare identifier list, skipping empty lists.
func (w *lkmlWriter) list(key string, values []string) {
	if len(values) == 0 {
		return
	}
	w.line("%s: [%s]", key, strings.Join(values, ", "))
}

// quotedList writes a quoted string list, skipping empty lists.
func (w *lkmlWriter) quotedList(key string, values []string) {
	if len(values) == 0 {
		return
	}
	quotedValues := make([]string, len(values))
	for i, v := range values {
		quotedValues[i] = quote(v)
	}
	w.line("%s: [%s]", key, strings.Join(quotedValues, ", "))
}

func (w *lkmlWriter) intAttr(key string, value *int) {
	if value == nil {
		return
	}
	w.line("%s: %d", key, *value)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (w *lkmlWriter) renderExplore(e *Explore) {
	w.open("explore", e.Name)
	w.quoted("label", e.Label)
	w.quoted("group_label", e.GroupLabel)
	w.quoted("description", e.Description)
	w.attr("hidden", e.Hidden)
	for _, join := range e.Joins {
		w.open("join", join.Name)
		w.attr("relationship", join.Relationship)
		w.sql("sql", join.SQL)
		w.attr("type", join.Type)
		w.list("required_joins", join.RequiredJoins)
		w.close()
	}
	w.close()
}

func (w *lkmlWriter) renderView(v *View) {
	w.open("view", v.Name)
	w.quoted("label", v.Label)
	if v.SQLTableName != "" {
		w.sql("sql_table_name", v.SQLTableName)
	}

	for _, d := range v.Dimensions {
		w.renderDimension(d)
	}
	for _, g := range v.DimensionGroups {
		w.renderDimensionGroup(g)
	}
	for _, s := range v.Sets {
		w.open("set", s.Name)
		w.list("fields", s.Fields)
		w.close()
	}
	for _, m := range v.Measures {
		w.renderMeasure(m)
	}
	w.close()
}

func (w *lkmlWriter) renderDimension(d Dimension) {
	w.open("dimension", d.Name)
	w.attr("primary_key", d.PrimaryKey)
	w.attr("hidden", d.Hidden)
	w.attr("type", d.Type)
	w.sql("sql", d.SQL)
	w.quoted("label", d.Label)
	w.quoted("group_label", d.GroupLabel)
	w.quoted("description", d.Description)
	w.attr("value_format_name", d.ValueFormatName)
	w.quoted("html", d.HTML)
	w.quotedList("tags", d.Tags)
	w.close()
}

func (w *lkmlWriter) renderDimensionGroup(g DimensionGroup) {
	w.open("dimension_group", g.Name)
	w.attr("type", g.Type)
	w.sql("sql", g.SQL)
	w.quoted("label", g.Label)
	w.quoted("group_label", g.GroupLabel)
	w.quoted("description", g.Description)
	w.attr("datatype", g.Datatype)
	w.list("timeframes", g.Timeframes)
	w.attr("convert_tz", g.ConvertTZ)
	w.close()
}

func (w *lkmlWriter) renderMeasure(m Measure) {
	w.open("measure", m.Name)
	w.attr("hidden", m.Hidden)
	w.attr("type", m.Type)
	w.sql("sql", m.SQL)
	w.sql("sql_distinct_key", m.SQLDistinctKey)
	w.quoted("label", m.Label)
	w.quoted("group_label", m.GroupLabel)
	w.quoted("description", m.Description)
	w.attr("value_format_name", m.ValueFormatName)
	w.attr("alias", m.Alias)
	w.attr("approximate", m.Approximate)
	w.intAttr("approximate_threshold", m.ApproximateThreshold)
	w.intAttr("precision", m.Precision)
	w.intAttr("percentile", m.Percentile)
	w.attr("can_filter", m.CanFilter)
	w.attr("suggestable", m.Suggestable)
	w.attr("convert_tz", m.ConvertTZ)
	w.quotedList("tags", m.Tags)
	if len(m.Filters) > 0 {
		parts := make([]string, len(m.Filters))
		for i, f := range m.Filters {
			parts[i] = fmt.Sprintf("%s: %s", f.Field, quote(f.Value))
		}
		w.line("filters: [%s]", strings.Join(parts, ", "))
	}
	w.close()
}
