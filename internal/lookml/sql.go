package lookml

import (
	"strings"

	"github.com/leapstack-labs/lookgen/internal/warn"
)

// ValidateSQL checks that a user-declared SQL expression uses Looker's
// ${...} reference syntax. Trailing ";;" terminators are stripped since
// the renderer adds them. An expression without any ${...} reference is
// dropped with a soft warning; generation continues without it.
func ValidateSQL(sql string, warnings *warn.Collector) string {
	sql = strings.TrimSpace(sql)

	if strings.HasSuffix(sql, ";;") {
		warnings.Addf("SQL expression %q ends with semicolons; they are stripped and re-added by the renderer", sql)
		sql = strings.TrimSpace(strings.TrimRight(sql, ";"))
	}

	if !strings.Contains(sql, "${") || !strings.Contains(sql, "}") {
		warnings.Addf("SQL expression %q does not contain a ${TABLE} or ${view_name} reference", sql)
		return ""
	}
	return sql
}

// sqlExpression returns the SQL reference for a column entry within a
// view. Flattened array representations reference the unnested child
// view; nested struct fields are referenced relative to the view's array
// path; plain fields of nested views can be referenced bare.
func sqlExpression(entry ColumnEntry, view *View, modelName string) string {
	if entry.Flattened {
		return RemoveDots(modelName + "." + entry.Column.Name)
	}

	columnName := entry.Column.Name
	if view.ArrayPath != "" && strings.Contains(columnName, ".") &&
		strings.HasPrefix(columnName, view.ArrayPath+".") {
		columnName = columnName[len(view.ArrayPath)+1:]
	}

	if !view.IsRoot && !strings.Contains(columnName, ".") {
		return columnName
	}
	return "${TABLE}." + columnName
}

// dimensionName returns the identifier of a column's dimension within a
// view: the full dot path for the root view, the path relative to the
// array for nested views, with dots flattened to double underscores.
func dimensionName(entry ColumnEntry, view *View) string {
	name := entry.Column.Name
	if view.ArrayPath != "" && strings.HasPrefix(name, view.ArrayPath+".") {
		name = name[len(view.ArrayPath)+1:]
	}
	return RemoveDots(name)
}
