// Package lookml turns typed dbt models into LookML view definitions.
// It groups nested and repeated columns into per-level views, synthesizes
// dimensions and measures, and serializes the result to LookML text.
package lookml

import "strings"

// RemoveDots replaces every dot with a double underscore, producing
// collision-free flat identifiers across nesting levels.
func RemoveDots(s string) string {
	return strings.ReplaceAll(s, ".", "__")
}

// LastDotOnly replaces all but the last dot with double underscores.
// Join references keep their final dot so Looker resolves the field
// within the joined view.
func LastDotOnly(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) <= 1 {
		return s
	}
	return strings.Join(parts[:len(parts)-1], "__") + "." + parts[len(parts)-1]
}

// TextualizeDots replaces dots with spaces for human-readable labels.
func TextualizeDots(s string) string {
	return strings.ReplaceAll(s, ".", " ")
}
