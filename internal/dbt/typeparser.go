package dbt

import (
	"regexp"
	"sort"
	"strings"
)

// BigQuery composite type markers.
const (
	TypeArray  = "ARRAY"
	TypeStruct = "STRUCT"
)

var numericPrecisionPattern = regexp.MustCompile(`NUMERIC\(\d+,\s*\d+\)`)

// normalizeNumerics removes precision suffixes from NUMERIC types so
// "NUMERIC(10, 2)" and "NUMERIC" compare equal.
func normalizeNumerics(typeStr string) string {
	if strings.Contains(typeStr, "NUMERIC") {
		return numericPrecisionPattern.ReplaceAllString(typeStr, "NUMERIC")
	}
	return typeStr
}

// mapLegacyType folds legacy BigQuery type aliases onto their standard names.
func mapLegacyType(typeStr string) string {
	switch strings.ToUpper(typeStr) {
	case "INTEGER":
		return "INT64"
	case "FLOAT":
		return "FLOAT64"
	case "BOOL":
		return "BOOLEAN"
	default:
		return strings.ToUpper(typeStr)
	}
}

// ParseDataType returns the outer data type of a BigQuery type string.
// Composite markers keep only their head: "ARRAY<INT64>" yields "ARRAY".
func ParseDataType(typeStr string) string {
	typeStr = normalizeNumerics(typeStr)
	if i := strings.IndexByte(typeStr, '<'); i >= 0 {
		typeStr = typeStr[:i]
	}
	if i := strings.IndexByte(typeStr, '('); i >= 0 {
		typeStr = typeStr[:i]
	}
	return mapLegacyType(strings.TrimSpace(typeStr))
}

// ParseInnerTypes returns the element types of a composite BigQuery type
// string, sorted lexically. Scalar types yield nil. An ARRAY of a scalar
// yields a single entry; an ARRAY of a STRUCT yields one entry per struct
// field, with nested struct fields flattened to dot paths.
func ParseInnerTypes(typeStr string) []string {
	typeStr = normalizeNumerics(typeStr)
	if !strings.Contains(typeStr, "<") {
		return nil
	}

	inner, isStruct := unwrapType(typeStr)
	var fields []string
	if isStruct {
		fields = structFields(inner, nil)
	} else {
		fields = []string{mapLegacyType(strings.TrimSpace(inner))}
	}
	sort.Strings(fields)
	return fields
}

// unwrapType peels ARRAY and STRUCT wrappers off a type string.
// Returns the innermost field list content and whether a STRUCT was found.
func unwrapType(typeStr string) (string, bool) {
	isStruct := false
	inner := typeStr

	if strings.HasPrefix(inner, TypeArray+"<") {
		inner = innerContent(inner)
	}
	if strings.HasPrefix(inner, TypeStruct+"<") {
		isStruct = true
		inner = innerContent(inner)
	}
	return inner, isStruct
}

// innerContent extracts the content between the outermost angle brackets.
func innerContent(typeStr string) string {
	start := strings.IndexByte(typeStr, '<')
	end := strings.LastIndexByte(typeStr, '>')
	if start < 0 || end <= start {
		return typeStr
	}
	return typeStr[start+1 : end]
}

// splitTopLevel splits a struct field list on commas outside angle brackets.
func splitTopLevel(content string) []string {
	var parts []string
	var current strings.Builder
	level := 0
	for _, r := range content {
		switch r {
		case '<':
			level++
		case '>':
			level--
		case ',':
			if level == 0 {
				if s := strings.TrimSpace(current.String()); s != "" {
					parts = append(parts, s)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(r)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// structFields renders "name TYPE" entries for every field of a struct body,
// recursing into nested structs with dot-path prefixes.
func structFields(content string, path []string) []string {
	var fields []string
	for _, field := range splitTopLevel(content) {
		name, fieldType, ok := strings.Cut(field, " ")
		if !ok {
			continue
		}
		fieldType = strings.TrimSpace(fieldType)

		inner, isStruct := unwrapType(fieldType)
		qualified := strings.Join(append(append([]string{}, path...), name), ".")
		if isStruct {
			fields = append(fields, qualified+" "+mapLegacyType(ParseDataType(fieldType)))
			fields = append(fields, structFields(inner, append(path, name))...)
		} else {
			fields = append(fields, qualified+" "+mapLegacyType(fieldType))
		}
	}
	return fields
}
