package lookml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/lookgen/internal/dbt"
)

// ErrNoStructureGroup signals that a column's permutation chain matched no
// group, including the always-present root. This cannot happen for valid
// input and indicates a defect rather than a user error.
var ErrNoStructureGroup = errors.New("column matched no structure group")

// PathKey identifies one nesting-level grouping: a depth and the
// dot-joined path prefix that opens the level. The zero value is the root
// key.
type PathKey struct {
	Depth int
	Path  string
}

// RootKey returns the key of the top-level grouping.
func RootKey() PathKey {
	return PathKey{}
}

// IsRoot reports whether the key is the root grouping key.
func (k PathKey) IsRoot() bool {
	return k.Depth == 0 && k.Path == ""
}

// PathDepth returns the nesting depth of a dot path: the number of dot
// separators plus one, or zero for the empty path.
func PathDepth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}

// KeyFor returns the PathKey of a dot path.
func KeyFor(path string) PathKey {
	return PathKey{Depth: PathDepth(path), Path: path}
}

// ColumnEntry is a column as it appears inside one grouping. A repeated
// (array) column with a single element type contributes two entries: the
// original column in its own group's descendants and a flattened copy in
// its parent group. The flattened copy carries the element type and is
// tagged so its provenance stays explicit.
type ColumnEntry struct {
	Column    *dbt.Column
	Flattened bool
	DataType  string
}

// Grouping maps PathKeys to the columns that belong at that nesting
// level. Key order is preserved: root first, then array groups in the
// order their seeding columns were declared.
type Grouping struct {
	keys   []PathKey
	groups map[PathKey][]ColumnEntry
}

// Keys returns the grouping keys in creation order.
func (g *Grouping) Keys() []PathKey {
	return g.keys
}

// Entries returns the column entries of one grouping level.
func (g *Grouping) Entries(key PathKey) []ColumnEntry {
	return g.groups[key]
}

func (g *Grouping) seed(key PathKey) {
	if _, ok := g.groups[key]; ok {
		return
	}
	g.groups[key] = nil
	g.keys = append(g.keys, key)
}

func (g *Grouping) append(key PathKey, entry ColumnEntry) {
	g.groups[key] = append(g.groups[key], entry)
}

// GroupColumns classifies every column of a model into its nesting-level
// group. Array columns open a group of their own for descendant fields;
// arrays with exactly one element type additionally contribute a
// flattened copy, typed as the element, to their nearest ancestor group.
func GroupColumns(model *dbt.Model) (*Grouping, error) {
	grouping := &Grouping{groups: make(map[PathKey][]ColumnEntry)}
	grouping.seed(RootKey())

	columns := model.OrderedColumns()
	for _, col := range columns {
		if col.DataType == dbt.TypeArray {
			grouping.seed(KeyFor(col.Name))
		}
	}

	for _, col := range columns {
		if err := grouping.place(col); err != nil {
			return nil, err
		}
	}
	return grouping, nil
}

// place walks a column's permutation chain from most to least specific
// and appends the column to the first existing group. An array column
// always hits its own just-seeded group first; that group holds its
// descendants, so the walk continues to the ancestor match, which
// receives a flattened copy of the array when it has exactly one element
// type and nothing otherwise.
func (g *Grouping) place(col *dbt.Column) error {
	isOwnArray := col.DataType == dbt.TypeArray

	for _, key := range permutationChain(col.Name) {
		if _, ok := g.groups[key]; !ok {
			continue
		}

		if isOwnArray && key.Path == col.Name {
			if len(col.InnerTypes) != 1 {
				// No flattened representation; the seeded group still
				// collects the array's descendant fields.
				return nil
			}
			continue
		}

		entry := ColumnEntry{Column: col, DataType: col.DataType}
		if isOwnArray {
			entry.Flattened = true
			entry.DataType = col.InnerTypes[0]
		}
		g.append(key, entry)
		return nil
	}
	return fmt.Errorf("column %s: %w", col.Name, ErrNoStructureGroup)
}

// permutationChain returns the candidate keys for a column name, from the
// full path down to the root, each paired with its own depth.
func permutationChain(name string) []PathKey {
	parts := strings.Split(name, ".")
	chain := make([]PathKey, 0, len(parts)+1)
	for i := len(parts); i >= 1; i-- {
		chain = append(chain, KeyFor(strings.Join(parts[:i], ".")))
	}
	chain = append(chain, RootKey())
	return chain
}
