package lookml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lookgen/internal/dbt"
)

// modelOf builds a model from ordered column specs.
func modelOf(t *testing.T, name string, cols ...*dbt.Column) *dbt.Model {
	t.Helper()
	m := &dbt.Model{Name: name, Columns: make(map[string]*dbt.Column, len(cols))}
	for i, c := range cols {
		c.Index = i + 1
		m.Columns[c.Name] = c
	}
	return m
}

func col(name, dataType string, inner ...string) *dbt.Column {
	return &dbt.Column{Name: name, DataType: dataType, InnerTypes: inner}
}

// entryNames extracts the column names of one grouping level.
func entryNames(g *Grouping, key PathKey) []string {
	var names []string
	for _, e := range g.Entries(key) {
		names = append(names, e.Column.Name)
	}
	return names
}

func TestPathDepth(t *testing.T) {
	assert.Equal(t, 0, PathDepth(""))
	assert.Equal(t, 1, PathDepth("orders"))
	assert.Equal(t, 2, PathDepth("orders.items"))
	assert.Equal(t, 3, PathDepth("orders.items.sku"))
}

func TestGroupColumns_FlatModel(t *testing.T) {
	model := modelOf(t, "customers",
		col("id", "INT64"),
		col("name", "STRING"),
	)

	g, err := GroupColumns(model)
	require.NoError(t, err)

	require.Equal(t, []PathKey{RootKey()}, g.Keys(), "flat models produce only the root group")
	assert.Equal(t, []string{"id", "name"}, entryNames(g, RootKey()))
}

func TestGroupColumns_ArrayOfStruct(t *testing.T) {
	model := modelOf(t, "orders",
		col("id", "INT64"),
		col("items", dbt.TypeArray, "sku STRING", "qty INT64"),
		col("items.sku", "STRING"),
		col("items.qty", "INT64"),
	)

	g, err := GroupColumns(model)
	require.NoError(t, err)

	require.Equal(t, []PathKey{RootKey(), KeyFor("items")}, g.Keys())

	// The array has two inner types: no flattened copy reaches the root
	assert.Equal(t, []string{"id"}, entryNames(g, RootKey()))
	assert.Equal(t, []string{"items.sku", "items.qty"}, entryNames(g, KeyFor("items")))
}

func TestGroupColumns_ArrayOfScalar(t *testing.T) {
	model := modelOf(t, "orders",
		col("id", "INT64"),
		col("tags", dbt.TypeArray, "STRING"),
	)

	g, err := GroupColumns(model)
	require.NoError(t, err)

	// A single inner type yields a flattened copy in the parent group
	entries := g.Entries(RootKey())
	require.Len(t, entries, 2)

	flattened := entries[1]
	assert.Equal(t, "tags", flattened.Column.Name)
	assert.True(t, flattened.Flattened)
	assert.Equal(t, "STRING", flattened.DataType, "flattened copy is typed as the element")

	// The array's own group exists and stays empty
	assert.Empty(t, g.Entries(KeyFor("tags")))
}

func TestGroupColumns_NestedArrays(t *testing.T) {
	model := modelOf(t, "orders",
		col("id", "INT64"),
		col("items", dbt.TypeArray, "sku STRING", "prices INT64"),
		col("items.sku", "STRING"),
		col("items.prices", dbt.TypeArray, "INT64"),
	)

	g, err := GroupColumns(model)
	require.NoError(t, err)

	require.Equal(t, []PathKey{RootKey(), KeyFor("items"), KeyFor("items.prices")}, g.Keys())

	assert.Equal(t, []string{"id"}, entryNames(g, RootKey()))
	// The inner scalar array contributes its flattened copy to the items
	// group, not the root
	assert.Equal(t, []string{"items.sku", "items.prices"}, entryNames(g, KeyFor("items")))
	assert.Empty(t, g.Entries(KeyFor("items.prices")))

	items := g.Entries(KeyFor("items"))
	assert.False(t, items[0].Flattened)
	assert.True(t, items[1].Flattened)
	assert.Equal(t, "INT64", items[1].DataType)
}

func TestGroupColumns_StructFieldsStayInParent(t *testing.T) {
	model := modelOf(t, "orders",
		col("address", "STRUCT", "city STRING", "zip STRING"),
		col("address.city", "STRING"),
		col("address.zip", "STRING"),
	)

	g, err := GroupColumns(model)
	require.NoError(t, err)

	// Structs do not open groups; their fields stay at the parent level
	require.Equal(t, []PathKey{RootKey()}, g.Keys())
	assert.Equal(t, []string{"address", "address.city", "address.zip"}, entryNames(g, RootKey()))
}

func TestGroupColumns_RootAlwaysPresent(t *testing.T) {
	g, err := GroupColumns(modelOf(t, "empty"))
	require.NoError(t, err)
	assert.Equal(t, []PathKey{RootKey()}, g.Keys())
	assert.Empty(t, g.Entries(RootKey()))
}

func TestPlace_NoGroupIsInvariantViolation(t *testing.T) {
	// A grouping without its root group cannot place a plain column.
	// GroupColumns always seeds the root; this guards the invariant.
	g := &Grouping{groups: make(map[PathKey][]ColumnEntry)}
	err := g.place(col("orphan", "STRING"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStructureGroup)
}

func TestPermutationChain(t *testing.T) {
	chain := permutationChain("a.b.c")
	assert.Equal(t, []PathKey{
		KeyFor("a.b.c"),
		KeyFor("a.b"),
		KeyFor("a"),
		RootKey(),
	}, chain)
}
