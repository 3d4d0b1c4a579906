package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lookgen/internal/cookbook"
	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/testutil"
	"github.com/leapstack-labs/lookgen/internal/warn"
)

func testModel(name, schema string, cols ...*dbt.Column) *dbt.Model {
	m := &dbt.Model{
		Name:         name,
		UniqueID:     "model.project." + name,
		RelationName: "`project." + schema + "." + name + "`",
		Schema:       schema,
		Path:         "marts/" + name + ".sql",
		Columns:      make(map[string]*dbt.Column, len(cols)),
	}
	for i, c := range cols {
		c.Index = i + 1
		m.Columns[c.Name] = c
	}
	return m
}

func testCol(name, dataType string, inner ...string) *dbt.Column {
	return &dbt.Column{Name: name, DataType: dataType, InnerTypes: inner}
}

func TestGenerator_Generate(t *testing.T) {
	outDir := t.TempDir()
	models := []*dbt.Model{
		testModel("orders", "analytics",
			testCol("id", "INT64"),
			testCol("amount", "NUMERIC"),
		),
		testModel("customers", "analytics",
			testCol("id", "INT64"),
			testCol("email", "STRING"),
		),
	}

	g := New(testutil.NewTestLogger(t), nil, Options{OutputDir: outDir})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Files, 2)

	// Files are sorted by path, so customers precedes orders.
	assert.Equal(t, "customers", result.Files[0].Model)
	assert.Equal(t, filepath.Join(outDir, "views", "analytics", "customers.view.lkml"), result.Files[0].Path)
	assert.Equal(t, 1, result.Files[0].Views)
	assert.Equal(t, "orders", result.Files[1].Model)

	content, err := os.ReadFile(result.Files[1].Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "view: orders {")
	assert.Contains(t, string(content), "sql_table_name: `project.analytics.orders` ;;")
	assert.Contains(t, string(content), "dimension: amount {")
}

func TestGenerator_Generate_DryRun(t *testing.T) {
	outDir := t.TempDir()
	models := []*dbt.Model{
		testModel("orders", "analytics", testCol("id", "INT64")),
	}

	g := New(testutil.NewTestLogger(t), nil, Options{OutputDir: outDir, DryRun: true})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	_, err = os.Stat(result.Files[0].Path)
	assert.True(t, os.IsNotExist(err), "dry run must not write files")
}

func TestGenerator_Generate_ArrayModelViews(t *testing.T) {
	outDir := t.TempDir()
	models := []*dbt.Model{
		testModel("orders", "analytics",
			testCol("id", "INT64"),
			testCol("items", "ARRAY", "sku STRING", "qty INT64"),
			testCol("items.sku", "STRING"),
			testCol("items.qty", "INT64"),
		),
	}

	g := New(testutil.NewTestLogger(t), nil, Options{OutputDir: outDir, BuildExplore: true})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, 2, result.Files[0].Views)

	content, err := os.ReadFile(result.Files[0].Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "explore: orders {"))
	assert.Contains(t, string(content), "join: orders__items {")
	assert.Contains(t, string(content), "view: orders__items {")
}

func TestGenerator_Generate_Concurrent(t *testing.T) {
	outDir := t.TempDir()
	var models []*dbt.Model
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		models = append(models, testModel(name, "analytics", testCol("id", "INT64")))
	}

	g := New(testutil.NewTestLogger(t), nil, Options{OutputDir: outDir, Concurrency: 4})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	require.Len(t, result.Files, 6)
	for i := 1; i < len(result.Files); i++ {
		assert.Less(t, result.Files[i-1].Path, result.Files[i].Path, "files must be sorted by path")
	}
}

func TestGenerator_Generate_WarningsMerged(t *testing.T) {
	outDir := t.TempDir()
	models := []*dbt.Model{
		testModel("orders", "analytics", testCol("span", "INTERVAL")),
		testModel("customers", "analytics", testCol("span", "INTERVAL")),
	}

	g := New(testutil.NewTestLogger(t), nil, Options{OutputDir: outDir, Concurrency: 2})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	// Both models warn about the same column; deduplication keeps one.
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "INTERVAL")
}

func TestGenerator_Generate_CookbookApplied(t *testing.T) {
	outDir := t.TempDir()
	warnings := &warn.Collector{}
	cb, err := cookbook.Load([]byte(`
recipes:
  - name: hide ids
    filters:
      regex_include: "^id$"
    action:
      hidden: true
      label: Identifier
`), warnings)
	require.NoError(t, err)
	require.Equal(t, 0, warnings.Len())

	models := []*dbt.Model{
		testModel("orders", "analytics",
			testCol("id", "INT64"),
			testCol("amount", "NUMERIC"),
		),
	}

	g := New(testutil.NewTestLogger(t), cb, Options{OutputDir: outDir})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	content, err := os.ReadFile(result.Files[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "dimension: id {\n    hidden: yes")
	assert.Contains(t, string(content), `label: "Identifier"`)
	assert.NotContains(t, string(content), "dimension: amount {\n    hidden:")
}

func TestGenerator_FilePath(t *testing.T) {
	model := testModel("orders", "dataset_analytics", testCol("id", "INT64"))

	t.Run("dataset layout", func(t *testing.T) {
		g := New(nil, nil, Options{OutputDir: "out"})
		assert.Equal(t,
			filepath.Join("out", "views", "dataset_analytics", "orders.view.lkml"),
			g.filePath(model))
	})

	t.Run("schema prefix removed", func(t *testing.T) {
		g := New(nil, nil, Options{OutputDir: "out", RemoveSchemaPrefix: "dataset_"})
		assert.Equal(t,
			filepath.Join("out", "views", "analytics", "orders.view.lkml"),
			g.filePath(model))
	})

	t.Run("dbt layout", func(t *testing.T) {
		g := New(nil, nil, Options{OutputDir: "out", FolderStructure: FolderByDbt})
		assert.Equal(t,
			filepath.Join("out", "views", "marts", "orders.view.lkml"),
			g.filePath(model))
	})

	t.Run("table name", func(t *testing.T) {
		g := New(nil, nil, Options{OutputDir: "out", UseTableName: true})
		renamed := testModel("orders", "analytics", testCol("id", "INT64"))
		renamed.RelationName = "`project.analytics.fct_orders`"
		assert.Equal(t,
			filepath.Join("out", "views", "analytics", "fct_orders.view.lkml"),
			g.filePath(renamed))
	})
}

func TestIsArtifact(t *testing.T) {
	assert.True(t, isArtifact("/target/manifest.json"))
	assert.True(t, isArtifact("/target/catalog.json"))
	assert.False(t, isArtifact("/target/run_results.json"))
	assert.False(t, isArtifact("/target/compiled/orders.sql"))
}
