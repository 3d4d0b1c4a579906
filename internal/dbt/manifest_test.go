package dbt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalManifest = `{
  "metadata": {"adapter_type": "bigquery"},
  "nodes": {
    "model.project.orders": {
      "name": "orders",
      "unique_id": "model.project.orders",
      "resource_type": "model",
      "relation_name": "` + "`proj.shop.orders`" + `",
      "schema": "shop",
      "description": "Order fact table",
      "path": "marts/orders.sql",
      "tags": ["looker"],
      "meta": {
        "looker": {
          "view": {"label": "Orders"},
          "explore": {"group_label": "Sales", "hidden": true}
        }
      },
      "columns": {
        "ID": {
          "name": "ID",
          "description": "Order key",
          "constraints": [{"type": "primary_key"}]
        },
        "amount": {
          "name": "amount",
          "meta": {"looker": {"dimension": {"value_format_name": "usd"}}},
          "tags": ["finance"]
        }
      }
    },
    "seed.project.countries": {
      "name": "countries",
      "resource_type": "seed"
    }
  },
  "exposures": {
    "exposure.project.dashboard": {
      "name": "dashboard",
      "tags": ["bi"],
      "refs": [{"name": "orders"}]
    }
  }
}`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(minimalManifest))
	require.NoError(t, err)

	assert.Equal(t, "bigquery", m.AdapterType)
	require.Len(t, m.Models, 1, "non-model nodes are skipped")

	model := m.Models[0]
	assert.Equal(t, "orders", model.Name)
	assert.Equal(t, "`proj.shop.orders`", model.RelationName)
	assert.Equal(t, "shop", model.Schema)
	assert.Equal(t, "Orders", model.Meta.View.Label)
	assert.Equal(t, "Sales", model.Meta.Explore.GroupLabel)
	require.NotNil(t, model.Meta.Explore.Hidden)
	assert.True(t, *model.Meta.Explore.Hidden)

	// Column names are folded to lowercase at ingestion
	id, ok := model.Columns["id"]
	require.True(t, ok, "column key should be lowercased")
	assert.Equal(t, "id", id.Name)
	assert.True(t, id.IsPrimaryKey)
	assert.False(t, id.Nested)

	amount := model.Columns["amount"]
	require.NotNil(t, amount)
	assert.Equal(t, []string{"finance"}, amount.Tags)
	require.NotNil(t, amount.Meta)
	dim, ok := amount.Meta["dimension"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "usd", dim["value_format_name"])

	require.Len(t, m.Exposures, 1)
	assert.Equal(t, "dashboard", m.Exposures[0].Name)
	assert.Equal(t, []string{"orders"}, m.Exposures[0].Refs)
}

func TestParseManifest_UnsupportedAdapter(t *testing.T) {
	data := `{"metadata": {"adapter_type": "snowflake"}, "nodes": {}}`
	_, err := ParseManifest([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snowflake")
	assert.Contains(t, err.Error(), "bigquery")
}

func TestParseManifest_InvalidJSON(t *testing.T) {
	_, err := ParseManifest([]byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode manifest")
}

func TestParseCatalog(t *testing.T) {
	data := `{
  "nodes": {
    "model.project.orders": {
      "columns": {
        "ID": {"name": "ID", "type": "INT64", "index": 1},
        "Items": {"name": "Items", "type": "ARRAY<STRUCT<sku STRING>>", "index": 2}
      }
    }
  }
}`
	c, err := ParseCatalog([]byte(data))
	require.NoError(t, err)

	node, ok := c.Nodes["model.project.orders"]
	require.True(t, ok)

	id, ok := node.Columns["id"]
	require.True(t, ok, "catalog keys should be lowercased")
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "INT64", id.Type)
	assert.Equal(t, 1, id.Index)

	items, ok := node.Columns["items"]
	require.True(t, ok)
	assert.Equal(t, "ARRAY<STRUCT<sku STRING>>", items.Type)
}

func TestModel_OrderedColumns(t *testing.T) {
	model := &Model{
		Columns: map[string]*Column{
			"b": {Name: "b", Index: 2},
			"a": {Name: "a", Index: 3},
			"c": {Name: "c", Index: 1},
			"d": {Name: "d", Index: 2},
		},
	}

	var names []string
	for _, col := range model.OrderedColumns() {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"c", "b", "d", "a"}, names, "index order with name tiebreak")
}

func TestColumn_Clone(t *testing.T) {
	col := &Column{
		Name: "id",
		Meta: map[string]any{"dimension": map[string]any{"hidden": true}},
	}
	clone := col.Clone()
	clone.Meta["extra"] = "x"

	assert.NotContains(t, col.Meta, "extra", "clone must not share the meta map")
	assert.Equal(t, col.Name, clone.Name)
}
