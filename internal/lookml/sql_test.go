package lookml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/warn"
)

func TestValidateSQL(t *testing.T) {
	t.Run("valid expression passes through", func(t *testing.T) {
		warnings := &warn.Collector{}
		got := ValidateSQL("${TABLE}.amount * 100", warnings)
		assert.Equal(t, "${TABLE}.amount * 100", got)
		assert.Equal(t, 0, warnings.Len())
	})

	t.Run("trailing terminators are stripped with warning", func(t *testing.T) {
		warnings := &warn.Collector{}
		got := ValidateSQL("${TABLE}.amount ;;", warnings)
		assert.Equal(t, "${TABLE}.amount", got)
		assert.Equal(t, 1, warnings.Len())
	})

	t.Run("missing reference drops the expression", func(t *testing.T) {
		warnings := &warn.Collector{}
		got := ValidateSQL("amount * 100", warnings)
		assert.Empty(t, got)
		assert.Equal(t, 1, warnings.Len())
	})

	t.Run("cross-view reference is accepted", func(t *testing.T) {
		warnings := &warn.Collector{}
		got := ValidateSQL("${orders.amount} - ${orders.discount}", warnings)
		assert.Equal(t, "${orders.amount} - ${orders.discount}", got)
		assert.Equal(t, 0, warnings.Len())
	})
}

func TestSQLExpression(t *testing.T) {
	rootView := &View{Name: "orders", IsRoot: true}
	itemsView := &View{Name: "orders__items", ArrayPath: "items"}

	tests := []struct {
		name     string
		entry    ColumnEntry
		view     *View
		expected string
	}{
		{
			"root scalar",
			ColumnEntry{Column: &dbt.Column{Name: "id"}},
			rootView,
			"${TABLE}.id",
		},
		{
			"root struct field keeps its dot path",
			ColumnEntry{Column: &dbt.Column{Name: "address.city"}},
			rootView,
			"${TABLE}.address.city",
		},
		{
			"flattened array references the child view",
			ColumnEntry{Column: &dbt.Column{Name: "tags"}, Flattened: true},
			rootView,
			"orders__tags",
		},
		{
			"nested view field is referenced bare",
			ColumnEntry{Column: &dbt.Column{Name: "items.sku"}},
			itemsView,
			"sku",
		},
		{
			"nested struct field relative to the array",
			ColumnEntry{Column: &dbt.Column{Name: "items.detail.color"}},
			itemsView,
			"${TABLE}.detail.color",
		},
		{
			"flattened nested array references its own view",
			ColumnEntry{Column: &dbt.Column{Name: "items.prices"}, Flattened: true},
			itemsView,
			"orders__items__prices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sqlExpression(tt.entry, tt.view, rootName(tt.view)))
		})
	}
}

func TestDimensionName(t *testing.T) {
	rootView := &View{Name: "orders", IsRoot: true}
	itemsView := &View{Name: "orders__items", ArrayPath: "items"}

	assert.Equal(t, "id", dimensionName(ColumnEntry{Column: &dbt.Column{Name: "id"}}, rootView))
	assert.Equal(t, "address__city", dimensionName(ColumnEntry{Column: &dbt.Column{Name: "address.city"}}, rootView))
	assert.Equal(t, "sku", dimensionName(ColumnEntry{Column: &dbt.Column{Name: "items.sku"}}, itemsView))
	assert.Equal(t, "detail__color", dimensionName(ColumnEntry{Column: &dbt.Column{Name: "items.detail.color"}}, itemsView))
}
