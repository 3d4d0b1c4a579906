package warn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Dedup(t *testing.T) {
	c := &Collector{}
	c.Add("same")
	c.Add("same")
	c.Addf("column %s: bad type", "orders.id")
	c.Addf("column %s: bad type", "orders.id")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"same", "column orders.id: bad type"}, c.Messages())
}

func TestCollector_ZeroValue(t *testing.T) {
	var c Collector
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Messages())
	assert.Empty(t, c.Sorted())

	c.Add("first")
	assert.Equal(t, 1, c.Len())
}

func TestCollector_Merge(t *testing.T) {
	a := &Collector{}
	a.Add("shared")
	a.Add("only a")

	b := &Collector{}
	b.Add("shared")
	b.Add("only b")

	a.Merge(b)

	assert.Equal(t, []string{"shared", "only a", "only b"}, a.Messages())
	// Merging must not mutate the source
	assert.Equal(t, 2, b.Len())
}

func TestCollector_Sorted(t *testing.T) {
	c := &Collector{}
	c.Add("zebra")
	c.Add("alpha")
	c.Add("mid")

	assert.Equal(t, []string{"alpha", "mid", "zebra"}, c.Sorted())
	// Insertion order stays intact
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, c.Messages())
}
