package dbt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CatalogColumn is a column as observed in the warehouse.
// Type is the full BigQuery type string (e.g. "ARRAY<STRUCT<id INT64>>").
type CatalogColumn struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// CatalogNode is the catalog entry for a single relation.
type CatalogNode struct {
	Columns map[string]CatalogColumn `json:"columns"`
}

// Catalog is the parsed subset of a dbt catalog.json.
type Catalog struct {
	Nodes map[string]CatalogNode `json:"nodes"`
}

// ParseCatalog decodes a raw catalog.json document.
// Column map keys are folded to lowercase to match manifest ingestion.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	for id, node := range c.Nodes {
		folded := make(map[string]CatalogColumn, len(node.Columns))
		for name, col := range node.Columns {
			lower := strings.ToLower(name)
			col.Name = lower
			folded[lower] = col
		}
		node.Columns = folded
		c.Nodes[id] = node
	}
	return &c, nil
}
