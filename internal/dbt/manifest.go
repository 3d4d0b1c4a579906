// Package dbt provides the data model for dbt build artifacts and the
// parser that joins a manifest with its catalog to produce typed models.
package dbt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// SupportedAdapters lists the dbt adapter types this tool can handle.
var SupportedAdapters = []string{"bigquery"}

// Column is a single column of a model after the manifest/catalog join.
// Name is the lowercase dot-joined path; the dot count equals the nesting
// depth. Meta holds the raw looker metadata subtree from the manifest so
// cookbook actions can be merged into it before it is decoded.
type Column struct {
	Name         string
	Description  string
	DataType     string
	InnerTypes   []string
	Tags         []string
	Index        int
	Meta         map[string]any
	IsPrimaryKey bool
	Nested       bool
}

// Clone returns a shallow copy of the column with its own Meta map.
func (c *Column) Clone() *Column {
	out := *c
	if c.Meta != nil {
		out.Meta = make(map[string]any, len(c.Meta))
		for k, v := range c.Meta {
			out.Meta[k] = v
		}
	}
	return &out
}

// ViewMeta holds view-level looker overrides declared on a model.
type ViewMeta struct {
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`
	Hidden      *bool  `mapstructure:"hidden"`
}

// ExploreMeta holds explore-level looker overrides declared on a model.
type ExploreMeta struct {
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`
	GroupLabel  string `mapstructure:"group_label"`
	Hidden      *bool  `mapstructure:"hidden"`
}

// ModelMeta is the looker metadata subtree of a model.
type ModelMeta struct {
	View    ViewMeta    `mapstructure:"view"`
	Explore ExploreMeta `mapstructure:"explore"`
}

// Model is a dbt model joined with its catalog entry.
// Column map keys are folded to lowercase at ingestion; every Column.Name
// matches its key.
type Model struct {
	Name         string
	UniqueID     string
	RelationName string
	Schema       string
	Description  string
	Path         string
	Tags         []string
	Columns      map[string]*Column
	Meta         ModelMeta
}

// OrderedColumns returns the model's columns sorted by catalog index, with
// name as tiebreak. This is the canonical deterministic iteration order.
func (m *Model) OrderedColumns() []*Column {
	cols := make([]*Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].Index != cols[j].Index {
			return cols[i].Index < cols[j].Index
		}
		return cols[i].Name < cols[j].Name
	})
	return cols
}

// HasTag reports whether the model carries the given tag.
func (m *Model) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Exposure is a dbt exposure referencing one or more models.
type Exposure struct {
	Name string
	Tags []string
	Refs []string
}

// Manifest is the parsed subset of a dbt manifest.json.
type Manifest struct {
	AdapterType string
	Models      []*Model
	Exposures   []Exposure
}

type manifestConstraint struct {
	Type string `json:"type"`
}

type manifestColumn struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Meta        map[string]any       `json:"meta"`
	Tags        []string             `json:"tags"`
	Constraints []manifestConstraint `json:"constraints"`
}

type manifestNode struct {
	Name         string                    `json:"name"`
	UniqueID     string                    `json:"unique_id"`
	ResourceType string                    `json:"resource_type"`
	RelationName string                    `json:"relation_name"`
	Schema       string                    `json:"schema"`
	Description  string                    `json:"description"`
	Path         string                    `json:"path"`
	Tags         []string                  `json:"tags"`
	Columns      map[string]manifestColumn `json:"columns"`
	Meta         map[string]any            `json:"meta"`
}

type manifestExposureRef struct {
	Name string `json:"name"`
}

type manifestExposure struct {
	Name string                `json:"name"`
	Tags []string              `json:"tags"`
	Refs []manifestExposureRef `json:"refs"`
}

type manifestMetadata struct {
	AdapterType string `json:"adapter_type"`
}

type rawManifest struct {
	Nodes     map[string]manifestNode     `json:"nodes"`
	Exposures map[string]manifestExposure `json:"exposures"`
	Metadata  manifestMetadata            `json:"metadata"`
}

// ParseManifest decodes a raw manifest.json document.
// It fails when the manifest's adapter type is not supported.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	if !isSupportedAdapter(raw.Metadata.AdapterType) {
		return nil, fmt.Errorf("adapter type %q is not supported (supported: %s)",
			raw.Metadata.AdapterType, strings.Join(SupportedAdapters, ", "))
	}

	m := &Manifest{AdapterType: raw.Metadata.AdapterType}

	// Node iteration order is irrelevant here; models are sorted by name
	// so downstream output is stable.
	for _, node := range raw.Nodes {
		if node.ResourceType != "model" {
			continue
		}
		model, err := newModel(node)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", node.UniqueID, err)
		}
		m.Models = append(m.Models, model)
	}
	sort.Slice(m.Models, func(i, j int) bool { return m.Models[i].Name < m.Models[j].Name })

	for _, exp := range raw.Exposures {
		e := Exposure{Name: exp.Name, Tags: exp.Tags}
		for _, ref := range exp.Refs {
			e.Refs = append(e.Refs, ref.Name)
		}
		m.Exposures = append(m.Exposures, e)
	}
	sort.Slice(m.Exposures, func(i, j int) bool { return m.Exposures[i].Name < m.Exposures[j].Name })

	return m, nil
}

func isSupportedAdapter(adapterType string) bool {
	for _, a := range SupportedAdapters {
		if a == adapterType {
			return true
		}
	}
	return false
}

func newModel(node manifestNode) (*Model, error) {
	model := &Model{
		Name:         node.Name,
		UniqueID:     node.UniqueID,
		RelationName: node.RelationName,
		Schema:       node.Schema,
		Description:  node.Description,
		Path:         node.Path,
		Tags:         node.Tags,
		Columns:      make(map[string]*Column, len(node.Columns)),
	}

	if err := decodeLookerMeta(node.Meta, &model.Meta); err != nil {
		return nil, err
	}

	for name, mc := range node.Columns {
		col := newColumn(name, mc)
		model.Columns[col.Name] = col
	}
	return model, nil
}

func newColumn(name string, mc manifestColumn) *Column {
	// Column names are case-folded once at ingestion; the rest of the
	// pipeline relies on lowercase dot paths.
	lower := strings.ToLower(name)
	col := &Column{
		Name:        lower,
		Description: mc.Description,
		Tags:        mc.Tags,
		Nested:      strings.Contains(lower, "."),
		Meta:        lookerSubtree(mc.Meta),
	}
	for _, constraint := range mc.Constraints {
		if constraint.Type == "primary_key" {
			col.IsPrimaryKey = true
		}
	}
	return col
}

// lookerSubtree extracts the looker metadata mapping from a raw meta map.
func lookerSubtree(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	if looker, ok := meta["looker"].(map[string]any); ok {
		return looker
	}
	return nil
}

func decodeLookerMeta(meta map[string]any, out *ModelMeta) error {
	looker := lookerSubtree(meta)
	if looker == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(looker); err != nil {
		return fmt.Errorf("invalid looker metadata: %w", err)
	}
	return nil
}
