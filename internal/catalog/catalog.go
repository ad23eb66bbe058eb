// Package catalog holds the static metadata of the published datasets:
// description, schema, quality and provenance.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Dataset ids
const (
	SchoolParticipationID = "bps-edu-001"
	SchoolingID           = "bps-edu-002"
	LifeExpectancyID      = "bps-health-001"
	NutritionID           = "bps-health-002"
	GRDPID                = "bps-econ-001"
	UnemploymentID        = "bps-econ-002"
	PriceIndexID          = "bps-econ-003"
	PovertyID             = "bps-econ-004"
)

// ErrDatasetNotFound is returned for an unknown dataset id
var ErrDatasetNotFound = errors.New("dataset not found")

//go:embed datasets.yaml
var datasetsYAML []byte

// Column describes one schema column
type Column struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type" json:"type"`
	Unit       string `yaml:"unit" json:"unit,omitempty"`
	Definition string `yaml:"definition" json:"definition"`
}

// Contact is the responsible unit
type Contact struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// Quality is the declared quality of a dataset
type Quality struct {
	Completeness     float64  `yaml:"completeness" json:"completeness"`
	Accuracy         string   `yaml:"accuracy" json:"accuracy"`
	Timeliness       string   `yaml:"timeliness" json:"timeliness"`
	ConsistencyRules []string `yaml:"consistency_rules" json:"consistency_rules"`
}

// Dataset is the metadata of one dataset
type Dataset struct {
	ID                    string    `yaml:"id" json:"id"`
	Title                 string    `yaml:"title" json:"title"`
	Description           string    `yaml:"description" json:"description"`
	Publisher             string    `yaml:"publisher" json:"publisher"`
	Published             time.Time `yaml:"published" json:"published"`
	Modified              time.Time `yaml:"modified" json:"modified"`
	License               string    `yaml:"license" json:"license"`
	Language              string    `yaml:"language" json:"language"`
	Keywords              []string  `yaml:"keywords" json:"keywords"`
	Category              string    `yaml:"category" json:"category"`
	Coverage              string    `yaml:"coverage" json:"coverage"`
	SpatialGranularity    string    `yaml:"spatial_granularity" json:"spatial_granularity"`
	TemporalGranularity   string    `yaml:"temporal_granularity" json:"temporal_granularity"`
	Formats               []string  `yaml:"formats" json:"formats"`
	Schema                []Column  `yaml:"schema" json:"schema"`
	PrimaryKey            []string  `yaml:"primary_key" json:"primary_key"`
	MissingValue          string    `yaml:"missing_value" json:"missing_value"`
	CollectionMethod      string    `yaml:"collection_method" json:"collection_method"`
	SamplingMethod        string    `yaml:"sampling_method" json:"sampling_method"`
	Tools                 string    `yaml:"tools" json:"tools"`
	Contact               Contact   `yaml:"contact" json:"contact"`
	Lineage               string    `yaml:"lineage" json:"lineage"`
	Quality               Quality   `yaml:"quality" json:"quality"`
	Sensitivity           string    `yaml:"sensitivity" json:"sensitivity"`
	UseCases              []string  `yaml:"use_cases" json:"use_cases"`
	RecommendedTransforms []string  `yaml:"recommended_transforms" json:"recommended_transforms"`
}

// Columns returns the schema column names in order
func (d Dataset) Columns() []string {
	out := make([]string, len(d.Schema))
	for i, c := range d.Schema {
		out[i] = c.Name
	}
	return out
}

// matches reports whether the dataset mentions text in its id, title,
// description or keywords, ignoring case
func (d Dataset) matches(text string) bool {
	text = strings.ToLower(text)
	if strings.Contains(strings.ToLower(d.ID), text) ||
		strings.Contains(strings.ToLower(d.Title), text) ||
		strings.Contains(strings.ToLower(d.Description), text) {
		return true
	}
	return slices.ContainsFunc(d.Keywords, func(k string) bool {
		return strings.Contains(strings.ToLower(k), text)
	})
}

// Query filters List. Empty fields match everything.
type Query struct {
	Category string
	Text     string
}

// Catalog is an immutable, id-ordered set of datasets
type Catalog struct {
	datasets []Dataset
	byID     map[string]int
}

// Parse decodes a YAML list of datasets
func Parse(data []byte) (*Catalog, error) {
	var datasets []Dataset
	if err := yaml.Unmarshal(data, &datasets); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(datasets)
}

// New builds a catalog, rejecting empty or duplicate ids
func New(datasets []Dataset) (*Catalog, error) {
	c := &Catalog{
		datasets: slices.Clone(datasets),
		byID:     make(map[string]int, len(datasets)),
	}
	slices.SortFunc(c.datasets, func(a, b Dataset) int { return strings.Compare(a.ID, b.ID) })
	for i, d := range c.datasets {
		if d.ID == "" {
			return nil, fmt.Errorf("dataset %q has no id", d.Title)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate dataset id %s", d.ID)
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

// Default returns the built-in catalog
func Default() (*Catalog, error) {
	return Parse(datasetsYAML)
}

// Len returns the number of datasets
func (c *Catalog) Len() int {
	return len(c.datasets)
}

// Get returns a dataset by id
func (c *Catalog) Get(id string) (Dataset, error) {
	i, ok := c.byID[id]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return c.datasets[i], nil
}

// List returns the datasets matching q, ordered by id
func (c *Catalog) List(q Query) []Dataset {
	out := make([]Dataset, 0, len(c.datasets))
	for _, d := range c.datasets {
		if q.Category != "" && !strings.EqualFold(d.Category, q.Category) {
			continue
		}
		if q.Text != "" && !d.matches(q.Text) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Categories returns the distinct categories, sorted
func (c *Catalog) Categories() []string {
	var out []string
	for _, d := range c.datasets {
		if !slices.Contains(out, d.Category) {
			out = append(out, d.Category)
		}
	}
	slices.Sort(out)
	return out
}
