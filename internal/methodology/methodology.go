// Package methodology is the registry of per-dataset analyses: classification
// bands, composite weights and the clustering strategy. Thresholds that
// disagree between datasets are kept per dataset and never unified.
package methodology

import (
	"slices"

	"github.com/soltixdb/datahub/internal/analytics/composite"
	"github.com/soltixdb/datahub/internal/analytics/indicator"
)

// Interpretation describes the three outcome bands in words
type Interpretation struct {
	Good   string `json:"good"`
	Medium string `json:"medium"`
	Bad    string `json:"bad"`
}

// Analysis is one fixed analysis of a dataset
type Analysis struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Formula        string               `json:"formula"`
	Unit           string               `json:"unit,omitempty"`
	Interpretation Interpretation       `json:"interpretation"`
	Bands          indicator.Classifier `json:"bands,omitempty"`
	// Target is the level used for years-to-target estimates
	Target float64 `json:"target,omitempty"`
	// Weights of a weighted-sum analysis, in formula order
	Weights []float64 `json:"weights,omitempty"`
}

// Composite describes the dataset's composite index
type Composite struct {
	Name          string                `json:"name"`
	Formula       string                `json:"formula"`
	Normalization string                `json:"normalization"`
	Components    []composite.Component `json:"components"`
}

// Clustering describes how composite scores are tiered
type Clustering struct {
	Method   string              `json:"method"`
	Criteria string              `json:"criteria"`
	Labels   composite.Labels    `json:"labels"`
	Strategy composite.Clusterer `json:"-"`
}

// Methodology is the full analysis plan of one dataset
type Methodology struct {
	DatasetID   string     `json:"dataset_id"`
	DatasetName string     `json:"dataset_name"`
	Analyses    []Analysis `json:"analyses"`
	Composite   Composite  `json:"composite"`
	Clustering  Clustering `json:"clustering"`
}

// Analysis returns the analysis with the given id
func (m Methodology) Analysis(id string) (Analysis, bool) {
	for _, a := range m.Analyses {
		if a.ID == id {
			return a, true
		}
	}
	return Analysis{}, false
}

// Bands returns the classifier of an analysis. An unknown id yields a ladder
// that labels everything "unclassified".
func (m Methodology) Bands(id string) indicator.Classifier {
	if a, ok := m.Analysis(id); ok && a.Bands != nil {
		return a.Bands
	}
	return indicator.Ladder{Floor: "unclassified"}
}

// Spec returns the composite spec with the dataset's clustering strategy
func (m Methodology) Spec() composite.Spec {
	return composite.Spec{
		Components: slices.Clone(m.Composite.Components),
		Clusterer:  m.Clustering.Strategy,
	}
}

// StrategyName is the name of the clustering strategy, for display
func (m Methodology) StrategyName() string {
	if m.Clustering.Strategy == nil {
		return ""
	}
	return m.Clustering.Strategy.Name()
}

// Get returns the methodology of a dataset
func Get(datasetID string) (Methodology, bool) {
	m, ok := registry[datasetID]
	return m, ok
}

// Has reports whether a dataset has a methodology
func Has(datasetID string) bool {
	_, ok := registry[datasetID]
	return ok
}

// DatasetIDs returns the ids of datasets with a methodology, sorted
func DatasetIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
