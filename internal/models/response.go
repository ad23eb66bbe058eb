package models

import "time"

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	Data      DataSourceInfo `json:"data"`
}

// DataSourceInfo describes where the served bundle came from
type DataSourceInfo struct {
	Source   string         `json:"source"`
	Seed     uint64         `json:"seed"`
	FromYear int            `json:"from_year"`
	ToYear   int            `json:"to_year"`
	LoadedAt time.Time      `json:"loaded_at"`
	Rows     map[string]int `json:"rows"`
}

// DatasetSummary is one entry of the catalog listing
type DatasetSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Publisher   string    `json:"publisher"`
	Keywords    []string  `json:"keywords,omitempty"`
	Modified    time.Time `json:"modified"`
	Rows        int       `json:"rows"`
	HasAnalysis bool      `json:"has_analysis"`
}

// DatasetListResponse represents list datasets response
type DatasetListResponse struct {
	Datasets   []DatasetSummary `json:"datasets"`
	Count      int              `json:"count"`
	Categories []string         `json:"categories"`
}

// RecordsResponse is one page of typed dataset rows
type RecordsResponse struct {
	DatasetID string   `json:"dataset_id"`
	Columns   []string `json:"columns"`
	Total     int      `json:"total"`
	Offset    int      `json:"offset"`
	Limit     int      `json:"limit"`
	Count     int      `json:"count"`
	Records   any      `json:"records"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
