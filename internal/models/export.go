package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/export"
	"github.com/soltixdb/datahub/internal/records"
)

// ExportStatus represents the status of an export task
type ExportStatus string

const (
	ExportStatusPending    ExportStatus = "pending"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
	ExportStatusExpired    ExportStatus = "expired"
)

// ExportRequest represents a request to export a dataset
type ExportRequest struct {
	DatasetID  string            `json:"dataset_id"`
	Format     string            `json:"format"` // csv, json, xlsx
	YearFrom   int               `json:"year_from,omitempty"`
	YearTo     int               `json:"year_to,omitempty"`
	Region     string            `json:"region,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
	// IncludeAnalysis adds the composite and indicator sheets (xlsx only)
	IncludeAnalysis bool   `json:"include_analysis,omitempty"`
	AnalysisYear    int    `json:"analysis_year,omitempty"`
	Filename        string `json:"filename,omitempty"` // Optional custom filename

	// Parsed fields
	FormatParsed export.Format `json:"-"`
}

// Validate checks the request and applies the default format
func (r *ExportRequest) Validate() error {
	if r.DatasetID == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "dataset_id is required",
		}
	}

	format, err := export.ParseFormat(r.Format)
	if err != nil {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "format must be one of: csv, json, xlsx",
		}
	}
	r.FormatParsed = format
	r.Format = string(format)

	if r.YearFrom < 0 || r.YearTo < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "years must be positive",
		}
	}
	if r.YearFrom != 0 && r.YearTo != 0 && r.YearTo < r.YearFrom {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "year_to must not be before year_from",
		}
	}

	if strings.ContainsAny(r.Filename, `/\`) || strings.Contains(r.Filename, "..") {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "filename must not contain path separators",
		}
	}
	return nil
}

// Filter returns the row filter of the request
func (r *ExportRequest) Filter() records.Filter {
	return records.Filter{
		YearFrom:   r.YearFrom,
		YearTo:     r.YearTo,
		Region:     r.Region,
		Dimensions: r.Dimensions,
	}
}

// ExportTask represents an export task with status
type ExportTask struct {
	TaskID      string        `json:"task_id"`
	Status      ExportStatus  `json:"status"`
	Request     ExportRequest `json:"request"`
	Progress    int           `json:"progress"`     // 0-100
	TotalRows   int64         `json:"total_rows"`   // Total rows written
	FileSize    int64         `json:"file_size"`    // File size in bytes
	FilePath    string        `json:"-"`            // Internal file path (not exposed)
	Filename    string        `json:"filename"`     // Download filename
	ContentType string        `json:"content_type"` // MIME type
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	ExpiresAt   time.Time     `json:"expires_at"` // File expiration time
}

// NewExportTask creates a pending task. The request must be validated.
func NewExportTask(taskID string, request ExportRequest, expiration time.Duration) *ExportTask {
	now := time.Now()

	filename := request.Filename
	if filename == "" {
		filename = generateExportFilename(request)
	} else if !strings.HasSuffix(filename, request.FormatParsed.Extension()) {
		filename += request.FormatParsed.Extension()
	}

	return &ExportTask{
		TaskID:      taskID,
		Status:      ExportStatusPending,
		Request:     request,
		Filename:    filename,
		ContentType: request.FormatParsed.ContentType(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiration),
	}
}

// generateExportFilename builds {dataset}_{from}_{to}.{format}
func generateExportFilename(request ExportRequest) string {
	from, to := "all", "all"
	if request.YearFrom != 0 {
		from = fmt.Sprint(request.YearFrom)
	}
	if request.YearTo != 0 {
		to = fmt.Sprint(request.YearTo)
	}
	return request.DatasetID + "_" + from + "_" + to + request.FormatParsed.Extension()
}

// IsExpired checks if the export task has expired
func (t *ExportTask) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// CanDownload checks if the file can be downloaded
func (t *ExportTask) CanDownload() bool {
	return t.Status == ExportStatusCompleted && !t.IsExpired()
}

// ExportCreateResponse is the response when creating an export
type ExportCreateResponse struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	StatusURL string    `json:"status_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportStatusResponse is the response for an export status check
type ExportStatusResponse struct {
	TaskID      string     `json:"task_id"`
	DatasetID   string     `json:"dataset_id"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	TotalRows   int64      `json:"total_rows,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	Filename    string     `json:"filename,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	DownloadURL string     `json:"download_url,omitempty"`
}

// ToStatusResponse converts ExportTask to ExportStatusResponse
func (t *ExportTask) ToStatusResponse(baseURL string) *ExportStatusResponse {
	resp := &ExportStatusResponse{
		TaskID:      t.TaskID,
		DatasetID:   t.Request.DatasetID,
		Format:      t.Request.Format,
		Status:      string(t.Status),
		Progress:    t.Progress,
		TotalRows:   t.TotalRows,
		FileSize:    t.FileSize,
		Filename:    t.Filename,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
		ExpiresAt:   t.ExpiresAt,
	}

	if t.CanDownload() {
		resp.DownloadURL = ExportFileURL(baseURL, t.TaskID)
	}
	return resp
}

// ExportStatusURL is the status endpoint of a task
func ExportStatusURL(baseURL, taskID string) string {
	return baseURL + "/v1/exports/" + taskID
}

// ExportFileURL is the download endpoint of a task
func ExportFileURL(baseURL, taskID string) string {
	return ExportStatusURL(baseURL, taskID) + "/file"
}
