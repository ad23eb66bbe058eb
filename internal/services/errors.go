// Package services provides the business logic layer between the HTTP
// handlers and the analytics core. Services resolve datasets from the store,
// validate requests and turn core results into response shapes.
package services

import (
	"errors"
	"net/http"

	"github.com/soltixdb/datahub/internal/catalog"
)

// Error codes returned by the services
const (
	CodeDatasetNotFound = "DATASET_NOT_FOUND"
	CodeInvalidMetric   = "INVALID_METRIC"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNoMethodology   = "NO_METHODOLOGY"
	CodeNoData          = "NO_DATA"
	CodeTaskNotFound    = "TASK_NOT_FOUND"
	CodeExportNotReady  = "EXPORT_NOT_READY"
	CodeExportExpired   = "EXPORT_EXPIRED"
	CodeQueueFull       = "EXPORT_QUEUE_FULL"
	CodeInternal        = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeDatasetNotFound: http.StatusNotFound,
	CodeInvalidMetric:   http.StatusBadRequest,
	CodeInvalidRequest:  http.StatusBadRequest,
	CodeNoMethodology:   http.StatusNotFound,
	CodeNoData:          http.StatusNotFound,
	CodeTaskNotFound:    http.StatusNotFound,
	CodeExportNotReady:  http.StatusConflict,
	CodeExportExpired:   http.StatusGone,
	CodeQueueFull:       http.StatusServiceUnavailable,
}

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code to a response status. Unknown codes are
// internal errors.
func (e *ServiceError) HTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// AsServiceError extracts a ServiceError from an error chain
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

func datasetNotFound(id string) *ServiceError {
	return NewServiceErrorWithDetails(CodeDatasetNotFound, "dataset not found: "+id,
		map[string]interface{}{"dataset_id": id})
}

// lookupError converts a catalog lookup failure
func lookupError(id string, err error) error {
	if errors.Is(err, catalog.ErrDatasetNotFound) {
		return datasetNotFound(id)
	}
	return err
}
