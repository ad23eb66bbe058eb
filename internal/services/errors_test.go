package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError(CodeInvalidRequest, "Error message")

	if err.Code != CodeInvalidRequest {
		t.Errorf("Expected code %s, got '%s'", CodeInvalidRequest, err.Code)
	}
	if err.Message != "Error message" {
		t.Errorf("Expected message 'Error message', got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{
		"metric": "aps",
	}

	err := NewServiceErrorWithDetails(CodeInvalidMetric, "unknown metric", details)
	if err.Details["metric"] != "aps" {
		t.Errorf("Expected metric detail, got %v", err.Details)
	}

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("marshal failed: %v", marshalErr)
	}
	if !strings.Contains(string(data), `"code":"INVALID_METRIC"`) {
		t.Errorf("unexpected json: %s", data)
	}
}

func TestServiceError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeDatasetNotFound, http.StatusNotFound},
		{CodeInvalidMetric, http.StatusBadRequest},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeTaskNotFound, http.StatusNotFound},
		{CodeExportNotReady, http.StatusConflict},
		{CodeExportExpired, http.StatusGone},
		{CodeQueueFull, http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := NewServiceError(tt.code, "x").HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsServiceError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewServiceError(CodeNoData, "empty"))
	svcErr, ok := AsServiceError(wrapped)
	if !ok || svcErr.Code != CodeNoData {
		t.Fatalf("expected wrapped service error, got %v", wrapped)
	}

	if _, ok := AsServiceError(fmt.Errorf("plain")); ok {
		t.Error("plain error must not match")
	}
}
