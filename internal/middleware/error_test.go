package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/services"
)

// doError runs one request against a route returning err and decodes the body
func doError(t *testing.T, err error) (int, models.ErrorResponse) {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.Nop()),
	})
	app.Get("/test", func(c *fiber.Ctx) error {
		return err
	})

	resp, testErr := app.Test(httptest.NewRequest("GET", "/test", nil))
	if testErr != nil {
		t.Fatalf("Failed to test request: %v", testErr)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return resp.StatusCode, errResp
}

func TestErrorHandler_FiberError(t *testing.T) {
	tests := []struct {
		name           string
		fiberError     *fiber.Error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "BadRequest error",
			fiberError:     fiber.ErrBadRequest,
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   services.CodeInvalidRequest,
			expectedMsg:    "Bad Request",
		},
		{
			name:           "Unauthorized error",
			fiberError:     fiber.ErrUnauthorized,
			expectedStatus: fiber.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
			expectedMsg:    "Unauthorized",
		},
		{
			name:           "NotFound error",
			fiberError:     fiber.ErrNotFound,
			expectedStatus: fiber.StatusNotFound,
			expectedCode:   "NOT_FOUND",
			expectedMsg:    "Not Found",
		},
		{
			name:           "ServiceUnavailable error",
			fiberError:     fiber.ErrServiceUnavailable,
			expectedStatus: fiber.StatusServiceUnavailable,
			expectedCode:   "ERROR",
			expectedMsg:    "Service Unavailable",
		},
		{
			name:           "Validation error",
			fiberError:     fiber.NewError(fiber.StatusBadRequest, "dataset_id is required"),
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   services.CodeInvalidRequest,
			expectedMsg:    "dataset_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, errResp := doError(t, tt.fiberError)

			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}
			if errResp.Error.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Error.Code)
			}
			if errResp.Error.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, errResp.Error.Message)
			}
			if errResp.Error.Path != "/test" {
				t.Errorf("Expected path '/test', got %q", errResp.Error.Path)
			}
		})
	}
}

func TestErrorHandler_ServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "dataset not found",
			err:            services.NewServiceError(services.CodeDatasetNotFound, "dataset not found: x"),
			expectedStatus: fiber.StatusNotFound,
			expectedCode:   services.CodeDatasetNotFound,
		},
		{
			name:           "invalid metric",
			err:            services.NewServiceError(services.CodeInvalidMetric, "unknown metric: gini"),
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   services.CodeInvalidMetric,
		},
		{
			name:           "export expired",
			err:            services.NewServiceError(services.CodeExportExpired, "export has expired"),
			expectedStatus: fiber.StatusGone,
			expectedCode:   services.CodeExportExpired,
		},
		{
			name:           "wrapped",
			err:            fmt.Errorf("handler: %w", services.NewServiceError(services.CodeExportNotReady, "not ready")),
			expectedStatus: fiber.StatusConflict,
			expectedCode:   services.CodeExportNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, errResp := doError(t, tt.err)

			if status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}
			if errResp.Error.Code != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, errResp.Error.Code)
			}
		})
	}
}

func TestErrorHandler_ServiceErrorDetails(t *testing.T) {
	err := services.NewServiceErrorWithDetails(services.CodeInvalidMetric, "unknown metric: gini",
		map[string]interface{}{"available_metrics": []string{"tpt"}})

	_, errResp := doError(t, err)
	if errResp.Error.Message != "unknown metric: gini" {
		t.Errorf("Unexpected message %q", errResp.Error.Message)
	}
	if _, ok := errResp.Error.Details["available_metrics"]; !ok {
		t.Errorf("Expected details to be rendered, got %v", errResp.Error.Details)
	}
}

func TestErrorHandler_GenericError(t *testing.T) {
	status, errResp := doError(t, errors.New("something went wrong"))

	// Generic errors should return 500 Internal Server Error
	if status != fiber.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", fiber.StatusInternalServerError, status)
	}
	if errResp.Error.Message != "Internal Server Error" {
		t.Errorf("Expected message 'Internal Server Error', got %q", errResp.Error.Message)
	}
	if errResp.Error.Code != services.CodeInternal {
		t.Errorf("Expected code %q, got %q", services.CodeInternal, errResp.Error.Code)
	}
}

func TestErrorHandler_ResponseFormat(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.Nop()),
	})
	app.Get("/test", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", contentType)
	}

	body, _ := io.ReadAll(resp.Body)
	var rawResp map[string]interface{}
	if err := json.Unmarshal(body, &rawResp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	errorMap, ok := rawResp["error"].(map[string]interface{})
	if !ok {
		t.Fatal("Response should have an 'error' object")
	}
	for _, field := range []string{"code", "message", "path"} {
		if _, exists := errorMap[field]; !exists {
			t.Errorf("Error object should have %q field", field)
		}
	}
	if _, exists := errorMap["details"]; exists {
		t.Error("Empty details should be omitted")
	}
}

func TestErrorHandler_PanicRecovery(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.Nop()),
	})
	app.Use(recover.New())
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("test panic")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected status 500 after panic, got %d", resp.StatusCode)
	}
}
