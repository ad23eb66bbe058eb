package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/catalog"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/models"
)

func createTestExportService(t *testing.T, bus *events.Bus, workers, queueSize int) *ExportService {
	t.Helper()
	cfg := config.ExportConfig{
		Dir:             t.TempDir(),
		Workers:         workers,
		QueueSize:       queueSize,
		Expiration:      time.Hour,
		CleanupInterval: time.Hour,
	}
	return NewExportService(logging.Nop(), createTestStore(t, 2021, 2023), bus, cfg)
}

// waitForTask polls until the task leaves pending and processing
func waitForTask(t *testing.T, service *ExportService, taskID string) *models.ExportTask {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		task, err := service.GetTaskStatus(taskID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if task.Status != models.ExportStatusPending && task.Status != models.ExportStatusProcessing {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Task %s did not finish", taskID)
	return nil
}

func TestExportService_CSV(t *testing.T) {
	transport := events.NewMemoryTransport()
	bus := events.NewBus(transport, "", logging.Nop())
	defer func() { _ = bus.Close() }()

	service := createTestExportService(t, bus, 2, 4)
	defer service.Stop()

	task, err := service.CreateExport(context.Background(), &models.ExportRequest{
		DatasetID: catalog.LifeExpectancyID,
		YearFrom:  2022,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if task.Filename != catalog.LifeExpectancyID+"_2022_all.csv" {
		t.Errorf("Unexpected filename %s", task.Filename)
	}

	done := waitForTask(t, service, task.TaskID)
	if done.Status != models.ExportStatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", done.Status, done.Error)
	}
	if done.TotalRows != 68 {
		t.Errorf("Expected 68 rows, got %d", done.TotalRows)
	}
	if done.Progress != 100 {
		t.Errorf("Expected progress 100, got %d", done.Progress)
	}

	path, filename, contentType, err := service.GetFilePath(task.TaskID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if filename != task.Filename || contentType != "text/csv" {
		t.Errorf("Unexpected file metadata %s %s", filename, contentType)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if lines := bytes.Count(data, []byte("\n")); lines != 69 {
		t.Errorf("Expected header plus 68 lines, got %d", lines)
	}
	if int64(len(data)) != done.FileSize {
		t.Errorf("Expected file size %d, got %d", len(data), done.FileSize)
	}

	if pending := transport.Pending(bus.Subject(events.ExportCompleted)); pending != 1 {
		t.Errorf("Expected 1 export.completed event, got %d", pending)
	}
}

func TestExportService_XLSXWithAnalysis(t *testing.T) {
	service := createTestExportService(t, nil, 1, 4)
	defer service.Stop()

	task, err := service.CreateExport(context.Background(), &models.ExportRequest{
		DatasetID:       catalog.PovertyID,
		Format:          "excel",
		IncludeAnalysis: true,
		Filename:        "kemiskinan",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if task.Filename != "kemiskinan.xlsx" {
		t.Errorf("Expected extension appended, got %s", task.Filename)
	}

	done := waitForTask(t, service, task.TaskID)
	if done.Status != models.ExportStatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", done.Status, done.Error)
	}
	if done.FileSize == 0 {
		t.Error("Expected a non-empty workbook")
	}
}

func TestExportService_CreateExport_Invalid(t *testing.T) {
	service := createTestExportService(t, nil, 1, 1)
	defer service.Stop()
	ctx := context.Background()

	_, err := service.CreateExport(ctx, &models.ExportRequest{DatasetID: catalog.PovertyID, Format: "parquet"})
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) || fiberErr.Code != fiber.StatusBadRequest {
		t.Errorf("Expected 400 fiber error, got %v", err)
	}

	_, err = service.CreateExport(ctx, &models.ExportRequest{DatasetID: "missing"})
	expectCode(t, err, CodeDatasetNotFound)
}

func TestExportService_QueueFullAndNotReady(t *testing.T) {
	service := createTestExportService(t, nil, 1, 1)
	// no worker picks tasks up after Stop
	service.Stop()
	ctx := context.Background()

	queued, err := service.CreateExport(ctx, &models.ExportRequest{DatasetID: catalog.PovertyID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if queued.Status != models.ExportStatusPending {
		t.Errorf("Expected pending, got %s", queued.Status)
	}

	_, err = service.CreateExport(ctx, &models.ExportRequest{DatasetID: catalog.PovertyID})
	expectCode(t, err, CodeQueueFull)

	_, _, _, err = service.GetFilePath(queued.TaskID)
	expectCode(t, err, CodeExportNotReady)

	if tasks := service.ListTasks(); len(tasks) != 1 {
		t.Errorf("Expected only the queued task, got %d", len(tasks))
	}
}

func TestExportService_TaskNotFound(t *testing.T) {
	service := createTestExportService(t, nil, 1, 1)
	defer service.Stop()

	_, err := service.GetTaskStatus("nope")
	expectCode(t, err, CodeTaskNotFound)

	_, _, _, err = service.GetFilePath("nope")
	expectCode(t, err, CodeTaskNotFound)
}

func TestExportService_Expiry(t *testing.T) {
	service := createTestExportService(t, nil, 1, 1)
	defer service.Stop()

	task, err := service.CreateExport(context.Background(), &models.ExportRequest{DatasetID: catalog.GRDPID, Format: "json"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	done := waitForTask(t, service, task.TaskID)
	if done.Status != models.ExportStatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", done.Status, done.Error)
	}
	path, _, _, err := service.GetFilePath(task.TaskID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// force expiry
	service.taskMutex.Lock()
	service.tasks[task.TaskID].ExpiresAt = time.Now().Add(-time.Minute)
	service.taskMutex.Unlock()

	_, _, _, err = service.GetFilePath(task.TaskID)
	expectCode(t, err, CodeExportExpired)

	status, err := service.GetTaskStatus(task.TaskID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Status != models.ExportStatusExpired {
		t.Errorf("Expected expired, got %s", status.Status)
	}

	if n := service.cleanupExpired(time.Now().Add(cleanupGrace + time.Minute)); n != 1 {
		t.Errorf("Expected 1 task cleaned up, got %d", n)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected export file removed, got %v", err)
	}
	_, err = service.GetTaskStatus(task.TaskID)
	expectCode(t, err, CodeTaskNotFound)
}
