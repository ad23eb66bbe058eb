package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/datahub/internal/analysis"
	"github.com/soltixdb/datahub/internal/config"
	"github.com/soltixdb/datahub/internal/events"
	"github.com/soltixdb/datahub/internal/export"
	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/records"
	"github.com/soltixdb/datahub/internal/store"
)

const (
	// DefaultExportExpiration is used when the config leaves it unset
	DefaultExportExpiration = 1 * time.Hour

	// DefaultCleanupInterval is the interval for cleaning up expired exports
	DefaultCleanupInterval = 5 * time.Minute

	// cleanupGrace keeps expired tasks around a little longer so a status
	// check can still report "expired"
	cleanupGrace = 5 * time.Minute

	// exportTimeout bounds a single export
	exportTimeout = 10 * time.Minute
)

// ExportCompletedEvent is the payload of export.completed
type ExportCompletedEvent struct {
	TaskID    string `json:"task_id"`
	Format    string `json:"format"`
	Filename  string `json:"filename"`
	TotalRows int64  `json:"total_rows"`
	FileSize  int64  `json:"file_size"`
	LatencyMs int64  `json:"latency_ms"`
}

// ExportFailedEvent is the payload of export.failed
type ExportFailedEvent struct {
	TaskID string `json:"task_id"`
	Format string `json:"format"`
	Error  string `json:"error"`
}

// ExportService writes dataset exports asynchronously
type ExportService struct {
	logger *logging.Logger
	store  *store.Store
	bus    *events.Bus

	// Task management
	tasks     map[string]*models.ExportTask
	taskMutex sync.RWMutex

	exportDir       string
	expiration      time.Duration
	cleanupInterval time.Duration

	// Worker pool
	taskQueue chan *models.ExportTask
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewExportService creates an ExportService and starts its workers. bus may
// be nil.
func NewExportService(logger *logging.Logger, st *store.Store, bus *events.Bus, cfg config.ExportConfig) *ExportService {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		logger.Error("Failed to create export directory", "error", err, "path", cfg.Dir)
	}

	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = DefaultExportExpiration
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	s := &ExportService{
		logger:          logger,
		store:           st,
		bus:             bus,
		tasks:           make(map[string]*models.ExportTask),
		exportDir:       cfg.Dir,
		expiration:      expiration,
		cleanupInterval: interval,
		taskQueue:       make(chan *models.ExportTask, max(cfg.QueueSize, 1)),
		stopChan:        make(chan struct{}),
	}

	s.startWorkers(max(cfg.Workers, 1))

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// startWorkers starts the worker pool for processing export tasks
func (s *ExportService) startWorkers(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.logger.Info("Export workers started", "count", numWorkers)
}

// worker processes export tasks from the queue
func (s *ExportService) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.processTask(task)
		case <-s.stopChan:
			s.logger.Debug("Export worker stopping", "worker_id", id)
			return
		}
	}
}

// Stop stops the workers and the cleanup loop. Queued tasks that have not
// started stay pending.
func (s *ExportService) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.logger.Info("Export service stopped")
}

// CreateExport validates a request and queues it
func (s *ExportService) CreateExport(ctx context.Context, request *models.ExportRequest) (*models.ExportTask, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Catalog().Get(request.DatasetID); err != nil {
		return nil, lookupError(request.DatasetID, err)
	}

	taskID := uuid.New().String()
	task := models.NewExportTask(taskID, *request, s.expiration)

	s.taskMutex.Lock()
	s.tasks[taskID] = task
	s.taskMutex.Unlock()

	select {
	case s.taskQueue <- task:
		logging.FromContext(ctx).Info("Export task queued",
			"task_id", taskID,
			"dataset_id", request.DatasetID,
			"format", request.Format,
		)
	default:
		s.taskMutex.Lock()
		delete(s.tasks, taskID)
		s.taskMutex.Unlock()
		return nil, NewServiceErrorWithDetails(CodeQueueFull, "export queue is full, please try again later",
			map[string]interface{}{"queue_size": cap(s.taskQueue)})
	}

	s.taskMutex.RLock()
	taskCopy := *task
	s.taskMutex.RUnlock()
	return &taskCopy, nil
}

// GetTaskStatus returns a copy of an export task
func (s *ExportService) GetTaskStatus(taskID string) (*models.ExportTask, error) {
	s.taskMutex.Lock()
	defer s.taskMutex.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, NewServiceErrorWithDetails(CodeTaskNotFound, "export task not found",
			map[string]interface{}{"task_id": taskID})
	}

	if task.Status == models.ExportStatusCompleted && task.IsExpired() {
		task.Status = models.ExportStatusExpired
	}

	taskCopy := *task
	return &taskCopy, nil
}

// GetFilePath returns the file path, download name and content type of a
// completed export
func (s *ExportService) GetFilePath(taskID string) (string, string, string, error) {
	task, err := s.GetTaskStatus(taskID)
	if err != nil {
		return "", "", "", err
	}

	if !task.CanDownload() {
		if task.Status == models.ExportStatusExpired || task.IsExpired() {
			return "", "", "", NewServiceError(CodeExportExpired, "export has expired")
		}
		return "", "", "", NewServiceErrorWithDetails(CodeExportNotReady,
			"export is not ready yet, status: "+string(task.Status),
			map[string]interface{}{"status": task.Status})
	}

	return task.FilePath, task.Filename, task.ContentType, nil
}

// ListTasks returns copies of all tasks, newest first
func (s *ExportService) ListTasks() []models.ExportTask {
	s.taskMutex.RLock()
	defer s.taskMutex.RUnlock()

	tasks := make([]models.ExportTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

// processTask writes one export file
func (s *ExportService) processTask(task *models.ExportTask) {
	startTime := time.Now()

	s.taskMutex.Lock()
	task.Status = models.ExportStatusProcessing
	task.StartedAt = &startTime
	request := task.Request
	s.taskMutex.Unlock()

	s.logger.Info("Processing export task",
		"task_id", task.TaskID,
		"dataset_id", request.DatasetID,
		"format", request.Format,
	)

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	filePath := filepath.Join(s.exportDir, task.TaskID+request.FormatParsed.Extension())
	rows, err := s.writeFile(ctx, task, filePath)

	completedAt := time.Now()

	s.taskMutex.Lock()
	if err != nil {
		task.Status = models.ExportStatusFailed
		task.Error = err.Error()
		task.CompletedAt = &completedAt
		_ = os.Remove(filePath)
	} else {
		task.Status = models.ExportStatusCompleted
		task.CompletedAt = &completedAt
		task.Progress = 100
		task.TotalRows = int64(rows)
		task.FilePath = filePath
		if info, statErr := os.Stat(filePath); statErr == nil {
			task.FileSize = info.Size()
		}
	}
	done := *task
	s.taskMutex.Unlock()

	if err != nil {
		s.logger.Error("Export task failed",
			"task_id", done.TaskID,
			"error", err,
			"duration", completedAt.Sub(startTime),
		)
		s.emit(ctx, events.ExportFailed, done.Request.DatasetID, ExportFailedEvent{
			TaskID: done.TaskID,
			Format: done.Request.Format,
			Error:  done.Error,
		})
		return
	}

	s.logger.Info("Export task completed",
		"task_id", done.TaskID,
		"total_rows", done.TotalRows,
		"file_size", done.FileSize,
		"duration", completedAt.Sub(startTime),
	)
	s.emit(ctx, events.ExportCompleted, done.Request.DatasetID, ExportCompletedEvent{
		TaskID:    done.TaskID,
		Format:    done.Request.Format,
		Filename:  done.Filename,
		TotalRows: done.TotalRows,
		FileSize:  done.FileSize,
		LatencyMs: completedAt.Sub(startTime).Milliseconds(),
	})
}

// writeFile selects the rows of a task and renders them to filePath
func (s *ExportService) writeFile(ctx context.Context, task *models.ExportTask, filePath string) (int, error) {
	request := task.Request

	dataset, err := s.store.Catalog().Get(request.DatasetID)
	if err != nil {
		return 0, err
	}
	table, err := s.store.Table(request.DatasetID)
	if err != nil {
		return 0, err
	}
	doc := export.Document{
		Dataset: dataset,
		Table: records.Table{
			DatasetID: table.DatasetID,
			Columns:   table.Columns,
			Rows:      table.Select(request.Filter()),
		},
	}
	s.setProgress(task, 30)

	if request.IncludeAnalysis && request.FormatParsed == export.FormatXLSX {
		result, err := analysis.Run(s.store.Bundle(), analysis.Request{
			DatasetID: request.DatasetID,
			Year:      request.AnalysisYear,
		})
		switch {
		case errors.Is(err, analysis.ErrNoMethodology):
			s.logger.Warn("Export skips analysis sheets", "task_id", task.TaskID, "reason", err.Error())
		case err != nil:
			return 0, fmt.Errorf("failed to analyse dataset: %w", err)
		default:
			doc.Analysis = result
		}
		s.setProgress(task, 60)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	bufferedWriter := bufio.NewWriterSize(file, 64*1024)
	rows, err := export.Write(bufferedWriter, request.FormatParsed, doc)
	if err != nil {
		return 0, err
	}
	if err := bufferedWriter.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush file: %w", err)
	}
	return rows, file.Sync()
}

func (s *ExportService) setProgress(task *models.ExportTask, progress int) {
	s.taskMutex.Lock()
	task.Progress = progress
	s.taskMutex.Unlock()
}

func (s *ExportService) emit(ctx context.Context, t events.Type, datasetID string, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(ctx, t, datasetID, data)
}

// cleanupLoop periodically cleans up expired exports
func (s *ExportService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

// cleanupExpired removes the files and tasks that expired before now
func (s *ExportService) cleanupExpired(now time.Time) int {
	s.taskMutex.Lock()
	defer s.taskMutex.Unlock()

	expiredCount := 0
	for taskID, task := range s.tasks {
		if task.Status == models.ExportStatusPending || task.Status == models.ExportStatusProcessing {
			continue
		}
		if !now.After(task.ExpiresAt.Add(cleanupGrace)) {
			continue
		}
		if task.FilePath != "" {
			if err := os.Remove(task.FilePath); err != nil && !os.IsNotExist(err) {
				s.logger.Error("Failed to remove expired export file",
					"task_id", taskID,
					"error", err,
				)
			}
		}
		delete(s.tasks, taskID)
		expiredCount++
	}

	if expiredCount > 0 {
		s.logger.Info("Cleaned up expired exports", "count", expiredCount)
	}
	return expiredCount
}
