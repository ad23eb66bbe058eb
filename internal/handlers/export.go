package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/models"
)

// CreateExport handles POST /v1/exports
// Creates an async export task and returns its id
func (h *Handler) CreateExport(c *fiber.Ctx) error {
	var request models.ExportRequest
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	task, err := h.exportService.CreateExport(c.UserContext(), &request)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(&models.ExportCreateResponse{
		TaskID:    task.TaskID,
		Status:    string(task.Status),
		Message:   "Export task created. Use the status endpoint to check progress.",
		StatusURL: models.ExportStatusURL(baseURL(c), task.TaskID),
		ExpiresAt: task.ExpiresAt,
	})
}

// GetExportStatus handles GET /v1/exports/:id
func (h *Handler) GetExportStatus(c *fiber.Ctx) error {
	task, err := h.exportService.GetTaskStatus(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(task.ToStatusResponse(baseURL(c)))
}

// DownloadExport handles GET /v1/exports/:id/file
func (h *Handler) DownloadExport(c *fiber.Ctx) error {
	filePath, filename, contentType, err := h.exportService.GetFilePath(c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.SendFile(filePath, false)
}
