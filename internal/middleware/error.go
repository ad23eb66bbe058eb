package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/datahub/internal/logging"
	"github.com/soltixdb/datahub/internal/models"
	"github.com/soltixdb/datahub/internal/services"
)

// codeForStatus names the error code of a plain fiber error
func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return services.CodeInvalidRequest
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	default:
		return "ERROR"
	}
}

// ErrorHandler renders service errors, fiber errors and anything else as an
// ErrorResponse
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Internal Server Error",
			Path:    c.Path(),
		}

		var fiberErr *fiber.Error
		if svcErr, ok := services.AsServiceError(err); ok {
			status = svcErr.HTTPStatus()
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		} else if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			detail.Code = codeForStatus(fiberErr.Code)
			detail.Message = fiberErr.Message
		}

		log := logger.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			log.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			log.Warn("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"code", detail.Code,
				"error", err,
			)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
