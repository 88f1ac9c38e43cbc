package response

import (
	std "errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	apperr "tutorlink/internal/errors"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": status,
		"error":  message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// HandleError maps domain errors onto HTTP responses. Unexpected errors
// become an opaque 500; the detail stays server-side.
func HandleError(c *fiber.Ctx, err error) error {
	var domainErr *apperr.DomainError
	if std.As(err, &domainErr) {
		return Error(c, domainErr.Status, domainErr.Message)
	}
	if std.Is(err, gorm.ErrRecordNotFound) {
		return Error(c, fiber.StatusNotFound, apperr.ErrNotFound.Message)
	}
	return Error(c, fiber.StatusInternalServerError, apperr.ErrInternal.Message)
}
