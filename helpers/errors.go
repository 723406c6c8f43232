package helpers

import (
	"errors"

	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

// ServiceError maps core engine errors onto HTTP statuses.
func ServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrSlotUnavailable), errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"data":    nil,
	})
}
