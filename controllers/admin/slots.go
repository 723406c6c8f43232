package admin

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type CreateSlotsRequest struct {
	Slots []services.SlotInput `json:"slots"`
}

func CreateSlots(c *fiber.Ctx) error {
	var req CreateSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	slots, err := services.CreateSlots(req.Slots)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Slots created", slots)
}
