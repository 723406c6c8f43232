package admin

import (
	"time"

	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

func SettleSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, "INVALID_SESSION_ID")
	}

	result, err := services.SettleSession(uint(id))
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Session settled", result)
}

func CompleteBooking(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, "INVALID_BOOKING_ID")
	}

	if err := services.CompleteBooking(uint(id)); err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Booking completed", fiber.Map{"booking_id": id})
}

type CreateSessionRequest struct {
	CoachCode  string    `json:"coach_code"`
	CourtCode  string    `json:"court_code"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Capacity   int       `json:"capacity"`
	PriceCents int64     `json:"price_cents"`
}

func CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	s, err := services.CreateSession(req.CoachCode, req.CourtCode, req.StartTime, req.EndTime, req.Capacity, req.PriceCents)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Session created", s)
}
