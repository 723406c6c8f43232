package member

import (
	"time"

	"courtside/helpers"
	"courtside/models"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

func actingMember(c *fiber.Ctx) (models.Member, bool) {
	m, ok := c.Locals("member").(models.Member)
	return m, ok
}

type BookSlotsRequest struct {
	SlotIDs       []uint `json:"slot_ids"`
	Purpose       string `json:"purpose"`
	PlayerCount   int    `json:"player_count"`
	PaymentMethod string `json:"payment_method"`
}

func BookSlots(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	var req BookSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	booking, err := services.BookSlots(m.MemberCode, req.SlotIDs, req.Purpose, req.PlayerCount, req.PaymentMethod)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Booking confirmed", fiber.Map{
		"booking_id":    booking.ID,
		"status":        booking.Status,
		"total_amount":  booking.TotalAmount,
		"points_earned": booking.PointsEarned,
	})
}

type CancelBookingRequest struct {
	BookingID uint   `json:"booking_id"`
	Reason    string `json:"reason"`
	Force     bool   `json:"force"`
}

func CancelBooking(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	var req CancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.BookingID == 0 {
		return helpers.JSONError(c, "BOOKING_ID_REQUIRED")
	}

	outcome, err := services.CancelBooking(req.BookingID, m.MemberCode, req.Reason, req.Force)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Cancellation processed", outcome)
}

func GetBooking(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, "INVALID_BOOKING_ID")
	}

	booking, err := services.GetBooking(uint(id), m.MemberCode)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Booking retrieved", booking)
}

func ListOpenSlots(c *fiber.Ctx) error {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return helpers.JSONError(c, "INVALID_FROM_TIME")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return helpers.JSONError(c, "INVALID_TO_TIME")
		}
		to = t
	}

	slots, err := services.ListOpenSlots(c.Query("court"), from, to)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Open slots retrieved", slots)
}
