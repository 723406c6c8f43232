package member

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type EnrollRequest struct {
	SessionID uint `json:"session_id"`
}

func EnrollInSession(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.SessionID == 0 {
		return helpers.JSONError(c, "SESSION_ID_REQUIRED")
	}

	e, err := services.EnrollInSession(req.SessionID, m.MemberCode)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Enrolled in session", fiber.Map{
		"session_id": e.SessionID,
		"paid_cents": e.PaidCents,
		"status":     e.Status,
	})
}

type CancelEnrollmentRequest struct {
	SessionID uint `json:"session_id"`
	Force     bool `json:"force"`
}

func CancelEnrollment(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	var req CancelEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.SessionID == 0 {
		return helpers.JSONError(c, "SESSION_ID_REQUIRED")
	}

	outcome, err := services.CancelEnrollment(req.SessionID, m.MemberCode, req.Force)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Enrollment cancelled", outcome)
}
