package admin

import (
	"courtside/helpers"
	"courtside/models"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type RefundEscrowRequest struct {
	MemberCode  string `json:"member_code"`
	AmountCents int64  `json:"amount_cents"`
	SubjectType string `json:"subject_type"`
	SubjectID   uint   `json:"subject_id"`
}

// RefundEscrow is the manual override: it pushes held funds back to a
// member outside the cancellation policy, for disputes and goodwill.
func RefundEscrow(c *fiber.Ctx) error {
	var req RefundEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	subject := models.EscrowSubject(req.SubjectType)
	if subject != models.SubjectBooking && subject != models.SubjectSession {
		return helpers.JSONError(c, "INVALID_SUBJECT_TYPE")
	}
	if req.AmountCents <= 0 {
		return helpers.JSONError(c, "VALID_AMOUNT_REQUIRED")
	}

	if err := services.RefundFromEscrow(req.MemberCode, req.AmountCents, subject, req.SubjectID); err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Escrow refunded", fiber.Map{
		"member_code":  req.MemberCode,
		"amount_cents": req.AmountCents,
	})
}

func CoachRevenue(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helpers.JSONError(c, "COACH_CODE_REQUIRED")
	}

	total, err := services.CoachRevenue(code)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Coach revenue retrieved", fiber.Map{
		"coach_code":    code,
		"revenue_cents": total,
		"revenue":       helpers.FormatCents(total),
	})
}
