package member

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	MemberCode  string `json:"member_code"`
	DisplayName string `json:"display_name"`
	IsCoach     bool   `json:"is_coach"`
}

func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	m, err := services.RegisterMember(req.MemberCode, req.DisplayName, req.IsCoach)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Member registered", fiber.Map{
		"member_code":  m.MemberCode,
		"display_name": m.DisplayName,
		"is_coach":     m.IsCoach,
	})
}
