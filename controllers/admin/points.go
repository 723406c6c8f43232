package admin

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type GrantPointsRequest struct {
	MemberCode   string `json:"member_code"`
	TierPoints   int64  `json:"tier_points"`
	RewardPoints int64  `json:"reward_points"`
}

func GrantPoints(c *fiber.Ctx) error {
	var req GrantPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.MemberCode == "" {
		return helpers.JSONError(c, "MEMBER_CODE_REQUIRED")
	}

	result, err := services.AddPoints(req.MemberCode, req.TierPoints, req.RewardPoints)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Points granted", result)
}

func RecalculateTier(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return helpers.JSONError(c, "MEMBER_CODE_REQUIRED")
	}

	result, err := services.RecalculateMemberTier(code)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Tier recalculated", result)
}
