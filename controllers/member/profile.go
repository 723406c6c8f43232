package member

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

func Profile(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	full, err := services.GetMember(m.MemberCode)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	tier := ""
	if full.Tier != nil {
		tier = full.Tier.Name
	}
	return helpers.JSONSuccess(c, "Profile retrieved", fiber.Map{
		"member_code":          full.MemberCode,
		"display_name":         full.DisplayName,
		"is_coach":             full.IsCoach,
		"tier":                 tier,
		"tier_point_balance":   full.TierPointBalance,
		"reward_point_balance": full.RewardPointBalance,
	})
}
