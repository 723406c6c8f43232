package middlewares

import (
	"courtside/database"
	"courtside/helpers"
	"courtside/models"

	"github.com/gofiber/fiber/v2"
)

// MemberAuth resolves the acting member from the X-Member-Code header.
// Identity verification happens upstream; the engine only needs the
// resolved member.
func MemberAuth(c *fiber.Ctx) error {
	code := c.Get("X-Member-Code")
	if code == "" {
		return helpers.JSONError(c, "MEMBER_CODE_REQUIRED")
	}

	var member models.Member
	if err := database.DB.Where("member_code = ? AND is_active = true", code).First(&member).Error; err != nil {
		return helpers.JSONError(c, "MEMBER_NOT_FOUND_OR_INACTIVE")
	}

	c.Locals("member", member)
	return c.Next()
}
