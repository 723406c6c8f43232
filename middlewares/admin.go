package middlewares

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := os.Getenv("ADMIN_API_KEY")
		given := c.Get("X-Admin-Key")

		if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "INVALID_ADMIN_KEY",
				"data":    nil,
			})
		}
		return c.Next()
	}
}
