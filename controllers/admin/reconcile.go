package admin

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

func Reconciliation(c *fiber.Ctx) error {
	report, err := services.Reconcile()
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Reconciliation report", report)
}

func RunTierSweep(c *fiber.Ctx) error {
	upgraded, err := services.RunTierUpgradeSweep()
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Tier sweep complete", fiber.Map{"upgraded": upgraded})
}
