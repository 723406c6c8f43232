package admin

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type CreateTierRequest struct {
	Name      string   `json:"name"`
	Rank      int      `json:"rank"`
	MinPoints int64    `json:"min_points"`
	MaxPoints *int64   `json:"max_points"`
	Benefits  []string `json:"benefits"`
}

func CreateTier(c *fiber.Ctx) error {
	var req CreateTierRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	tier, err := services.CreateTier(req.Name, req.Rank, req.MinPoints, req.MaxPoints, req.Benefits)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Tier created", tier)
}

func ListTiers(c *fiber.Ctx) error {
	tiers, err := services.ListTiers()
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Tiers retrieved", tiers)
}
