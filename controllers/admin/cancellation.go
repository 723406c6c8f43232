package admin

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

func ListPendingCancellations(c *fiber.Ctx) error {
	rows, err := services.ListPendingCancellations(c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Pending cancellation requests", rows)
}

type ProcessCancellationRequest struct {
	Approve     bool   `json:"approve"`
	AdminRemark string `json:"admin_remark"`
}

func ProcessCancellation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONError(c, "INVALID_REQUEST_ID")
	}

	var req ProcessCancellationRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	outcome, err := services.ProcessCancellationRequest(uint(id), req.Approve, req.AdminRemark)
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Cancellation request processed", outcome)
}
