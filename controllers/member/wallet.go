package member

import (
	"courtside/helpers"
	"courtside/services"

	"github.com/gofiber/fiber/v2"
)

type TopUpRequest struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

func TopUpWallet(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	var req TopUpRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.Amount <= 0 {
		return helpers.JSONError(c, "VALID_AMOUNT_REQUIRED")
	}

	w, trx, err := services.TopUpWallet(m.MemberCode, req.Amount, req.Source)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Top-up successful", fiber.Map{
		"member_code":    m.MemberCode,
		"balance":        w.Balance,
		"ref_id":         trx.RefID,
		"balance_before": trx.BalanceBefore,
		"balance_after":  trx.BalanceAfter,
		"created_at":     trx.CreatedAt.Format("2006-01-02 15:04:05"),
	})
}

func WalletBalance(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	w, err := services.GetWallet(m.MemberCode)
	if err != nil {
		return helpers.ServiceError(c, err)
	}

	return helpers.JSONSuccess(c, "Balance retrieved", fiber.Map{
		"member_code":     m.MemberCode,
		"balance":         w.Balance,
		"balance_display": helpers.FormatCents(w.Balance),
		"frozen_balance":  w.FrozenBalance,
		"total_deposited": w.TotalDeposited,
		"total_spent":     w.TotalSpent,
		"status":          w.Status,
	})
}

func WalletStatement(c *fiber.Ctx) error {
	m, ok := actingMember(c)
	if !ok {
		return helpers.JSONError(c, "INVALID_MEMBER_SESSION")
	}

	rows, err := services.WalletStatement(m.MemberCode, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return helpers.ServiceError(c, err)
	}
	return helpers.JSONSuccess(c, "Statement retrieved", rows)
}
