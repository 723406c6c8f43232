package routes

import (
	"courtside/controllers/admin"
	"courtside/controllers/member"
	"courtside/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	app.Post("/member/register", member.Register)

	memberroutes := app.Group("/member", middlewares.MemberAuth)
	memberroutes.Get("/profile", member.Profile)
	memberroutes.Get("/slots", member.ListOpenSlots)
	memberroutes.Post("/bookings", member.BookSlots)
	memberroutes.Get("/bookings/:id", member.GetBooking)
	memberroutes.Post("/bookings/cancel", member.CancelBooking)
	memberroutes.Post("/wallet/topup", member.TopUpWallet)
	memberroutes.Get("/wallet/balance", member.WalletBalance)
	memberroutes.Get("/wallet/statement", member.WalletStatement)
	memberroutes.Post("/sessions/enroll", member.EnrollInSession)
	memberroutes.Post("/sessions/cancel", member.CancelEnrollment)

	adminroutes := app.Group("/admin", middlewares.AdminAuth())
	adminroutes.Post("/slots", admin.CreateSlots)
	adminroutes.Post("/sessions", admin.CreateSession)
	adminroutes.Post("/sessions/:id/settle", admin.SettleSession)
	adminroutes.Post("/bookings/:id/complete", admin.CompleteBooking)
	adminroutes.Get("/cancellations", admin.ListPendingCancellations)
	adminroutes.Post("/cancellations/:id/process", admin.ProcessCancellation)
	adminroutes.Post("/points/grant", admin.GrantPoints)
	adminroutes.Post("/members/:code/recalculate-tier", admin.RecalculateTier)
	adminroutes.Post("/tiers", admin.CreateTier)
	adminroutes.Get("/tiers", admin.ListTiers)
	adminroutes.Post("/tiers/sweep", admin.RunTierSweep)
	adminroutes.Post("/escrow/refund", admin.RefundEscrow)
	adminroutes.Get("/coaches/:code/revenue", admin.CoachRevenue)
	adminroutes.Get("/reconciliation", admin.Reconciliation)
}
