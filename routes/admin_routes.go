package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(h.JWTSecret()), middleware.AdminRequired())
	admin.Get("/dashboard", h.GetAdminDashboard)
	admin.Get("/revenue", h.GetPlatformRevenue)
	admin.Get("/reports/revenue", h.GetQuarterlyRevenue)
	admin.Get("/reports/referrals", h.GetReferralReport)
	admin.Get("/reports/repeat-lessons", h.GetRepeatLessonsReport)
	admin.Get("/reports/instruments", h.GetInstrumentReport)
	admin.Get("/reports/students", h.GetStudentRevenueReport)
	admin.Post("/recurring/:recurringId/confirm", h.ConfirmRecurringLesson)
}
