package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	api.Get("/lessons/available", h.GetAvailableLessons)
	api.Get("/teachers/:teacherId/availability", h.GetTeacherAvailability)
	api.Get("/recurring/open", h.ListOpenRecurringSlots)
	api.Post("/payments/validate-card", h.ValidateCard)
	api.Post("/payments/validate-bank-account", h.ValidateBankAccount)
}
