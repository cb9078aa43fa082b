package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", middleware.Protected(h.JWTSecret()))
	payments.Get("/me", h.GetMyPayments)
	payments.Post("", middleware.StudentRequired(), h.ProcessPayment)

	methods := api.Group("/payment-methods", middleware.Protected(h.JWTSecret()))
	methods.Get("", h.ListPaymentMethods)
	methods.Post("", h.AddPaymentMethod)
}
