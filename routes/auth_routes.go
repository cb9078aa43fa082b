package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register/teacher", h.RegisterTeacher)
	auth.Post("/register/student", h.RegisterStudent)
	auth.Post("/login", h.Login)
}
