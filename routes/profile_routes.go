package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected(h.JWTSecret()))
	profile.Get("/me", h.GetMyProfile)
	profile.Put("/teacher", middleware.TeacherRequired(), h.UpdateTeacherProfile)
	profile.Put("/student", middleware.StudentRequired(), h.UpdateStudentProfile)

	api.Get("/teacher/students/:studentId", middleware.Protected(h.JWTSecret()), middleware.TeacherRequired(), h.GetStudentProfile)
}
