package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	lessons := api.Group("/lessons", middleware.Protected(h.JWTSecret()))
	lessons.Get("/me", h.GetMyLessons)
	lessons.Post("", middleware.StudentRequired(), h.BookLesson)
	lessons.Post("/:lessonId/cancel", h.CancelLesson)

	teacher := api.Group("/teacher", middleware.Protected(h.JWTSecret()), middleware.TeacherRequired())
	teacher.Get("/availability", h.GetMyAvailability)
	teacher.Post("/availability", h.AddAvailability)
	teacher.Post("/lessons/:lessonId/complete", h.CompleteLesson)
}
