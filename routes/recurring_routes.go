package routes

import (
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/middleware"
	"github.com/gofiber/fiber/v2"
)

func RecurringRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api/v1")

	recurring := api.Group("/recurring", middleware.Protected(h.JWTSecret()))
	recurring.Get("/me", h.GetMyRecurringLessons)
	recurring.Post("/:recurringId/book", middleware.StudentRequired(), h.BookRecurringSlot)
	recurring.Post("/:recurringId/pause", h.PauseRecurringLesson)
	recurring.Post("/:recurringId/resume", h.ResumeRecurringLesson)
	recurring.Post("/:recurringId/cancel", h.CancelRecurringLesson)

	teacher := api.Group("/teacher/recurring", middleware.Protected(h.JWTSecret()), middleware.TeacherRequired())
	teacher.Post("", h.AddRecurringSlot)
	teacher.Delete("/:recurringId", h.DeleteRecurringSlot)
}
