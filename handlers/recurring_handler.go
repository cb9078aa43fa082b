package handlers

import (
	"context"
	"log"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AddRecurringSlotRequest struct {
	Instrument string `json:"instrument"`
	DayOfWeek  string `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	Duration   int    `json:"duration"`
	LessonType string `json:"lesson_type"`
	Notes      string `json:"notes"`
}

func (h *Handler) AddRecurringSlot(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req AddRecurringSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	slot, err := h.recurring.AddRecurringSlot(c.UserContext(), services.AddRecurringSlotInput{
		TeacherID:  teacher.ID,
		Instrument: req.Instrument,
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		Duration:   req.Duration,
		LessonType: req.LessonType,
		Notes:      req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

func (h *Handler) DeleteRecurringSlot(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := paramID(c, "recurringId")
	if err != nil {
		return badParam(c, "recurringId")
	}

	if err := h.recurring.DeleteRecurringSlot(c.UserContext(), id, teacher.ID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListOpenRecurringSlots(c *fiber.Ctx) error {
	slots, err := h.recurring.ListOpenRecurringSlots(c.UserContext(), c.Query("instrument"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(slots)
}

type BookRecurringSlotRequest struct {
	StartDate string `json:"start_date"`
	Frequency string `json:"frequency"`
	Notes     string `json:"notes"`
}

func (h *Handler) BookRecurringSlot(c *fiber.Ctx) error {
	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}
	id, err := paramID(c, "recurringId")
	if err != nil {
		return badParam(c, "recurringId")
	}

	var req BookRecurringSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	lesson, err := h.recurring.BookRecurringSlot(c.UserContext(), services.BookRecurringSlotInput{
		RecurringLessonID: id,
		StudentID:         student.ID,
		StartDate:         req.StartDate,
		Frequency:         req.Frequency,
		Notes:             req.Notes,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(lesson)
}

// ConfirmRecurringLesson bills one cycle on demand. The billing job does
// the same on its schedule.
func (h *Handler) ConfirmRecurringLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "recurringId")
	if err != nil {
		return badParam(c, "recurringId")
	}

	confirmation, err := h.recurring.ConfirmRecurringLesson(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.events.PaymentRecorded(context.Background(), confirmation.Payment); err != nil {
		log.Printf("Failed to publish payment %s: %v", confirmation.TransactionID, err)
	}
	return c.JSON(confirmation)
}

func (h *Handler) PauseRecurringLesson(c *fiber.Ctx) error {
	return h.recurringTransition(c, h.recurring.PauseRecurringLesson)
}

func (h *Handler) ResumeRecurringLesson(c *fiber.Ctx) error {
	return h.recurringTransition(c, h.recurring.ResumeRecurringLesson)
}

func (h *Handler) CancelRecurringLesson(c *fiber.Ctx) error {
	return h.recurringTransition(c, h.recurring.CancelRecurringLesson)
}

type transitionFunc func(ctx context.Context, id, actorUserID uuid.UUID) (*models.RecurringLesson, error)

func (h *Handler) recurringTransition(c *fiber.Ctx, transition transitionFunc) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramID(c, "recurringId")
	if err != nil {
		return badParam(c, "recurringId")
	}

	lesson, err := transition(c.UserContext(), id, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(lesson)
}

func (h *Handler) GetMyRecurringLessons(c *fiber.Ctx) error {
	if teacher, err := h.currentTeacher(c); err == nil {
		list, err := h.recurring.GetTeacherRecurringLessons(c.UserContext(), teacher.ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(list)
	}

	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}
	list, err := h.recurring.GetStudentRecurringLessons(c.UserContext(), student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(list)
}
