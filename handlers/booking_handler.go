package handlers

import (
	"context"
	"log"

	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) GetAvailableLessons(c *fiber.Ctx) error {
	lessons, err := h.bookings.GetAvailableLessons(c.UserContext(), c.Query("instrument"), c.Query("lesson_type"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(lessons)
}

type BookLessonRequest struct {
	TeacherID      uuid.UUID `json:"teacher_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Duration       int       `json:"duration"`
	LessonType     string    `json:"lesson_type"`
	Instrument     string    `json:"instrument"`
	Notes          string    `json:"notes"`
	SheetMusicURLs []string  `json:"sheet_music_urls"`
}

func (h *Handler) BookLesson(c *fiber.Ctx) error {
	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req BookLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	lesson, err := h.bookings.BookLesson(c.UserContext(), services.BookLessonInput{
		TeacherID:      req.TeacherID,
		StudentID:      student.ID,
		Date:           req.Date,
		Time:           req.Time,
		Duration:       req.Duration,
		LessonType:     req.LessonType,
		Instrument:     req.Instrument,
		Notes:          req.Notes,
		SheetMusicURLs: req.SheetMusicURLs,
	})
	if err != nil {
		return serviceError(c, err)
	}

	if err := h.events.LessonBooked(context.Background(), lesson); err != nil {
		log.Printf("Failed to publish booking %s: %v", lesson.ID, err)
	}
	msg := notifications.LessonBooked(student.User.Name, lesson.Instrument, lesson.Date, lesson.Time, lesson.LessonType)
	go h.mailer.Send(notifications.Recipient{Name: student.User.Name, Email: student.User.Email}, msg)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lesson_id": lesson.ID, "lesson": lesson})
}

func (h *Handler) CancelLesson(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return badParam(c, "lessonId")
	}

	lesson, err := h.bookings.CancelLesson(c.UserContext(), lessonID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(lesson)
}

// GetMyLessons lists the caller's lessons as teacher or student.
func (h *Handler) GetMyLessons(c *fiber.Ctx) error {
	status := c.Query("status")
	if teacher, err := h.currentTeacher(c); err == nil {
		lessons, err := h.bookings.GetTeacherLessons(c.UserContext(), teacher.ID, status)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(lessons)
	}

	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}
	lessons, err := h.bookings.GetStudentLessons(c.UserContext(), student.ID, status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(lessons)
}

type AddAvailabilityRequest struct {
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	LessonType  string   `json:"lesson_type"`
	Instruments []string `json:"instruments"`
}

func (h *Handler) AddAvailability(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req AddAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	slot, err := h.bookings.AddAvailability(c.UserContext(), services.AddAvailabilityInput{
		TeacherID:   teacher.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		LessonType:  req.LessonType,
		Instruments: req.Instruments,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

func (h *Handler) GetTeacherAvailability(c *fiber.Ctx) error {
	teacherID, err := paramID(c, "teacherId")
	if err != nil {
		return badParam(c, "teacherId")
	}
	slots, err := h.bookings.GetTeacherAvailability(c.UserContext(), teacherID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(slots)
}

func (h *Handler) GetMyAvailability(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}
	slots, err := h.bookings.GetTeacherAvailability(c.UserContext(), teacher.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(slots)
}

