package handlers

import (
	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the teacher or student profile of the caller, or
// just the user for admins.
func (h *Handler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if teacher, err := h.accounts.GetTeacherByUserID(c.UserContext(), userID); err == nil {
		return c.JSON(fiber.Map{"role": models.RoleTeacher, "teacher": teacher})
	}
	if student, err := h.accounts.GetStudentByUserID(c.UserContext(), userID); err == nil {
		return c.JSON(fiber.Map{"role": models.RoleStudent, "student": student})
	}
	return c.JSON(fiber.Map{"role": models.RoleAdmin, "user_id": userID})
}

type UpdateTeacherProfileRequest struct {
	Bio               *string  `json:"bio"`
	Instruments       []string `json:"instruments"`
	HourlyRate        *float64 `json:"hourly_rate"`
	VirtualAvailable  *bool    `json:"virtual_available"`
	InPersonAvailable *bool    `json:"in_person_available"`
}

func (h *Handler) UpdateTeacherProfile(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req UpdateTeacherProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	updated, err := h.accounts.UpdateTeacherProfile(c.UserContext(), teacher.ID, services.UpdateTeacherInput{
		Bio:               req.Bio,
		Instruments:       req.Instruments,
		HourlyRate:        req.HourlyRate,
		VirtualAvailable:  req.VirtualAvailable,
		InPersonAvailable: req.InPersonAvailable,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated)
}

type UpdateStudentProfileRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Location          *string `json:"location"`
	PrimaryInstrument *string `json:"primary_instrument"`
	SkillLevel        *string `json:"skill_level"`
	LearningGoals     *string `json:"learning_goals"`
}

func (h *Handler) UpdateStudentProfile(c *fiber.Ctx) error {
	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req UpdateStudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	updated, err := h.accounts.UpdateStudentProfile(c.UserContext(), student.ID, services.UpdateStudentInput(req))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) GetStudentProfile(c *fiber.Ctx) error {
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return badParam(c, "studentId")
	}
	student, err := h.accounts.GetStudentProfile(c.UserContext(), studentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(student)
}

func (h *Handler) currentTeacher(c *fiber.Ctx) (*models.Teacher, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, services.ErrForbidden
	}
	return h.accounts.GetTeacherByUserID(c.UserContext(), userID)
}

func (h *Handler) currentStudent(c *fiber.Ctx) (*models.Student, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, services.ErrForbidden
	}
	return h.accounts.GetStudentByUserID(c.UserContext(), userID)
}

