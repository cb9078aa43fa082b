package handlers

import (
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type registerUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
}

func (r registerUserRequest) input() services.RegisterUserInput {
	return services.RegisterUserInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Phone:    r.Phone,
		Location: r.Location,
	}
}

type RegisterTeacherRequest struct {
	registerUserRequest
	Bio               *string  `json:"bio"`
	Instruments       []string `json:"instruments"`
	HourlyRate        float64  `json:"hourly_rate"`
	VirtualAvailable  bool     `json:"virtual_available"`
	InPersonAvailable bool     `json:"in_person_available"`
}

type RegisterStudentRequest struct {
	registerUserRequest
	PrimaryInstrument string  `json:"primary_instrument"`
	SkillLevel        string  `json:"skill_level"`
	LearningGoals     *string `json:"learning_goals"`
	ReferralSource    string  `json:"referral_source"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func (h *Handler) RegisterTeacher(c *fiber.Ctx) error {
	var req RegisterTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	teacher, err := h.accounts.RegisterTeacher(c.UserContext(), services.RegisterTeacherInput{
		RegisterUserInput: req.input(),
		Bio:               req.Bio,
		Instruments:       req.Instruments,
		HourlyRate:        req.HourlyRate,
		VirtualAvailable:  req.VirtualAvailable,
		InPersonAvailable: req.InPersonAvailable,
	})
	if err != nil {
		return serviceError(c, err)
	}

	go h.mailer.Send(notifications.Recipient{Name: teacher.User.Name, Email: teacher.User.Email},
		notifications.Welcome(teacher.User.Name, "Your teacher profile is ready. Add availability to start receiving bookings."))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": userResponse(teacher.User), "teacher": teacher})
}

func (h *Handler) RegisterStudent(c *fiber.Ctx) error {
	var req RegisterStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	student, err := h.accounts.RegisterStudent(c.UserContext(), services.RegisterStudentInput{
		RegisterUserInput: req.input(),
		PrimaryInstrument: req.PrimaryInstrument,
		SkillLevel:        req.SkillLevel,
		LearningGoals:     req.LearningGoals,
		ReferralSource:    req.ReferralSource,
	})
	if err != nil {
		return serviceError(c, err)
	}

	go h.mailer.Send(notifications.Recipient{Name: student.User.Name, Email: student.User.Email},
		notifications.Welcome(student.User.Name, "Thank you for registering."))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": userResponse(student.User), "student": student})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t, "user": userResponse(*user)})
}
