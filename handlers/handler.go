package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/queue"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

const tokenTTL = 72 * time.Hour

type Handler struct {
	accounts  *services.AccountService
	bookings  *services.BookingService
	payments  *services.PaymentService
	recurring *services.RecurringService
	reports   *services.ReportService

	mailer    *notifications.BrevoService
	events    *queue.Publisher
	jwtSecret string
}

// New wires every service to db. mailer and events may be nil.
func New(db *gorm.DB, jwtSecret string, mailer *notifications.BrevoService, events *queue.Publisher) *Handler {
	return &Handler{
		accounts:  services.NewAccountService(db),
		bookings:  services.NewBookingService(db),
		payments:  services.NewPaymentService(db),
		recurring: services.NewRecurringService(db),
		reports:   services.NewReportService(db),
		mailer:    mailer,
		events:    events,
		jwtSecret: jwtSecret,
	}
}

func (h *Handler) JWTSecret() string {
	return h.jwtSecret
}

func (h *Handler) Bookings() *services.BookingService {
	return h.bookings
}

func (h *Handler) Recurring() *services.RecurringService {
	return h.recurring
}

// serviceError maps a failure category to its HTTP status. Unknown errors
// are logged and hidden behind a 500.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrPreconditionFailed):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func badParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + name})
}
