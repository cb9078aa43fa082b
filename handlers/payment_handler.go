package handlers

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/payments"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CompleteLessonRequest struct {
	Notes         string `json:"notes"`
	StudentRating *int   `json:"student_rating"`
	TeacherRating *int   `json:"teacher_rating"`
}

func (h *Handler) CompleteLesson(c *fiber.Ctx) error {
	teacher, err := h.currentTeacher(c)
	if err != nil {
		return serviceError(c, err)
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return badParam(c, "lessonId")
	}

	var req CompleteLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	payment, err := h.payments.CompleteLesson(c.UserContext(), services.CompleteLessonInput{
		LessonID:      lessonID,
		TeacherID:     teacher.ID,
		Notes:         req.Notes,
		StudentRating: req.StudentRating,
		TeacherRating: req.TeacherRating,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.paymentRecorded(payment)
	return c.JSON(payment)
}

type ProcessPaymentRequest struct {
	LessonID          *uuid.UUID `json:"lesson_id"`
	RecurringLessonID *uuid.UUID `json:"recurring_lesson_id"`
	PaymentMethodID   uuid.UUID  `json:"payment_method_id"`
	Amount            float64    `json:"amount"`
}

func (h *Handler) ProcessPayment(c *fiber.Ctx) error {
	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req ProcessPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	payment, err := h.payments.ProcessPayment(c.UserContext(), services.ProcessPaymentInput{
		LessonID:          req.LessonID,
		RecurringLessonID: req.RecurringLessonID,
		StudentID:         student.ID,
		PaymentMethodID:   req.PaymentMethodID,
		Amount:            req.Amount,
	})
	if err != nil {
		return serviceError(c, err)
	}

	h.paymentRecorded(payment)
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// paymentRecorded publishes the ledger event and mails the student a
// receipt. Neither can fail the request.
func (h *Handler) paymentRecorded(payment *models.Payment) {
	if err := h.events.PaymentRecorded(context.Background(), payment); err != nil {
		log.Printf("Failed to publish payment %s: %v", payment.TransactionID, err)
	}
	if h.mailer == nil {
		return
	}
	student, err := h.accounts.GetStudentProfile(context.Background(), payment.StudentID)
	if err != nil {
		log.Printf("Could not load student for receipt %s: %v", payment.TransactionID, err)
		return
	}
	msg := notifications.LessonCompleted(student.User.Name, payment.TransactionID, payment.Amount)
	go h.mailer.Send(notifications.Recipient{Name: student.User.Name, Email: student.User.Email}, msg)
}

// GetMyPayments lists payments received by a teacher or made by a student.
func (h *Handler) GetMyPayments(c *fiber.Ctx) error {
	if teacher, err := h.currentTeacher(c); err == nil {
		list, err := h.payments.GetTeacherPayments(c.UserContext(), teacher.ID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(list)
	}

	student, err := h.currentStudent(c)
	if err != nil {
		return serviceError(c, err)
	}
	list, err := h.payments.GetStudentPayments(c.UserContext(), student.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(list)
}

type AddPaymentMethodRequest struct {
	Type      string `json:"type"`
	IsPrimary bool   `json:"is_primary"`

	CardNumber     string `json:"card_number"`
	CVV            string `json:"cvv"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
	CardholderName string `json:"cardholder_name"`

	BankName          string `json:"bank_name"`
	AccountHolderName string `json:"account_holder_name"`
	RoutingNumber     string `json:"routing_number"`
	AccountNumber     string `json:"account_number"`
}

func (h *Handler) AddPaymentMethod(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req AddPaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	method, err := h.payments.AddPaymentMethod(c.UserContext(), services.AddPaymentMethodInput{
		UserID:            userID,
		Type:              req.Type,
		IsPrimary:         req.IsPrimary,
		CardNumber:        req.CardNumber,
		CVV:               req.CVV,
		ExpMonth:          req.ExpMonth,
		ExpYear:           req.ExpYear,
		CardholderName:    req.CardholderName,
		BankName:          req.BankName,
		AccountHolderName: req.AccountHolderName,
		RoutingNumber:     req.RoutingNumber,
		AccountNumber:     req.AccountNumber,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(method)
}

func (h *Handler) ListPaymentMethods(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	methods, err := h.payments.ListPaymentMethods(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(methods)
}

type ValidateCardRequest struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
}

// ValidateCard checks card details without storing anything. The result
// is always 200 with {valid, error}.
func (h *Handler) ValidateCard(c *fiber.Ctx) error {
	var req ValidateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	result := payments.ValidateCard(payments.CardDetails{
		Number:   req.CardNumber,
		CVV:      req.CVV,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
	}, time.Now())
	return c.JSON(result)
}

type ValidateBankAccountRequest struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
}

func (h *Handler) ValidateBankAccount(c *fiber.Ctx) error {
	var req ValidateBankAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	return c.JSON(payments.ValidateBankAccount(payments.BankDetails{
		RoutingNumber: req.RoutingNumber,
		AccountNumber: req.AccountNumber,
	}))
}
