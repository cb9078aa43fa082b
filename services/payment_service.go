package services

import (
	"context"
	"errors"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/payments"
	"github.com/anjiri1684/freelance_music/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	db  *gorm.DB
	now clock
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, now: utcNow}
}

type CompleteLessonInput struct {
	LessonID      uuid.UUID `validate:"required"`
	TeacherID     uuid.UUID `validate:"required"`
	Notes         string
	StudentRating *int `validate:"omitempty,min=1,max=5"`
	TeacherRating *int `validate:"omitempty,min=1,max=5"`
}

// CompleteLesson marks an upcoming lesson completed and records its payment
// in the same transaction. The status change is conditional on the lesson
// still being upcoming, so two concurrent completions produce one payment.
func (s *PaymentService) CompleteLesson(ctx context.Context, in CompleteLessonInput) (*models.Payment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.Preload("Student").First(&lesson, "id = ?", in.LessonID).Error; err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		if lesson.TeacherID != in.TeacherID {
			return ErrForbidden
		}
		switch lesson.Status {
		case models.LessonStatusCompleted:
			return ErrAlreadyCompleted
		case models.LessonStatusUpcoming:
		default:
			return ErrLessonNotUpcoming
		}

		method, err := primaryVerifiedMethod(tx, lesson.Student.UserID, models.PaymentMethodCreditCard)
		if err != nil {
			return notFound(err, ErrNoPaymentMethod)
		}

		now := s.now()
		result := tx.Model(&models.Lesson{}).
			Where("id = ? AND status = ?", lesson.ID, models.LessonStatusUpcoming).
			Updates(map[string]any{
				"status":           models.LessonStatusCompleted,
				"completion_notes": optionalString(in.Notes),
				"student_rating":   in.StudentRating,
				"teacher_rating":   in.TeacherRating,
				"completed_at":     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		txnID, err := utils.GenerateUniqueTransactionID(tx, now)
		if err != nil {
			return err
		}
		payment = models.Payment{
			LessonID:        &lesson.ID,
			StudentID:       lesson.StudentID,
			TeacherID:       lesson.TeacherID,
			PaymentMethodID: &method.ID,
			Amount:          lesson.TotalCost,
			PlatformFee:     lesson.PlatformFee,
			TeacherEarnings: lesson.TeacherEarnings,
			TransactionID:   txnID,
			Status:          models.PaymentStatusCompleted,
			PaymentDate:     now,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

type ProcessPaymentInput struct {
	LessonID          *uuid.UUID
	RecurringLessonID *uuid.UUID
	StudentID         uuid.UUID `validate:"required"`
	PaymentMethodID   uuid.UUID `validate:"required"`
	Amount            float64   `validate:"gt=0"`
}

// ProcessPayment records a charge against either a lesson or a recurring
// lesson, never both. A lesson can only be charged once.
func (s *PaymentService) ProcessPayment(ctx context.Context, in ProcessPaymentInput) (*models.Payment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if (in.LessonID == nil) == (in.RecurringLessonID == nil) {
		return nil, validationMessage("exactly one of lesson_id and recurring_lesson_id is required")
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, "id = ?", in.StudentID).Error; err != nil {
			return notFound(err, ErrStudentNotFound)
		}

		var teacherID uuid.UUID
		if in.LessonID != nil {
			var lesson models.Lesson
			if err := tx.First(&lesson, "id = ? AND student_id = ?", *in.LessonID, in.StudentID).Error; err != nil {
				return notFound(err, ErrLessonNotFound)
			}
			var paid int64
			if err := tx.Model(&models.Payment{}).Where("lesson_id = ?", lesson.ID).Count(&paid).Error; err != nil {
				return err
			}
			if paid > 0 {
				return ErrAlreadyPaid
			}
			teacherID = lesson.TeacherID
		} else {
			var recurring models.RecurringLesson
			if err := tx.First(&recurring, "id = ? AND student_id = ?", *in.RecurringLessonID, in.StudentID).Error; err != nil {
				return notFound(err, ErrRecurringLessonNotFound)
			}
			teacherID = recurring.TeacherID
		}

		var method models.PaymentMethod
		if err := tx.First(&method, "id = ? AND user_id = ?", in.PaymentMethodID, student.UserID).Error; err != nil {
			return notFound(err, ErrPaymentMethodNotFound)
		}
		if !method.IsVerified {
			return ErrNoVerifiedPaymentMethod
		}

		now := s.now()
		txnID, err := utils.GenerateUniqueTransactionID(tx, now)
		if err != nil {
			return err
		}
		split := payments.SplitAmount(in.Amount)
		payment = models.Payment{
			LessonID:          in.LessonID,
			RecurringLessonID: in.RecurringLessonID,
			StudentID:         in.StudentID,
			TeacherID:         teacherID,
			PaymentMethodID:   &method.ID,
			Amount:            split.TotalCost,
			PlatformFee:       split.PlatformFee,
			TeacherEarnings:   split.TeacherEarnings,
			TransactionID:     txnID,
			Status:            models.PaymentStatusCompleted,
			PaymentDate:       now,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

type PlatformRevenue struct {
	TotalRevenue    float64 `json:"total_revenue"`
	PlatformFees    float64 `json:"platform_fees"`
	TeacherEarnings float64 `json:"teacher_earnings"`
	PaymentCount    int64   `json:"payment_count"`
}

// GetPlatformRevenue totals completed payments. Pending and failed entries
// never count as revenue.
func (s *PaymentService) GetPlatformRevenue(ctx context.Context) (*PlatformRevenue, error) {
	var revenue PlatformRevenue
	if err := platformRevenue(s.db.WithContext(ctx), &revenue); err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (s *PaymentService) GetTeacherPayments(ctx context.Context, teacherID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("payment_date desc").
		Find(&list).Error
	return list, err
}

func (s *PaymentService) GetStudentPayments(ctx context.Context, studentID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("payment_date desc").
		Find(&list).Error
	return list, err
}

type AddPaymentMethodInput struct {
	UserID    uuid.UUID `validate:"required"`
	Type      string    `validate:"required,oneof=credit_card bank_account"`
	IsPrimary bool

	CardNumber     string
	CVV            string
	ExpMonth       int
	ExpYear        int
	CardholderName string

	BankName          string
	AccountHolderName string
	RoutingNumber     string
	AccountNumber     string
}

// AddPaymentMethod validates the raw details, then stores only the masked
// fields. A new primary method demotes the user's other primary of the
// same type.
func (s *PaymentService) AddPaymentMethod(ctx context.Context, in AddPaymentMethodInput) (*models.PaymentMethod, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	method := models.PaymentMethod{
		UserID:     in.UserID,
		Type:       in.Type,
		IsPrimary:  in.IsPrimary,
		IsVerified: true,
	}
	switch in.Type {
	case models.PaymentMethodCreditCard:
		card := payments.CardDetails{Number: in.CardNumber, CVV: in.CVV, ExpMonth: in.ExpMonth, ExpYear: in.ExpYear}
		if r := payments.ValidateCard(card, s.now()); !r.Valid {
			return nil, validationMessage(r.Error)
		}
		brand := payments.CardBrand(in.CardNumber)
		lastFour := payments.LastFour(in.CardNumber)
		month, year := in.ExpMonth, in.ExpYear
		if year < 100 {
			year += 2000
		}
		method.CardBrand = &brand
		method.CardLastFour = &lastFour
		method.CardExpMonth = &month
		method.CardExpYear = &year
		method.CardholderName = optionalString(in.CardholderName)
	case models.PaymentMethodBankAccount:
		bank := payments.BankDetails{RoutingNumber: in.RoutingNumber, AccountNumber: in.AccountNumber}
		if r := payments.ValidateBankAccount(bank); !r.Valid {
			return nil, validationMessage(r.Error)
		}
		routing := payments.LastFour(in.RoutingNumber)
		account := payments.LastFour(in.AccountNumber)
		method.RoutingLastFour = &routing
		method.AccountLastFour = &account
		method.BankName = optionalString(in.BankName)
		method.AccountHolderName = optionalString(in.AccountHolderName)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, "id = ?", in.UserID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if method.IsPrimary {
			err := tx.Model(&models.PaymentMethod{}).
				Where("user_id = ? AND type = ? AND is_primary = ?", in.UserID, in.Type, true).
				Update("is_primary", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&method).Error
	})
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (s *PaymentService) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary desc, created_at asc").
		Find(&methods).Error
	return methods, err
}

// primaryVerifiedMethod returns gorm.ErrRecordNotFound when the user has no
// primary verified method of the given type.
func primaryVerifiedMethod(tx *gorm.DB, userID uuid.UUID, methodType string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := tx.Where("user_id = ? AND type = ? AND is_primary = ? AND is_verified = ?",
		userID, methodType, true, true).
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// anyPrimaryVerifiedMethod prefers a credit card and falls back to a bank
// account.
func anyPrimaryVerifiedMethod(tx *gorm.DB, userID uuid.UUID) (*models.PaymentMethod, error) {
	for _, methodType := range []string{models.PaymentMethodCreditCard, models.PaymentMethodBankAccount} {
		method, err := primaryVerifiedMethod(tx, userID, methodType)
		if err == nil {
			return method, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

