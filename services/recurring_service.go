package services

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecurringService struct {
	db  *gorm.DB
	now clock
}

func NewRecurringService(db *gorm.DB) *RecurringService {
	return &RecurringService{db: db, now: utcNow}
}

type AddRecurringSlotInput struct {
	TeacherID  uuid.UUID `validate:"required"`
	Instrument string    `validate:"required"`
	DayOfWeek  string    `validate:"required"`
	StartTime  string    `validate:"required,datetime=15:04"`
	Duration   int       `validate:"required,gt=0,lte=480"`
	LessonType string    `validate:"required,oneof=virtual in-person"`
	Notes      string
}

// AddRecurringSlot publishes an open weekly slot. It has no student and no
// next lesson date until a student books it.
func (s *RecurringService) AddRecurringSlot(ctx context.Context, in AddRecurringSlotInput) (*models.RecurringLesson, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	day, err := ParseWeekday(in.DayOfWeek)
	if err != nil {
		return nil, err
	}

	var slot models.RecurringLesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, "id = ?", in.TeacherID).Error; err != nil {
			return notFound(err, ErrTeacherNotFound)
		}
		if !teacher.Offers(in.LessonType) {
			return ErrLessonTypeNotOffered
		}

		split := payments.LessonPrice(in.Duration, teacher.HourlyRate)
		slot = models.RecurringLesson{
			TeacherID:       in.TeacherID,
			Instrument:      strings.ToLower(strings.TrimSpace(in.Instrument)),
			DayOfWeek:       strings.ToLower(day.String()),
			StartTime:       in.StartTime,
			Duration:        in.Duration,
			LessonType:      in.LessonType,
			Frequency:       models.FrequencyWeekly,
			Status:          models.RecurringStatusActive,
			Notes:           optionalString(in.Notes),
			TotalCost:       split.TotalCost,
			PlatformFee:     split.PlatformFee,
			TeacherEarnings: split.TeacherEarnings,
		}
		return tx.Create(&slot).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

type BookRecurringSlotInput struct {
	RecurringLessonID uuid.UUID `validate:"required"`
	StudentID         uuid.UUID `validate:"required"`
	StartDate         string    `validate:"required,datetime=2006-01-02"`
	Frequency         string    `validate:"omitempty,oneof=weekly biweekly monthly"`
	Notes             string
}

// BookRecurringSlot assigns an open slot to a student. The claim is a
// conditional update on student_id IS NULL: of two concurrent bookings
// exactly one matches a row.
func (s *RecurringService) BookRecurringSlot(ctx context.Context, in BookRecurringSlotInput) (*models.RecurringLesson, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	if in.StartDate < today(s.now) {
		return nil, validationMessage("start date is in the past")
	}
	frequency := in.Frequency
	if frequency == "" {
		frequency = models.FrequencyWeekly
	}

	var slot models.RecurringLesson
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teacher").First(&slot, "id = ?", in.RecurringLessonID).Error; err != nil {
			return notFound(err, ErrSlotNotFound)
		}
		if slot.IsBooked() {
			return ErrSlotAlreadyBooked
		}
		if slot.Status != models.RecurringStatusActive {
			return ErrRecurringNotActive
		}
		var student models.Student
		if err := tx.First(&student, "id = ?", in.StudentID).Error; err != nil {
			return notFound(err, ErrStudentNotFound)
		}

		day, err := ParseWeekday(slot.DayOfWeek)
		if err != nil {
			return err
		}
		firstDate := FirstOccurrence(start, day)
		first := firstDate.Format(models.DateLayout)
		split := payments.LessonPrice(slot.Duration, slot.Teacher.HourlyRate)

		updates := map[string]any{
			"student_id":       in.StudentID,
			"frequency":        frequency,
			"next_lesson_date": first,
			"anchor_day":       firstDate.Day(),
			"total_cost":       split.TotalCost,
			"platform_fee":     split.PlatformFee,
			"teacher_earnings": split.TeacherEarnings,
		}
		if notes := optionalString(in.Notes); notes != nil {
			updates["notes"] = notes
		}
		result := tx.Model(&models.RecurringLesson{}).
			Where("id = ? AND student_id IS NULL", slot.ID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlotAlreadyBooked
		}
		return tx.First(&slot, "id = ?", slot.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

type RecurringConfirmation struct {
	RecurringLessonID uuid.UUID `json:"recurring_lesson_id"`
	LessonDate        string    `json:"lesson_date"`
	NextLessonDate    string    `json:"next_lesson_date"`
	TransactionID     string    `json:"transaction_id"`
	AmountCharged     float64   `json:"amount_charged"`

	Payment *models.Payment `json:"-"`
}

// ConfirmRecurringLesson charges the current occurrence and advances
// next_lesson_date by one cycle. The advance is a compare-and-swap on the
// old date, so a lesson is never charged twice for the same occurrence.
func (s *RecurringService) ConfirmRecurringLesson(ctx context.Context, id uuid.UUID) (*RecurringConfirmation, error) {
	var confirmation RecurringConfirmation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recurring models.RecurringLesson
		if err := tx.Preload("Student").First(&recurring, "id = ?", id).Error; err != nil {
			return notFound(err, ErrRecurringLessonNotFound)
		}
		if !recurring.IsBooked() || recurring.Student == nil {
			return ErrNotBooked
		}
		if recurring.Status != models.RecurringStatusActive {
			return ErrRecurringNotActive
		}

		method, err := anyPrimaryVerifiedMethod(tx, recurring.Student.UserID)
		if err != nil {
			return notFound(err, ErrNoVerifiedPaymentMethod)
		}

		current, err := parseDate(recurring.NextLessonDate)
		if err != nil {
			return err
		}
		day, err := ParseWeekday(recurring.DayOfWeek)
		if err != nil {
			return err
		}
		next, err := NextOccurrenceFrom(current, day, recurring.Frequency, recurring.AnchorDay)
		if err != nil {
			return err
		}
		nextDate := next.Format(models.DateLayout)

		result := tx.Model(&models.RecurringLesson{}).
			Where("id = ? AND status = ? AND next_lesson_date = ?",
				recurring.ID, models.RecurringStatusActive, recurring.NextLessonDate).
			Update("next_lesson_date", nextDate)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		now := s.now()
		payment := models.Payment{
			RecurringLessonID: &recurring.ID,
			StudentID:         *recurring.StudentID,
			TeacherID:         recurring.TeacherID,
			PaymentMethodID:   &method.ID,
			Amount:            recurring.TotalCost,
			PlatformFee:       recurring.PlatformFee,
			TeacherEarnings:   recurring.TeacherEarnings,
			TransactionID:     payments.RecurringTransactionID(now, recurring.ID),
			Status:            models.PaymentStatusCompleted,
			PaymentDate:       now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		confirmation = RecurringConfirmation{
			RecurringLessonID: recurring.ID,
			LessonDate:        recurring.NextLessonDate,
			NextLessonDate:    nextDate,
			TransactionID:     payment.TransactionID,
			AmountCharged:     payment.Amount,
			Payment:           &payment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (s *RecurringService) PauseRecurringLesson(ctx context.Context, id, actorUserID uuid.UUID) (*models.RecurringLesson, error) {
	return s.transition(ctx, id, actorUserID, models.RecurringStatusPaused, models.RecurringStatusActive)
}

// ResumeRecurringLesson reactivates a paused lesson. A next lesson date
// that went by during the pause moves forward to the first matching day
// from today.
func (s *RecurringService) ResumeRecurringLesson(ctx context.Context, id, actorUserID uuid.UUID) (*models.RecurringLesson, error) {
	return s.transition(ctx, id, actorUserID, models.RecurringStatusActive, models.RecurringStatusPaused)
}

// CancelRecurringLesson is terminal.
func (s *RecurringService) CancelRecurringLesson(ctx context.Context, id, actorUserID uuid.UUID) (*models.RecurringLesson, error) {
	return s.transition(ctx, id, actorUserID, models.RecurringStatusCancelled,
		models.RecurringStatusActive, models.RecurringStatusPaused)
}

func (s *RecurringService) transition(ctx context.Context, id, actorUserID uuid.UUID, to string, from ...string) (*models.RecurringLesson, error) {
	var recurring models.RecurringLesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teacher").Preload("Student").First(&recurring, "id = ?", id).Error; err != nil {
			return notFound(err, ErrRecurringLessonNotFound)
		}
		isTeacher := recurring.Teacher.UserID == actorUserID
		isStudent := recurring.Student != nil && recurring.Student.UserID == actorUserID
		if !isTeacher && !isStudent {
			return ErrForbidden
		}

		updates := map[string]any{"status": to}
		if to == models.RecurringStatusActive && recurring.IsBooked() {
			todayDate := today(s.now)
			if recurring.NextLessonDate < todayDate {
				day, err := ParseWeekday(recurring.DayOfWeek)
				if err != nil {
					return err
				}
				start, err := parseDate(todayDate)
				if err != nil {
					return err
				}
				updates["next_lesson_date"] = FirstOccurrence(start, day).Format(models.DateLayout)
			}
		}

		result := tx.Model(&models.RecurringLesson{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return tx.First(&recurring, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &recurring, nil
}

// DeleteRecurringSlot removes a slot nobody has booked. Booked lessons must
// be cancelled instead so their payment history keeps its reference.
func (s *RecurringService) DeleteRecurringSlot(ctx context.Context, id, teacherID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND teacher_id = ? AND student_id IS NULL", id, teacherID).
			Delete(&models.RecurringLesson{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			return nil
		}

		var slot models.RecurringLesson
		if err := tx.First(&slot, "id = ?", id).Error; err != nil {
			return notFound(err, ErrRecurringLessonNotFound)
		}
		if slot.TeacherID != teacherID {
			return ErrForbidden
		}
		return ErrSlotAlreadyBooked
	})
}

// ListOpenRecurringSlots returns active slots still waiting for a student.
func (s *RecurringService) ListOpenRecurringSlots(ctx context.Context, instrument string) ([]models.RecurringLesson, error) {
	q := s.db.WithContext(ctx).
		Preload("Teacher.User").
		Where("student_id IS NULL AND status = ?", models.RecurringStatusActive)
	if instrument = strings.ToLower(strings.TrimSpace(instrument)); instrument != "" {
		q = q.Where("instrument = ?", instrument)
	}
	var slots []models.RecurringLesson
	err := q.Order("created_at asc").Find(&slots).Error
	return slots, err
}

func (s *RecurringService) GetTeacherRecurringLessons(ctx context.Context, teacherID uuid.UUID) ([]models.RecurringLesson, error) {
	var list []models.RecurringLesson
	err := s.db.WithContext(ctx).
		Preload("Student.User").
		Where("teacher_id = ?", teacherID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

func (s *RecurringService) GetStudentRecurringLessons(ctx context.Context, studentID uuid.UUID) ([]models.RecurringLesson, error) {
	var list []models.RecurringLesson
	err := s.db.WithContext(ctx).
		Preload("Teacher.User").
		Where("student_id = ?", studentID).
		Order("next_lesson_date asc").
		Find(&list).Error
	return list, err
}

// DueRecurringLessons lists active booked lessons whose next occurrence is
// on or before asOf.
func (s *RecurringService) DueRecurringLessons(ctx context.Context, asOf time.Time) ([]models.RecurringLesson, error) {
	var list []models.RecurringLesson
	err := s.db.WithContext(ctx).
		Preload("Student.User").
		Where("status = ? AND student_id IS NOT NULL AND next_lesson_date <= ?",
			models.RecurringStatusActive, asOf.UTC().Format(models.DateLayout)).
		Order("next_lesson_date asc").
		Find(&list).Error
	return list, err
}
