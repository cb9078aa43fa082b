package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addMondaySlot(t *testing.T, f *fixture) *models.RecurringLesson {
	t.Helper()
	slot, err := f.recurringService().AddRecurringSlot(context.Background(), AddRecurringSlotInput{
		TeacherID:  f.teacher.ID,
		Instrument: "Piano",
		DayOfWeek:  "Monday",
		StartTime:  "16:00",
		Duration:   60,
		LessonType: models.LessonTypeVirtual,
	})
	require.NoError(t, err)
	return slot
}

func TestAddRecurringSlotIsOpenAndWeekly(t *testing.T) {
	f := newFixture(t)
	slot := addMondaySlot(t, f)

	assert.False(t, slot.IsBooked())
	assert.Equal(t, models.RecurringStatusActive, slot.Status)
	assert.Equal(t, models.FrequencyWeekly, slot.Frequency)
	assert.Equal(t, "monday", slot.DayOfWeek)
	assert.Equal(t, "piano", slot.Instrument)
	assert.Empty(t, slot.NextLessonDate)
	assert.Equal(t, 60.0, slot.TotalCost)

	_, err := f.recurringService().AddRecurringSlot(context.Background(), AddRecurringSlotInput{
		TeacherID: f.teacher.ID, Instrument: "piano", DayOfWeek: "someday",
		StartTime: "16:00", Duration: 60, LessonType: models.LessonTypeVirtual,
	})
	assert.ErrorIs(t, err, ErrValidation)

	open, err := f.recurringService().ListOpenRecurringSlots(context.Background(), "PIANO")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Jane Doe", open[0].Teacher.User.Name)
}

func TestRecurringWeeklyBookingAndConfirmation(t *testing.T) {
	f := newFixture(t)
	card := f.addMethod(f.student.UserID, models.PaymentMethodCreditCard, true, true)
	slot := addMondaySlot(t, f)
	svc := f.recurringService()
	ctx := context.Background()

	booked, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{
		RecurringLessonID: slot.ID,
		StudentID:         f.student.ID,
		StartDate:         "2024-01-15",
		Frequency:         models.FrequencyWeekly,
		Notes:             "prepare for grade 3",
	})
	require.NoError(t, err)
	require.NotNil(t, booked.StudentID)
	assert.Equal(t, f.student.ID, *booked.StudentID)
	assert.Equal(t, "2024-01-15", booked.NextLessonDate)
	assert.Equal(t, 60.0, booked.TotalCost)
	assert.Equal(t, 6.0, booked.PlatformFee)
	assert.Equal(t, 54.0, booked.TeacherEarnings)

	confirmation, err := svc.ConfirmRecurringLesson(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", confirmation.LessonDate)
	assert.Equal(t, "2024-01-22", confirmation.NextLessonDate)
	assert.True(t, strings.HasPrefix(confirmation.TransactionID, "REC_"), confirmation.TransactionID)
	assert.True(t, strings.HasSuffix(confirmation.TransactionID, "_"+slot.ID.String()))
	assert.Equal(t, 60.0, confirmation.AmountCharged)

	var payments []models.Payment
	require.NoError(t, f.db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Nil(t, payments[0].LessonID)
	require.NotNil(t, payments[0].RecurringLessonID)
	assert.Equal(t, slot.ID, *payments[0].RecurringLessonID)
	assert.Equal(t, card.ID, *payments[0].PaymentMethodID)
	assert.Equal(t, confirmation.TransactionID, payments[0].TransactionID)

	second, err := svc.ConfirmRecurringLesson(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", second.NextLessonDate)
	assert.NotEqual(t, confirmation.TransactionID, second.TransactionID)
	assert.EqualValues(t, 2, f.count(&models.Payment{}, "recurring_lesson_id = ?", slot.ID))
}

func TestBookRecurringSlotAlignsToDayOfWeek(t *testing.T) {
	f := newFixture(t)
	slot := addMondaySlot(t, f)

	// 2024-01-11 is a Thursday
	booked, err := f.recurringService().BookRecurringSlot(context.Background(), BookRecurringSlotInput{
		RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-11",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", booked.NextLessonDate)
	assert.Equal(t, models.FrequencyWeekly, booked.Frequency)
}

func TestRecurringMonthlyClampsToMonthEnd(t *testing.T) {
	f := newFixture(t)
	f.addMethod(f.student.UserID, models.PaymentMethodCreditCard, true, true)
	svc := f.recurringService()
	ctx := context.Background()

	slot, err := svc.AddRecurringSlot(ctx, AddRecurringSlotInput{
		TeacherID: f.teacher.ID, Instrument: "guitar", DayOfWeek: "wednesday",
		StartTime: "18:00", Duration: 30, LessonType: models.LessonTypeInPerson,
	})
	require.NoError(t, err)

	booked, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{
		RecurringLessonID: slot.ID, StudentID: f.student.ID,
		StartDate: "2024-01-31", Frequency: models.FrequencyMonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", booked.NextLessonDate)

	assert.Equal(t, 31, booked.AnchorDay)

	confirmation, err := svc.ConfirmRecurringLesson(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", confirmation.NextLessonDate)
	assert.Equal(t, 30.0, confirmation.AmountCharged)

	confirmation, err = svc.ConfirmRecurringLesson(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", confirmation.LessonDate)
	assert.Equal(t, "2024-03-31", confirmation.NextLessonDate)
}

func TestBookRecurringSlotFailures(t *testing.T) {
	f := newFixture(t)
	other := f.createStudent("Sarah Johnson", "sarah@example.com", "")
	slot := addMondaySlot(t, f)
	svc := f.recurringService()
	ctx := context.Background()

	_, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: uuid.New(), StudentID: f.student.ID, StartDate: "2024-01-15"})
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15", Frequency: "daily"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)

	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: other.ID, StartDate: "2024-01-22"})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	assert.ErrorIs(t, err, ErrConflict)

	var stored models.RecurringLesson
	require.NoError(t, f.db.First(&stored, "id = ?", slot.ID).Error)
	assert.Equal(t, f.student.ID, *stored.StudentID)
	assert.Equal(t, "2024-01-15", stored.NextLessonDate)
}

func TestBookRecurringSlotLosesToConcurrentClaim(t *testing.T) {
	f := newFixture(t)
	rival := f.createStudent("Sarah Johnson", "sarah@example.com", "")
	slot := addMondaySlot(t, f)

	// Another booking lands after the slot was read as open but before
	// the conditional update runs.
	claimed := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:rival_claim", func(db *gorm.DB) {
		if claimed || db.Statement.Table != "recurring_lessons" {
			return
		}
		claimed = true
		err := db.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE recurring_lessons SET student_id = ? WHERE id = ?", rival.ID, slot.ID).Error
		require.NoError(t, err)
	}))

	_, err := f.recurringService().BookRecurringSlot(context.Background(), BookRecurringSlotInput{
		RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15",
	})
	require.True(t, claimed)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	var stored models.RecurringLesson
	require.NoError(t, f.db.First(&stored, "id = ?", slot.ID).Error)
	require.NotNil(t, stored.StudentID)
	assert.Equal(t, rival.ID, *stored.StudentID)
	assert.Empty(t, stored.NextLessonDate)
}

func TestConfirmRecurringLessonPreconditions(t *testing.T) {
	f := newFixture(t)
	slot := addMondaySlot(t, f)
	svc := f.recurringService()
	ctx := context.Background()

	_, err := svc.ConfirmRecurringLesson(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRecurringLessonNotFound)

	_, err = svc.ConfirmRecurringLesson(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrNotBooked)

	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)

	f.addMethod(f.student.UserID, models.PaymentMethodCreditCard, false, true)
	_, err = svc.ConfirmRecurringLesson(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrNoVerifiedPaymentMethod)

	var stored models.RecurringLesson
	require.NoError(t, f.db.First(&stored, "id = ?", slot.ID).Error)
	assert.Equal(t, "2024-01-15", stored.NextLessonDate)
	assert.Zero(t, f.count(&models.Payment{}, ""))

	bank := f.addMethod(f.student.UserID, models.PaymentMethodBankAccount, true, true)
	_, err = svc.ConfirmRecurringLesson(ctx, slot.ID)
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, f.db.First(&payment, "recurring_lesson_id = ?", slot.ID).Error)
	assert.Equal(t, bank.ID, *payment.PaymentMethodID)
}

func TestRecurringStatusTransitions(t *testing.T) {
	f := newFixture(t)
	f.addMethod(f.student.UserID, models.PaymentMethodCreditCard, true, true)
	slot := addMondaySlot(t, f)
	svc := f.recurringService()
	ctx := context.Background()

	_, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)

	_, err = svc.PauseRecurringLesson(ctx, slot.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	paused, err := svc.PauseRecurringLesson(ctx, slot.ID, f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringStatusPaused, paused.Status)

	_, err = svc.PauseRecurringLesson(ctx, slot.ID, f.student.UserID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ConfirmRecurringLesson(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrRecurringNotActive)

	resumed, err := svc.ResumeRecurringLesson(ctx, slot.ID, f.teacher.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringStatusActive, resumed.Status)
	assert.Equal(t, "2024-01-15", resumed.NextLessonDate)

	cancelled, err := svc.CancelRecurringLesson(ctx, slot.ID, f.teacher.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RecurringStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.StudentID)

	_, err = svc.ResumeRecurringLesson(ctx, slot.ID, f.teacher.UserID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.CancelRecurringLesson(ctx, slot.ID, f.teacher.UserID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResumeMovesStaleNextLessonDate(t *testing.T) {
	f := newFixture(t)
	slot := addMondaySlot(t, f)
	svc := f.recurringService()
	ctx := context.Background()

	_, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: slot.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)
	_, err = svc.PauseRecurringLesson(ctx, slot.ID, f.student.UserID)
	require.NoError(t, err)

	// resume three weeks later, on Wednesday 2024-01-31
	svc.now = tickingClock(time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC))
	resumed, err := svc.ResumeRecurringLesson(ctx, slot.ID, f.student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-05", resumed.NextLessonDate)
}

func TestDeleteRecurringSlot(t *testing.T) {
	f := newFixture(t)
	svc := f.recurringService()
	ctx := context.Background()

	open := addMondaySlot(t, f)
	booked := addMondaySlot(t, f)
	_, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: booked.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)

	err = svc.DeleteRecurringSlot(ctx, open.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteRecurringSlot(ctx, booked.ID, f.teacher.ID)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	require.NoError(t, svc.DeleteRecurringSlot(ctx, open.ID, f.teacher.ID))
	err = svc.DeleteRecurringSlot(ctx, open.ID, f.teacher.ID)
	assert.ErrorIs(t, err, ErrRecurringLessonNotFound)

	assert.EqualValues(t, 1, f.count(&models.RecurringLesson{}, ""))
}

func TestRecurringListingsAndDueLessons(t *testing.T) {
	f := newFixture(t)
	svc := f.recurringService()
	ctx := context.Background()

	due := addMondaySlot(t, f)
	later := addMondaySlot(t, f)
	addMondaySlot(t, f)
	_, err := svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: due.ID, StudentID: f.student.ID, StartDate: "2024-01-15"})
	require.NoError(t, err)
	_, err = svc.BookRecurringSlot(ctx, BookRecurringSlotInput{RecurringLessonID: later.ID, StudentID: f.student.ID, StartDate: "2024-01-22"})
	require.NoError(t, err)

	list, err := svc.DueRecurringLessons(ctx, time.Date(2024, time.January, 15, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due.ID, list[0].ID)

	_, err = svc.PauseRecurringLesson(ctx, due.ID, f.teacher.UserID)
	require.NoError(t, err)
	list, err = svc.DueRecurringLessons(ctx, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, later.ID, list[0].ID)

	teacherList, err := svc.GetTeacherRecurringLessons(ctx, f.teacher.ID)
	require.NoError(t, err)
	assert.Len(t, teacherList, 3)

	studentList, err := svc.GetStudentRecurringLessons(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, studentList, 2)
	assert.Equal(t, "2024-01-15", studentList[0].NextLessonDate)

	openSlots, err := svc.ListOpenRecurringSlots(ctx, "")
	require.NoError(t, err)
	assert.Len(t, openSlots, 1)
}
