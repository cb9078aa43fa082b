package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/payments"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingService struct {
	db  *gorm.DB
	now clock
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db, now: utcNow}
}

type BookLessonInput struct {
	TeacherID      uuid.UUID `validate:"required"`
	StudentID      uuid.UUID `validate:"required"`
	Date           string    `validate:"required,datetime=2006-01-02"`
	Time           string    `validate:"required,datetime=15:04"`
	Duration       int       `validate:"required,gt=0,lte=480"`
	LessonType     string    `validate:"required,oneof=virtual in-person"`
	Instrument     string    `validate:"required"`
	Notes          string
	SheetMusicURLs []string `validate:"omitempty,dive,url"`
}

// BookLesson claims the matching availability slot and creates the lesson
// in one transaction. The slot is deleted by id and the delete must affect
// exactly one row; when two students race for the same slot the loser sees
// zero rows and gets ErrSlotUnavailable with nothing written.
func (s *BookingService) BookLesson(ctx context.Context, in BookLessonInput) (*models.Lesson, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var lesson models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, "id = ?", in.TeacherID).Error; err != nil {
			return notFound(err, ErrTeacherNotFound)
		}
		var student models.Student
		if err := tx.First(&student, "id = ?", in.StudentID).Error; err != nil {
			return notFound(err, ErrStudentNotFound)
		}

		var slot models.AvailabilitySlot
		err := tx.Where("teacher_id = ? AND date = ? AND start_time = ? AND lesson_type = ?",
			in.TeacherID, in.Date, in.Time, in.LessonType).
			First(&slot).Error
		if err != nil {
			return notFound(err, ErrSlotUnavailable)
		}

		result := tx.Delete(&models.AvailabilitySlot{}, "id = ?", slot.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlotUnavailable
		}

		split := payments.LessonPrice(in.Duration, teacher.HourlyRate)
		lesson = models.Lesson{
			TeacherID:       in.TeacherID,
			StudentID:       in.StudentID,
			Instrument:      strings.ToLower(strings.TrimSpace(in.Instrument)),
			Date:            in.Date,
			Time:            in.Time,
			Duration:        in.Duration,
			LessonType:      in.LessonType,
			Status:          models.LessonStatusUpcoming,
			Notes:           optionalString(in.Notes),
			SheetMusicURLs:  datatypes.JSONSlice[string](in.SheetMusicURLs),
			SlotEndTime:     slot.EndTime,
			SlotInstruments: slot.Instruments,
			TotalCost:       split.TotalCost,
			PlatformFee:     split.PlatformFee,
			TeacherEarnings: split.TeacherEarnings,
		}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CancelLesson moves an upcoming lesson to cancelled. Either participant may
// cancel. When the lesson has not happened yet its slot is put back so the
// time can be booked again.
func (s *BookingService) CancelLesson(ctx context.Context, lessonID, actorUserID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teacher").Preload("Student").First(&lesson, "id = ?", lessonID).Error; err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		if lesson.Teacher.UserID != actorUserID && lesson.Student.UserID != actorUserID {
			return ErrForbidden
		}

		result := tx.Model(&models.Lesson{}).
			Where("id = ? AND status = ?", lessonID, models.LessonStatusUpcoming).
			Update("status", models.LessonStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLessonNotUpcoming
		}
		lesson.Status = models.LessonStatusCancelled

		start, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, lesson.Date+" "+lesson.Time, time.UTC)
		if err != nil {
			return validationMessage(fmt.Sprintf("invalid lesson start %q %q", lesson.Date, lesson.Time))
		}
		if !start.After(s.now().UTC()) {
			return nil
		}
		return tx.Create(restoredSlot(lesson)).Error
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// restoredSlot rebuilds the availability a lesson consumed. Lessons booked
// before the slot was recorded fall back to duration and booked instrument.
func restoredSlot(lesson models.Lesson) *models.AvailabilitySlot {
	slot := &models.AvailabilitySlot{
		TeacherID:   lesson.TeacherID,
		Date:        lesson.Date,
		StartTime:   lesson.Time,
		EndTime:     lesson.SlotEndTime,
		LessonType:  lesson.LessonType,
		Instruments: lesson.SlotInstruments,
	}
	if slot.EndTime == "" {
		slot.EndTime, _ = addMinutes(lesson.Time, lesson.Duration)
		slot.Instruments = datatypes.JSONSlice[string]{lesson.Instrument}
	}
	return slot
}

type AvailableLesson struct {
	models.AvailabilitySlot
	TeacherName string   `json:"teacher_name"`
	HourlyRate  float64  `json:"hourly_rate"`
	Instruments []string `json:"instruments"`
}

// GetAvailableLessons lists open slots from today on. Empty instrument or
// lessonType match everything. A slot without its own instrument list
// inherits the teacher's.
func (s *BookingService) GetAvailableLessons(ctx context.Context, instrument, lessonType string) ([]AvailableLesson, error) {
	q := s.db.WithContext(ctx).
		Preload("Teacher.User").
		Where("date >= ?", today(s.now))
	if lessonType != "" {
		q = q.Where("lesson_type = ?", lessonType)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("date asc, start_time asc").Find(&slots).Error; err != nil {
		return nil, err
	}

	instrument = strings.ToLower(strings.TrimSpace(instrument))
	lessons := make([]AvailableLesson, 0, len(slots))
	for _, slot := range slots {
		instruments := []string(slot.Instruments)
		if len(instruments) == 0 {
			instruments = []string(slot.Teacher.Instruments)
		}
		if instrument != "" && !slices.Contains(instruments, instrument) {
			continue
		}
		lessons = append(lessons, AvailableLesson{
			AvailabilitySlot: slot,
			TeacherName:      slot.Teacher.User.Name,
			HourlyRate:       slot.Teacher.HourlyRate,
			Instruments:      instruments,
		})
	}
	return lessons, nil
}

// GetTeacherLessons returns the teacher's lessons, newest first, optionally
// filtered by status.
func (s *BookingService) GetTeacherLessons(ctx context.Context, teacherID uuid.UUID, status string) ([]models.Lesson, error) {
	q := s.db.WithContext(ctx).Preload("Student.User").Where("teacher_id = ?", teacherID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var lessons []models.Lesson
	err := q.Order("date desc, time desc").Find(&lessons).Error
	return lessons, err
}

func (s *BookingService) GetStudentLessons(ctx context.Context, studentID uuid.UUID, status string) ([]models.Lesson, error) {
	q := s.db.WithContext(ctx).Preload("Teacher.User").Where("student_id = ?", studentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var lessons []models.Lesson
	err := q.Order("date desc, time desc").Find(&lessons).Error
	return lessons, err
}

// UpcomingLessonsOn returns lessons still upcoming on date, with both
// participants' users loaded for notifications.
func (s *BookingService) UpcomingLessonsOn(ctx context.Context, date string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Teacher.User").
		Preload("Student.User").
		Where("date = ? AND status = ?", date, models.LessonStatusUpcoming).
		Order("time asc").
		Find(&lessons).Error
	return lessons, err
}

type AddAvailabilityInput struct {
	TeacherID   uuid.UUID `validate:"required"`
	Date        string    `validate:"required,datetime=2006-01-02"`
	StartTime   string    `validate:"required,datetime=15:04"`
	EndTime     string    `validate:"required,datetime=15:04"`
	LessonType  string    `validate:"required,oneof=virtual in-person"`
	Instruments []string  `validate:"omitempty,dive,required"`
}

func (s *BookingService) AddAvailability(ctx context.Context, in AddAvailabilityInput) (*models.AvailabilitySlot, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.StartTime >= in.EndTime {
		return nil, validationMessage("start time must be before end time")
	}
	if in.Date < today(s.now) {
		return nil, validationMessage("availability date is in the past")
	}

	var slot models.AvailabilitySlot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, "id = ?", in.TeacherID).Error; err != nil {
			return notFound(err, ErrTeacherNotFound)
		}
		if !teacher.Offers(in.LessonType) {
			return ErrLessonTypeNotOffered
		}

		var overlapping int64
		err := tx.Model(&models.AvailabilitySlot{}).
			Where("teacher_id = ? AND date = ? AND start_time < ? AND end_time > ?",
				in.TeacherID, in.Date, in.EndTime, in.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return validationMessage("slot overlaps an existing availability slot")
		}

		slot = models.AvailabilitySlot{
			TeacherID:   in.TeacherID,
			Date:        in.Date,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			LessonType:  in.LessonType,
			Instruments: datatypes.JSONSlice[string](normalizeInstruments(in.Instruments)),
		}
		return tx.Create(&slot).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetTeacherAvailability lists the teacher's open slots from today on.
func (s *BookingService) GetTeacherAvailability(ctx context.Context, teacherID uuid.UUID) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := s.db.WithContext(ctx).
		Where("teacher_id = ? AND date >= ?", teacherID, today(s.now)).
		Order("date asc, start_time asc").
		Find(&slots).Error
	return slots, err
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
