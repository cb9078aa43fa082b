package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/freelance_music/database"
	"github.com/anjiri1684/freelance_music/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database with the production schema.
// A single connection makes concurrent transactions queue up the way row
// locks would serialize them in Postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), database.Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// tickingClock starts at start and moves one second forward on every call,
// so ids derived from the clock never repeat within a test.
func tickingClock(start time.Time) clock {
	var mu sync.Mutex
	current := start.Add(-time.Second)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

var testNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	db      *gorm.DB
	now     clock
	teacher models.Teacher
	student models.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, db: newTestDB(t), now: tickingClock(testNow)}
	f.teacher = f.createTeacher("Jane Doe", "jane@example.com", 60)
	f.student = f.createStudent("John Smith", "john@example.com", "social media")
	return f
}

func (f *fixture) createUser(name, email, role string) models.User {
	f.t.Helper()
	user := models.User{Name: name, Email: email, Password: "hash", Role: role}
	require.NoError(f.t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) createTeacher(name, email string, rate float64) models.Teacher {
	f.t.Helper()
	user := f.createUser(name, email, models.RoleTeacher)
	teacher := models.Teacher{
		UserID:            user.ID,
		Instruments:       datatypes.JSONSlice[string]{"piano", "guitar"},
		HourlyRate:        rate,
		VirtualAvailable:  true,
		InPersonAvailable: true,
	}
	require.NoError(f.t, f.db.Create(&teacher).Error)
	teacher.User = user
	return teacher
}

func (f *fixture) createStudent(name, email, referral string) models.Student {
	f.t.Helper()
	user := f.createUser(name, email, models.RoleStudent)
	student := models.Student{
		UserID:            user.ID,
		PrimaryInstrument: "piano",
		SkillLevel:        "beginner",
		ReferralSource:    referral,
	}
	require.NoError(f.t, f.db.Create(&student).Error)
	student.User = user
	return student
}

func (f *fixture) createSlot(date, start, end, lessonType string) models.AvailabilitySlot {
	f.t.Helper()
	slot := models.AvailabilitySlot{
		TeacherID:  f.teacher.ID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		LessonType: lessonType,
	}
	require.NoError(f.t, f.db.Create(&slot).Error)
	return slot
}

func (f *fixture) addMethod(userID uuid.UUID, methodType string, primary, verified bool) models.PaymentMethod {
	f.t.Helper()
	method := models.PaymentMethod{
		UserID:     userID,
		Type:       methodType,
		IsPrimary:  primary,
		IsVerified: verified,
	}
	require.NoError(f.t, f.db.Create(&method).Error)
	return method
}

func (f *fixture) createLesson(studentID uuid.UUID, instrument, status string, cost float64) models.Lesson {
	f.t.Helper()
	lesson := models.Lesson{
		TeacherID:       f.teacher.ID,
		StudentID:       studentID,
		Instrument:      instrument,
		Date:            "2024-01-20",
		Time:            "10:00",
		Duration:        60,
		LessonType:      models.LessonTypeVirtual,
		Status:          status,
		TotalCost:       cost,
		PlatformFee:     cost / 10,
		TeacherEarnings: cost - cost/10,
	}
	require.NoError(f.t, f.db.Create(&lesson).Error)
	return lesson
}

func (f *fixture) bookingService() *BookingService {
	return &BookingService{db: f.db, now: f.now}
}

func (f *fixture) paymentService() *PaymentService {
	return &PaymentService{db: f.db, now: f.now}
}

func (f *fixture) recurringService() *RecurringService {
	return &RecurringService{db: f.db, now: f.now}
}

func (f *fixture) reportService() *ReportService {
	return &ReportService{db: f.db, now: f.now}
}

func (f *fixture) count(model any, query string, args ...any) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}
