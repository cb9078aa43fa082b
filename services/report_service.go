package services

import (
	"context"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	db  *gorm.DB
	now clock
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: utcNow}
}

type QuarterRevenue struct {
	Q1 float64 `json:"Q1"`
	Q2 float64 `json:"Q2"`
	Q3 float64 `json:"Q3"`
	Q4 float64 `json:"Q4"`
}

func (q QuarterRevenue) Total() float64 {
	return q.Q1 + q.Q2 + q.Q3 + q.Q4
}

type InstrumentCount struct {
	Instrument  string `json:"instrument"`
	LessonCount int64  `json:"lesson_count"`
}

type InstrumentRevenue struct {
	Instrument  string  `json:"instrument"`
	Revenue     float64 `json:"revenue"`
	LessonCount int64   `json:"lesson_count"`
}

type StudentRevenue struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Revenue     float64   `json:"revenue"`
}

type ReferralCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

type RepeatStudent struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	LessonCount int64     `json:"lesson_count"`
}

type UserStats struct {
	Total           int64 `json:"total"`
	Teachers        int64 `json:"teachers"`
	Students        int64 `json:"students"`
	RepeatStudents  int64 `json:"repeat_students"`
	ActiveThisMonth int64 `json:"active_this_month"`
}

type DashboardData struct {
	Year                int                 `json:"year"`
	Revenue             QuarterRevenue      `json:"revenue"`
	TotalRevenue        float64             `json:"total_revenue"`
	PlatformRevenue     PlatformRevenue     `json:"platform_revenue"`
	Referrals           []ReferralCount     `json:"referrals"`
	PopularInstruments  []InstrumentCount   `json:"popular_instruments"`
	RevenueByInstrument []InstrumentRevenue `json:"revenue_by_instrument"`
	RevenueByStudent    []StudentRevenue    `json:"revenue_by_student"`
	RepeatStudents      int64               `json:"repeat_students"`
	TotalLessons        int64               `json:"total_lessons"`
	Users               UserStats           `json:"users"`
	RecentBookings      []models.Lesson     `json:"recent_bookings"`
}

const recentBookingsLimit = 10

// repeatStatuses are the lesson states that count a student as a customer.
var repeatStatuses = []string{models.LessonStatusUpcoming, models.LessonStatusCompleted}

// GetAdminDashboardData gathers every admin rollup in one read
// transaction. Quarterly revenue covers the current calendar year.
func (s *ReportService) GetAdminDashboardData(ctx context.Context) (*DashboardData, error) {
	now := s.now()
	data := DashboardData{Year: now.Year()}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if data.Revenue, err = revenueByQuarter(tx, now.Year()); err != nil {
			return err
		}
		data.TotalRevenue = data.Revenue.Total()
		if err := platformRevenue(tx, &data.PlatformRevenue); err != nil {
			return err
		}
		if data.Referrals, err = referralCounts(tx); err != nil {
			return err
		}
		if data.PopularInstruments, err = popularInstruments(tx); err != nil {
			return err
		}
		if data.RevenueByInstrument, err = revenueByInstrument(tx); err != nil {
			return err
		}
		if data.RevenueByStudent, err = revenueByStudent(tx); err != nil {
			return err
		}
		if data.RepeatStudents, err = repeatStudentCount(tx); err != nil {
			return err
		}
		if err := tx.Model(&models.Lesson{}).Count(&data.TotalLessons).Error; err != nil {
			return err
		}
		if data.Users, err = userStats(tx, now); err != nil {
			return err
		}
		data.Users.RepeatStudents = data.RepeatStudents

		return tx.Preload("Teacher.User").Preload("Student.User").
			Order("created_at desc").
			Limit(recentBookingsLimit).
			Find(&data.RecentBookings).Error
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *ReportService) GetReferralReport(ctx context.Context) ([]ReferralCount, error) {
	return referralCounts(s.db.WithContext(ctx))
}

// GetRepeatLessonsReport lists students with more than one upcoming or
// completed lesson, most active first.
func (s *ReportService) GetRepeatLessonsReport(ctx context.Context) ([]RepeatStudent, error) {
	var rows []RepeatStudent
	err := s.db.WithContext(ctx).Model(&models.Lesson{}).
		Select("lessons.student_id AS student_id, users.name AS student_name, COUNT(*) AS lesson_count").
		Joins("JOIN students ON students.id = lessons.student_id").
		Joins("JOIN users ON users.id = students.user_id").
		Where("lessons.status IN ?", repeatStatuses).
		Group("lessons.student_id, users.name").
		Having("COUNT(*) > 1").
		Order("lesson_count desc, student_name asc").
		Scan(&rows).Error
	return rows, err
}

// RevenueByQuarter buckets completed payments of the given year by the
// quarter of their payment date.
func (s *ReportService) RevenueByQuarter(ctx context.Context, year int) (QuarterRevenue, error) {
	return revenueByQuarter(s.db.WithContext(ctx), year)
}

func (s *ReportService) PopularInstruments(ctx context.Context) ([]InstrumentCount, error) {
	return popularInstruments(s.db.WithContext(ctx))
}

func (s *ReportService) RevenueByInstrument(ctx context.Context) ([]InstrumentRevenue, error) {
	return revenueByInstrument(s.db.WithContext(ctx))
}

func (s *ReportService) RevenueByStudent(ctx context.Context) ([]StudentRevenue, error) {
	return revenueByStudent(s.db.WithContext(ctx))
}

func revenueByQuarter(tx *gorm.DB, year int) (QuarterRevenue, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []struct {
		Amount      float64
		PaymentDate time.Time
	}
	err := tx.Model(&models.Payment{}).
		Select("amount, payment_date").
		Where("status = ? AND payment_date >= ? AND payment_date < ?", models.PaymentStatusCompleted, from, to).
		Scan(&rows).Error
	if err != nil {
		return QuarterRevenue{}, err
	}

	var cents [4]int64
	for _, row := range rows {
		q := (int(row.PaymentDate.UTC().Month()) - 1) / 3
		cents[q] += payments.ToCents(row.Amount)
	}
	return QuarterRevenue{
		Q1: payments.FromCents(cents[0]),
		Q2: payments.FromCents(cents[1]),
		Q3: payments.FromCents(cents[2]),
		Q4: payments.FromCents(cents[3]),
	}, nil
}

func platformRevenue(tx *gorm.DB, out *PlatformRevenue) error {
	return tx.Model(&models.Payment{}).
		Select(`COALESCE(SUM(amount), 0) AS total_revenue,
			COALESCE(SUM(platform_fee), 0) AS platform_fees,
			COALESCE(SUM(teacher_earnings), 0) AS teacher_earnings,
			COUNT(*) AS payment_count`).
		Where("status = ?", models.PaymentStatusCompleted).
		Scan(out).Error
}

const referralSourceExpr = "COALESCE(NULLIF(referral_source, ''), 'other')"

func referralCounts(tx *gorm.DB) ([]ReferralCount, error) {
	var rows []ReferralCount
	err := tx.Model(&models.Student{}).
		Select(referralSourceExpr + " AS source, COUNT(*) AS count").
		Group(referralSourceExpr).
		Order("count desc, source asc").
		Scan(&rows).Error
	return rows, err
}

// popularInstruments counts non-cancelled lessons per instrument. Mixed
// lessons are left out.
func popularInstruments(tx *gorm.DB) ([]InstrumentCount, error) {
	var rows []InstrumentCount
	err := tx.Model(&models.Lesson{}).
		Select("instrument, COUNT(*) AS lesson_count").
		Where("instrument <> ? AND status <> ?", models.InstrumentMixed, models.LessonStatusCancelled).
		Group("instrument").
		Order("lesson_count desc, instrument asc").
		Scan(&rows).Error
	return rows, err
}

const paymentInstrumentExpr = "COALESCE(lessons.instrument, recurring_lessons.instrument, 'unknown')"

func revenueByInstrument(tx *gorm.DB) ([]InstrumentRevenue, error) {
	var rows []InstrumentRevenue
	err := tx.Model(&models.Payment{}).
		Select(paymentInstrumentExpr+" AS instrument, COALESCE(SUM(payments.amount), 0) AS revenue, COUNT(*) AS lesson_count").
		Joins("LEFT JOIN lessons ON lessons.id = payments.lesson_id").
		Joins("LEFT JOIN recurring_lessons ON recurring_lessons.id = payments.recurring_lesson_id").
		Where("payments.status = ?", models.PaymentStatusCompleted).
		Group(paymentInstrumentExpr).
		Order("revenue desc, instrument asc").
		Scan(&rows).Error
	return rows, err
}

func revenueByStudent(tx *gorm.DB) ([]StudentRevenue, error) {
	var rows []StudentRevenue
	err := tx.Model(&models.Payment{}).
		Select("payments.student_id AS student_id, users.name AS student_name, COALESCE(SUM(payments.amount), 0) AS revenue").
		Joins("JOIN students ON students.id = payments.student_id").
		Joins("JOIN users ON users.id = students.user_id").
		Where("payments.status = ?", models.PaymentStatusCompleted).
		Group("payments.student_id, users.name").
		Order("revenue desc, student_name asc").
		Scan(&rows).Error
	return rows, err
}

// repeatStudentCount counts distinct students with more than one upcoming
// or completed lesson.
func repeatStudentCount(tx *gorm.DB) (int64, error) {
	repeaters := tx.Model(&models.Lesson{}).
		Select("student_id").
		Where("status IN ?", repeatStatuses).
		Group("student_id").
		Having("COUNT(*) > 1")

	var n int64
	err := tx.Table("(?) AS repeaters", repeaters).Count(&n).Error
	return n, err
}

func userStats(tx *gorm.DB, now time.Time) (UserStats, error) {
	var stats UserStats
	if err := tx.Model(&models.User{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := tx.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&stats.Teachers).Error; err != nil {
		return stats, err
	}
	if err := tx.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&stats.Students).Error; err != nil {
		return stats, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	err := tx.Model(&models.Lesson{}).
		Where("date >= ? AND date < ? AND status <> ?",
			monthStart.Format(models.DateLayout), monthStart.AddDate(0, 1, 0).Format(models.DateLayout),
			models.LessonStatusCancelled).
		Distinct("student_id").
		Count(&stats.ActiveThisMonth).Error
	return stats, err
}
