package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/notifications"
)

type lessonLister interface {
	UpcomingLessonsOn(ctx context.Context, date string) ([]models.Lesson, error)
}

// LessonReminderJob emails both participants of every lesson booked for
// the next day.
type LessonReminderJob struct {
	lessons lessonLister
	mailer  *notifications.BrevoService
	timeout time.Duration
	now     func() time.Time
}

func NewLessonReminderJob(lessons lessonLister, mailer *notifications.BrevoService) *LessonReminderJob {
	return &LessonReminderJob{
		lessons: lessons,
		mailer:  mailer,
		timeout: time.Minute,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (j *LessonReminderJob) Run() {
	log.Println("Running job: SendLessonReminders...")
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if sent := j.run(ctx); sent > 0 {
		log.Printf("Sent reminders for %d lesson(s)", sent)
	}
}

func (j *LessonReminderJob) run(ctx context.Context) int {
	tomorrow := j.now().AddDate(0, 0, 1).Format("2006-01-02")
	lessons, err := j.lessons.UpcomingLessonsOn(ctx, tomorrow)
	if err != nil {
		log.Printf("Error checking for upcoming lessons: %v", err)
		return 0
	}

	for _, lesson := range lessons {
		student, teacher := lesson.Student.User, lesson.Teacher.User
		msg := notifications.LessonReminder(student.Name, lesson.Instrument, lesson.Date, lesson.Time, lesson.LessonType)
		go j.mailer.Send(notifications.Recipient{Name: student.Name, Email: student.Email}, msg)

		msg = notifications.LessonReminder(teacher.Name, lesson.Instrument, lesson.Date, lesson.Time, lesson.LessonType)
		go j.mailer.Send(notifications.Recipient{Name: teacher.Name, Email: teacher.Email}, msg)
	}
	return len(lessons)
}
