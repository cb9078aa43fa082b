package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/queue"
	"github.com/anjiri1684/freelance_music/services"
	"github.com/google/uuid"
)

type recurringBiller interface {
	DueRecurringLessons(ctx context.Context, asOf time.Time) ([]models.RecurringLesson, error)
	ConfirmRecurringLesson(ctx context.Context, id uuid.UUID) (*services.RecurringConfirmation, error)
}

// RecurringBillingJob charges every active recurring lesson whose next
// occurrence has arrived. Each run confirms one cycle per lesson; a lesson
// that fell several cycles behind catches up over the following runs.
type RecurringBillingJob struct {
	biller  recurringBiller
	mailer  *notifications.BrevoService
	events  *queue.Publisher
	timeout time.Duration
	now     func() time.Time
}

func NewRecurringBillingJob(biller recurringBiller, mailer *notifications.BrevoService, events *queue.Publisher) *RecurringBillingJob {
	return &RecurringBillingJob{
		biller:  biller,
		mailer:  mailer,
		events:  events,
		timeout: 2 * time.Minute,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run satisfies cron.Job.
func (j *RecurringBillingJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	confirmed, failed := j.run(ctx)
	if confirmed > 0 || failed > 0 {
		log.Printf("Recurring billing: %d confirmed, %d failed", confirmed, failed)
	}
}

func (j *RecurringBillingJob) run(ctx context.Context) (confirmed, failed int) {
	due, err := j.biller.DueRecurringLessons(ctx, j.now())
	if err != nil {
		log.Printf("Error loading due recurring lessons: %v", err)
		return 0, 0
	}

	for _, lesson := range due {
		confirmation, err := j.biller.ConfirmRecurringLesson(ctx, lesson.ID)
		if err != nil {
			log.Printf("🔥 Failed to confirm recurring lesson %s: %v", lesson.ID, err)
			failed++
			continue
		}
		confirmed++

		if confirmation.Payment != nil {
			if err := j.events.PaymentRecorded(ctx, confirmation.Payment); err != nil {
				log.Printf("Failed to publish payment %s: %v", confirmation.TransactionID, err)
			}
		}
		if lesson.Student != nil {
			msg := notifications.RecurringCharged(lesson.Student.User.Name, confirmation.LessonDate,
				confirmation.NextLessonDate, confirmation.TransactionID, confirmation.AmountCharged)
			go j.mailer.Send(notifications.Recipient{Name: lesson.Student.User.Name, Email: lesson.Student.User.Email}, msg)
		}
	}
	return confirmed, failed
}
