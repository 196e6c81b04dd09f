package ports

import (
	"context"
	"time"

	"remindly/internal/domain"
)

// Queue is the delayed job queue. Delivery is at-least-once: a consumer
// crash between Claim and Ack causes redelivery, so handlers must
// tolerate duplicate invocations for the same reminder.
type Queue interface {
	// EnqueueDelayed registers the job to become visible at job.FireAt.
	// Re-enqueueing the same reminder ID overwrites the previous entry,
	// which keeps startup recovery idempotent.
	EnqueueDelayed(ctx context.Context, job domain.ReminderJob) error
	// Claim blocks up to the given duration waiting for a due job.
	// A nil job with nil error means the wait timed out.
	Claim(ctx context.Context, consumer string, block time.Duration) (*domain.ReminderJob, string /*streamID*/, error)
	Ack(ctx context.Context, streamID string) error
	// RetryLater acks the delivered message and re-schedules the job
	// for a later attempt.
	RetryLater(ctx context.Context, streamID string, job domain.ReminderJob, at time.Time) error
	// ToDLQ parks the job on the dead-letter stream and acks it.
	ToDLQ(ctx context.Context, streamID string, job domain.ReminderJob, reason string) error
}

// Scheduler moves due jobs from the scheduled set into the live stream.
type Scheduler interface {
	Run(ctx context.Context) error
}

type ReminderStore interface {
	Create(ctx context.Context, r *domain.Reminder) error
	Get(ctx context.Context, id string) (*domain.Reminder, error)
	// GetWithUser loads the reminder joined with its owning user, for
	// the recipient address.
	GetWithUser(ctx context.Context, id string) (*domain.Reminder, *domain.User, error)
	// UpdateStatus is idempotent: a transition into the current status
	// succeeds without touching the row. SENT is terminal.
	UpdateStatus(ctx context.Context, id string, status domain.ReminderStatus) error
	ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error)
	// ListPending feeds startup recovery of the scheduled-job set.
	ListPending(ctx context.Context) ([]domain.Reminder, error)
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SendResult is the structured outcome of a notification attempt. A
// refusal from the provider is a failed result, not an error; errors
// are reserved for transport faults.
type SendResult struct {
	Success bool
	Message string
}

type NotificationSender interface {
	Send(ctx context.Context, recipient, subject string) (SendResult, error)
}
