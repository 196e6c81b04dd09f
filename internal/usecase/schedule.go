package usecase

import (
	"context"
	"strings"
	"time"

	"remindly/internal/domain"
	"remindly/internal/ports"

	"github.com/rs/zerolog/log"
)

// Dispatcher turns a reminder request into a persisted reminder plus a
// delayed job firing LeadTime before the target moment.
type Dispatcher struct {
	Store ports.ReminderStore
	Queue ports.Queue
}

type ScheduleInput struct {
	UserID      string
	Title       string
	Description string
	Time        time.Time
}

// Schedule validates the request before writing anything: a fire time
// that is not in the future is rejected with no row persisted. Only
// after the PENDING row is written is the job enqueued; if the broker
// is unreachable at that point the row is marked FAILED and the error
// surfaces to the caller. There is no automatic re-enqueue.
func (d Dispatcher) Schedule(ctx context.Context, in ScheduleInput) (*domain.Reminder, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Time.IsZero() {
		return nil, &domain.ValidationError{Field: "time", Reason: "must be a valid timestamp"}
	}

	fireAt := in.Time.Add(-domain.LeadTime)
	if !fireAt.After(time.Now()) {
		return nil, domain.ErrTimeAlreadyPassed
	}

	r := domain.NewReminder(in.UserID, in.Title, in.Description, in.Time)
	if err := d.Store.Create(ctx, &r); err != nil {
		return nil, err
	}

	job := domain.NewReminderJob(r.ID, fireAt)
	if err := d.Queue.EnqueueDelayed(ctx, job); err != nil {
		// The row already exists; leave a durable FAILED record for
		// manual reprocessing rather than silently losing the intent.
		if uerr := d.Store.UpdateStatus(ctx, r.ID, domain.StatusFailed); uerr != nil {
			log.Ctx(ctx).Err(uerr).Str("reminder_id", r.ID).Msg("failed to mark reminder FAILED after enqueue error")
		}
		return nil, &domain.SchedulingError{ReminderID: r.ID, Err: err}
	}

	log.Ctx(ctx).Info().
		Str("reminder_id", r.ID).
		Time("fire_at", fireAt).
		Dur("delay", time.Until(fireAt)).
		Msg("reminder scheduled")

	return &r, nil
}
