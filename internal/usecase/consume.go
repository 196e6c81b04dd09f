package usecase

import (
	"context"
	"errors"
	"time"

	"remindly/internal/domain"
	"remindly/internal/ports"
	"remindly/pkg/backoff"

	"github.com/rs/zerolog/log"
)

type Handler func(ctx context.Context, job domain.ReminderJob) error

// Consumer is the worker loop: claim a due job, run the handler, then
// ack, retry with backoff, or dead-letter. The queue owns the retry
// policy; the handler only reports success or failure per attempt. No
// error escapes the loop short of context cancellation, so one bad job
// never takes the process down.
type Consumer struct {
	Queue        ports.Queue
	ConsumerName string
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func (c Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, streamID, err := c.Queue.Claim(ctx, c.ConsumerName, 5*time.Second)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("failed to claim job")
			continue
		}
		if job == nil {
			continue
		}

		err = handle(ctx, *job)
		if err == nil {
			if aerr := c.Queue.Ack(ctx, streamID); aerr != nil {
				log.Ctx(ctx).Err(aerr).Str("reminder_id", job.ReminderID).Msg("failed to ack job")
			}
			continue
		}

		// A missing reminder will not appear on retry; park it.
		if errors.Is(err, domain.ErrReminderNotFound) {
			log.Ctx(ctx).Warn().Str("reminder_id", job.ReminderID).Msg("reminder missing, sending job to DLQ")
			if derr := c.Queue.ToDLQ(ctx, streamID, *job, err.Error()); derr != nil {
				log.Ctx(ctx).Err(derr).Str("reminder_id", job.ReminderID).Msg("failed to dead-letter job")
			}
			continue
		}

		if job.Attempts+1 >= job.MaxAttempts {
			log.Ctx(ctx).Warn().
				Str("reminder_id", job.ReminderID).
				Int("attempts", job.Attempts+1).
				Msg("job exhausted retries, sending to DLQ")
			if derr := c.Queue.ToDLQ(ctx, streamID, *job, err.Error()); derr != nil {
				log.Ctx(ctx).Err(derr).Str("reminder_id", job.ReminderID).Msg("failed to dead-letter job")
			}
			continue
		}

		job.Attempts++
		delay := backoff.ExponentialJitter(c.BaseBackoff, c.MaxBackoff, job.Attempts)
		log.Ctx(ctx).Warn().
			Err(err).
			Str("reminder_id", job.ReminderID).
			Int("attempt", job.Attempts).
			Dur("retry_in", delay).
			Msg("delivery attempt failed, rescheduling")
		if rerr := c.Queue.RetryLater(ctx, streamID, *job, time.Now().Add(delay)); rerr != nil {
			log.Ctx(ctx).Err(rerr).Str("reminder_id", job.ReminderID).Msg("failed to reschedule job")
		}
	}
}
