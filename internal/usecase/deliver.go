package usecase

import (
	"context"
	"errors"

	"remindly/internal/domain"
	"remindly/internal/ports"

	"github.com/rs/zerolog/log"
)

// Deliverer executes one delivery attempt for a due job. The email is
// attempted before the status is persisted as SENT, so a crash between
// the two can produce a duplicate email on redelivery but never a SENT
// row without a prior send attempt. The idempotent UpdateStatus keeps
// duplicate invocations from flapping the status.
type Deliverer struct {
	Store  ports.ReminderStore
	Sender ports.NotificationSender
}

func (d Deliverer) Deliver(ctx context.Context, job domain.ReminderJob) error {
	r, u, err := d.Store.GetWithUser(ctx, job.ReminderID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// A reminder without an owner is as undeliverable as a
			// missing reminder.
			err = domain.ErrReminderNotFound
		}
		return err
	}

	res, sendErr := d.Sender.Send(ctx, u.Email, r.Title)
	if sendErr != nil || !res.Success {
		if uerr := d.Store.UpdateStatus(ctx, r.ID, domain.StatusFailed); uerr != nil {
			log.Ctx(ctx).Err(uerr).Str("reminder_id", r.ID).Msg("failed to mark reminder FAILED")
		}
		if sendErr != nil {
			return &domain.DeliveryError{Recipient: u.Email, Message: sendErr.Error()}
		}
		return &domain.DeliveryError{Recipient: u.Email, Message: res.Message}
	}

	if err := d.Store.UpdateStatus(ctx, r.ID, domain.StatusSent); err != nil {
		return err
	}

	log.Ctx(ctx).Info().
		Str("reminder_id", r.ID).
		Str("recipient", u.Email).
		Msg("reminder delivered")
	return nil
}
