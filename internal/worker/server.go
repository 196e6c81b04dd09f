// internal/worker/server.go
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remindly/internal/config"
	"remindly/internal/domain"
	"remindly/internal/infra/redisq"
	"remindly/internal/mail"
	"remindly/internal/ports"
	"remindly/internal/store"
	"remindly/internal/usecase"

	"github.com/rs/zerolog/log"
)

type Config struct {
	ConsumerName string
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func Run(cfg Config) error {
	appCfg := config.Load()
	cli := redisq.New(appCfg.Redis)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Init(ctx); err != nil {
		return err
	}

	db, err := store.Open(appCfg.Database)
	if err != nil {
		return err
	}
	reminders := store.NewReminderStore(db)

	if err := recoverPending(ctx, reminders, cli); err != nil {
		return err
	}

	sched := redisq.NewScheduler(cli, 1*time.Second)
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("scheduler stopped with error")
		}
	}()

	deliverer := usecase.Deliverer{
		Store:  reminders,
		Sender: mail.NewSendGridSender(appCfg.Mail),
	}

	consumer := usecase.Consumer{
		Queue:        cli,
		ConsumerName: cfg.ConsumerName,
		BaseBackoff:  cfg.BaseBackoff,
		MaxBackoff:   cfg.MaxBackoff,
	}

	return consumer.Run(ctx, deliverer.Deliver)
}

// recoverPending re-derives the scheduled-job set from durable state:
// every PENDING reminder gets its job re-added to the queue. ZADD by
// member makes this safe to repeat across restarts; reminders whose
// fire time already passed are picked up by the next scheduler tick.
func recoverPending(ctx context.Context, reminders ports.ReminderStore, q ports.Queue) error {
	pending, err := reminders.ListPending(ctx)
	if err != nil {
		return err
	}

	for _, r := range pending {
		if err := q.EnqueueDelayed(ctx, domain.NewReminderJob(r.ID, r.FireAt())); err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		log.Ctx(ctx).Info().Int("count", len(pending)).Msg("recovered pending reminder jobs")
	}
	return nil
}
