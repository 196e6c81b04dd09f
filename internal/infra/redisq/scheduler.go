package redisq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"remindly/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ ports.Scheduler = (*Scheduler)(nil)

// Scheduler moves due members of the scheduled ZSET into the consumer
// stream. Jobs become visible at most one tick after their fire time;
// with a 10 minute lead time a one second tick is well inside the
// tolerance.
type Scheduler struct {
	C        *Client
	Interval time.Duration
}

func NewScheduler(c *Client, interval time.Duration) *Scheduler {
	return &Scheduler{C: c, Interval: interval}
}

func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		if err := s.moveDue(ctx); err != nil {
			log.Ctx(ctx).Err(err).Msg("failed to promote due jobs")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) moveDue(ctx context.Context) error {
	ids, err := s.C.Rdb.ZRangeByScore(ctx, s.C.Cfg.ScheduledZSet, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmtFloat(nowMs()),
		Offset: 0,
		Count:  128,
	}).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		job, err := s.C.loadJob(ctx, id)
		if err != nil {
			log.Ctx(ctx).Err(err).Str("reminder_id", id).Msg("failed to load scheduled job")
			continue
		}
		if job == nil {
			// Orphaned ZSET member; drop it.
			_ = s.C.Rdb.ZRem(ctx, s.C.Cfg.ScheduledZSet, id).Err()
			continue
		}

		b, _ := json.Marshal(job)
		if err := s.C.Rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: s.C.Cfg.StreamKey,
			Values: map[string]interface{}{"job": b},
		}).Err(); err != nil {
			log.Ctx(ctx).Err(err).Str("reminder_id", id).Msg("failed to move job to stream")
			continue
		}
		// Remove only after the stream write lands, so a crash in
		// between redelivers rather than loses the job.
		_ = s.C.Rdb.ZRem(ctx, s.C.Cfg.ScheduledZSet, id).Err()
	}
	return nil
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
