package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"remindly/internal/domain"
	"remindly/internal/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.Queue = (*Client)(nil)

func jobKey(reminderID string) string { return "job:" + reminderID }

// EnqueueDelayed writes the job hash first, then adds the reminder ID
// to the scheduled ZSET scored by fire time. ZADD overwrites an
// existing member, so re-enqueueing the same reminder is safe.
func (c *Client) EnqueueDelayed(ctx context.Context, job domain.ReminderJob) error {
	if job.MaxAttempts == 0 {
		job.MaxAttempts = domain.DefaultMaxAttempts
	}
	if err := c.saveJob(ctx, job); err != nil {
		return err
	}
	score := float64(job.FireAt.UnixMilli())
	return c.Rdb.ZAdd(ctx, c.Cfg.ScheduledZSet, redis.Z{Score: score, Member: job.ReminderID}).Err()
}

func (c *Client) Claim(ctx context.Context, consumer string, block time.Duration) (*domain.ReminderJob, string, error) {
	res, err := c.Rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.Cfg.Group,
		Consumer: consumer,
		Streams:  []string{c.Cfg.StreamKey, ">"},
		Count:    1,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}

	if len(res) == 0 || len(res[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := res[0].Messages[0]
	raw := msg.Values["job"]
	var job domain.ReminderJob
	switch v := raw.(type) {
	case string:
		err = json.Unmarshal([]byte(v), &job)
	case []byte:
		err = json.Unmarshal(v, &job)
	default:
		return nil, "", fmt.Errorf("unexpected job payload type: %T", v)
	}
	if err != nil {
		return nil, "", fmt.Errorf("malformed job payload: %w", err)
	}
	return &job, msg.ID, nil
}

func (c *Client) Ack(ctx context.Context, streamID string) error {
	return c.Rdb.XAck(ctx, c.Cfg.StreamKey, c.Cfg.Group, streamID).Err()
}

// RetryLater removes the message from the pending entries list and puts
// the job back on the scheduled set for a later attempt.
func (c *Client) RetryLater(ctx context.Context, streamID string, job domain.ReminderJob, at time.Time) error {
	if err := c.Ack(ctx, streamID); err != nil {
		return err
	}
	job.FireAt = at
	return c.EnqueueDelayed(ctx, job)
}

func (c *Client) ToDLQ(ctx context.Context, streamID string, job domain.ReminderJob, reason string) error {
	b, _ := json.Marshal(struct {
		domain.ReminderJob
		Reason string `json:"reason"`
	}{job, reason})
	if err := c.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.Cfg.DLQStreamKey,
		Values: map[string]interface{}{"job": b},
	}).Err(); err != nil {
		return err
	}

	if err := c.Ack(ctx, streamID); err != nil {
		return err
	}
	return c.Rdb.Del(ctx, jobKey(job.ReminderID)).Err()
}

func (c *Client) saveJob(ctx context.Context, job domain.ReminderJob) error {
	m := map[string]any{
		"fire_at":      job.FireAt.UnixMilli(),
		"attempts":     job.Attempts,
		"max_attempts": job.MaxAttempts,
	}
	return c.Rdb.HSet(ctx, jobKey(job.ReminderID), m).Err()
}

func (c *Client) loadJob(ctx context.Context, reminderID string) (*domain.ReminderJob, error) {
	h, err := c.Rdb.HGetAll(ctx, jobKey(reminderID)).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}

	job := &domain.ReminderJob{ReminderID: reminderID}
	if ms, err := parseInt64(h["fire_at"]); err == nil {
		job.FireAt = time.UnixMilli(ms)
	}
	if n, err := parseInt64(h["attempts"]); err == nil {
		job.Attempts = int(n)
	}
	if n, err := parseInt64(h["max_attempts"]); err == nil {
		job.MaxAttempts = int(n)
	}
	return job, nil
}
