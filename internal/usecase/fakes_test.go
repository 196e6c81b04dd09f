package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"remindly/internal/domain"
	"remindly/internal/ports"
)

type fakeStore struct {
	mu        sync.Mutex
	reminders map[string]*domain.Reminder
	users     map[string]*domain.User
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reminders: map[string]*domain.Reminder{},
		users:     map[string]*domain.User{},
	}
}

func (s *fakeStore) addUser(u domain.User) {
	s.users[u.ID] = &u
}

func (s *fakeStore) Create(ctx context.Context, r *domain.Reminder) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reminders[r.ID] = &cp
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, domain.ErrReminderNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetWithUser(ctx context.Context, id string) (*domain.Reminder, *domain.User, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[r.UserID]
	if !ok {
		return nil, nil, domain.ErrUserNotFound
	}
	cu := *u
	return r, &cu, nil
}

// Mirrors the real store's forward-only idempotent transition rule.
func (s *fakeStore) UpdateStatus(ctx context.Context, id string, status domain.ReminderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return domain.ErrReminderNotFound
	}
	if r.Status == status || r.Status == domain.StatusSent {
		return nil
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Reminder
	for _, r := range s.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListPending(ctx context.Context) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Reminder
	for _, r := range s.reminders {
		if r.Status == domain.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

var _ ports.ReminderStore = (*fakeStore)(nil)

type claimed struct {
	job      domain.ReminderJob
	streamID string
}

type fakeQueue struct {
	mu         sync.Mutex
	enqueued   []domain.ReminderJob
	pending    []claimed
	acked      []string
	retried    []domain.ReminderJob
	deadJobs   []domain.ReminderJob
	enqueueErr error
	drained    func()
}

func (q *fakeQueue) EnqueueDelayed(ctx context.Context, job domain.ReminderJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *fakeQueue) Claim(ctx context.Context, consumer string, block time.Duration) (*domain.ReminderJob, string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		if q.drained != nil {
			q.drained()
		}
		return nil, "", nil
	}
	c := q.pending[0]
	q.pending = q.pending[1:]
	job := c.job
	return &job, c.streamID, nil
}

func (q *fakeQueue) Ack(ctx context.Context, streamID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, streamID)
	return nil
}

func (q *fakeQueue) RetryLater(ctx context.Context, streamID string, job domain.ReminderJob, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, streamID)
	q.retried = append(q.retried, job)
	return nil
}

func (q *fakeQueue) ToDLQ(ctx context.Context, streamID string, job domain.ReminderJob, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, streamID)
	q.deadJobs = append(q.deadJobs, job)
	return nil
}

var _ ports.Queue = (*fakeQueue)(nil)

type fakeSender struct {
	mu      sync.Mutex
	calls   []string
	result  ports.SendResult
	sendErr error
}

func (s *fakeSender) Send(ctx context.Context, recipient, subject string) (ports.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recipient)
	if s.sendErr != nil {
		return ports.SendResult{}, s.sendErr
	}
	return s.result, nil
}

var _ ports.NotificationSender = (*fakeSender)(nil)

var errBrokerDown = errors.New("broker unreachable")
