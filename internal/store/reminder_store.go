package store

import (
	"context"
	"errors"
	"fmt"

	"remindly/internal/domain"
	"remindly/internal/ports"

	"gorm.io/gorm"
)

var _ ports.ReminderStore = (*ReminderStore)(nil)

type ReminderStore struct {
	db *gorm.DB
}

func NewReminderStore(db *gorm.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

func (s *ReminderStore) Create(ctx context.Context, r *domain.Reminder) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *ReminderStore) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	var r domain.Reminder
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReminderStore) GetWithUser(ctx context.Context, id string) (*domain.Reminder, *domain.User, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var u domain.User
	err = s.db.WithContext(ctx).First(&u, "id = ?", r.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return r, &u, nil
}

// UpdateStatus applies a forward-only transition. Writing the current
// status again is a no-op success, as is any write against a SENT row.
// FAILED -> SENT is allowed so a queue retry that eventually delivers
// can record its success. The guard lives in the UPDATE itself so
// concurrent workers cannot interleave a read-then-write.
func (s *ReminderStore) UpdateStatus(ctx context.Context, id string, status domain.ReminderStatus) error {
	if status == domain.StatusPending {
		return fmt.Errorf("cannot transition reminder %s back to %s", id, status)
	}

	res := s.db.WithContext(ctx).Model(&domain.Reminder{}).
		Where("id = ? AND status <> ? AND status <> ?", id, status, domain.StatusSent).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing updated: either the transition was already applied (fine)
	// or the row does not exist.
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Reminder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (s *ReminderStore) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time asc").
		Find(&reminders).Error
	return reminders, err
}

func (s *ReminderStore) ListPending(ctx context.Context) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Find(&reminders).Error
	return reminders, err
}
