package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"remindly/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) domain.User {
	t.Helper()
	u := domain.NewUser("Alice", "alice@example.com", "hash")
	if err := NewUserStore(db).Create(context.Background(), &u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func TestReminderCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	r := domain.NewReminder(u.ID, "Linear algebra", "chapter 4", time.Now().Add(time.Hour).UTC())
	if err := s.Create(ctx, &r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != r.Title || got.UserID != u.ID || got.Status != domain.StatusPending {
		t.Errorf("Get returned %+v, want title=%q user=%s status=PENDING", got, r.Title, u.ID)
	}

	if _, err := s.Get(ctx, "missing-id"); !errors.Is(err, domain.ErrReminderNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrReminderNotFound", err)
	}
}

func TestGetWithUserJoinsOwner(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	r := domain.NewReminder(u.ID, "Physics", "", time.Now().Add(time.Hour))
	if err := s.Create(ctx, &r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	gotR, gotU, err := s.GetWithUser(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetWithUser failed: %v", err)
	}
	if gotR.ID != r.ID || gotU.Email != "alice@example.com" {
		t.Errorf("GetWithUser = (%s, %s), want (%s, alice@example.com)", gotR.ID, gotU.Email, r.ID)
	}
}

func TestUpdateStatusIdempotent(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	r := domain.NewReminder(u.ID, "Idempotence", "", time.Now().Add(time.Hour))
	if err := s.Create(ctx, &r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.UpdateStatus(ctx, r.ID, domain.StatusSent); err != nil {
		t.Fatalf("first UpdateStatus(SENT) failed: %v", err)
	}
	// The second identical transition is a no-op success.
	if err := s.UpdateStatus(ctx, r.ID, domain.StatusSent); err != nil {
		t.Fatalf("second UpdateStatus(SENT) failed: %v", err)
	}

	got, _ := s.Get(ctx, r.ID)
	if got.Status != domain.StatusSent {
		t.Errorf("status = %s, want SENT", got.Status)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	// SENT is terminal: a later FAILED write is swallowed.
	r1 := domain.NewReminder(u.ID, "terminal", "", time.Now().Add(time.Hour))
	_ = s.Create(ctx, &r1)
	_ = s.UpdateStatus(ctx, r1.ID, domain.StatusSent)
	if err := s.UpdateStatus(ctx, r1.ID, domain.StatusFailed); err != nil {
		t.Fatalf("UpdateStatus against SENT row errored: %v", err)
	}
	got, _ := s.Get(ctx, r1.ID)
	if got.Status != domain.StatusSent {
		t.Errorf("status = %s, SENT must not regress", got.Status)
	}

	// FAILED -> SENT is allowed: a queue retry that finally delivers.
	r2 := domain.NewReminder(u.ID, "retry wins", "", time.Now().Add(time.Hour))
	_ = s.Create(ctx, &r2)
	_ = s.UpdateStatus(ctx, r2.ID, domain.StatusFailed)
	if err := s.UpdateStatus(ctx, r2.ID, domain.StatusSent); err != nil {
		t.Fatalf("FAILED->SENT errored: %v", err)
	}
	got, _ = s.Get(ctx, r2.ID)
	if got.Status != domain.StatusSent {
		t.Errorf("status = %s, want SENT after successful retry", got.Status)
	}

	// No path leads back to PENDING.
	if err := s.UpdateStatus(ctx, r2.ID, domain.StatusPending); err == nil {
		t.Error("transition back to PENDING must be rejected")
	}

	if err := s.UpdateStatus(ctx, "missing-id", domain.StatusSent); !errors.Is(err, domain.ErrReminderNotFound) {
		t.Errorf("UpdateStatus(missing) err = %v, want ErrReminderNotFound", err)
	}
}

func TestListByUserOrdersByTimeAscending(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	base := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	// Insert out of order.
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		r := domain.NewReminder(u.ID, "session", "", base.Add(offset))
		if err := s.Create(ctx, &r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	other := domain.NewUser("Bob", "bob@example.com", "hash")
	_ = NewUserStore(db).Create(ctx, &other)
	foreign := domain.NewReminder(other.ID, "not mine", "", base)
	_ = s.Create(ctx, &foreign)

	got, err := s.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d reminders, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time.Before(got[i-1].Time) {
			t.Errorf("reminders out of order at %d: %v before %v", i, got[i].Time, got[i-1].Time)
		}
	}
}

func TestListPendingFiltersTerminalStatuses(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db)
	s := NewReminderStore(db)
	ctx := context.Background()

	pending := domain.NewReminder(u.ID, "pending", "", time.Now().Add(time.Hour))
	sent := domain.NewReminder(u.ID, "sent", "", time.Now().Add(time.Hour))
	_ = s.Create(ctx, &pending)
	_ = s.Create(ctx, &sent)
	_ = s.UpdateStatus(ctx, sent.ID, domain.StatusSent)

	got, err := s.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Errorf("ListPending = %+v, want only %s", got, pending.ID)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	u1 := domain.NewUser("Alice", "alice@example.com", "hash")
	if err := users.Create(ctx, &u1); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	u2 := domain.NewUser("Other Alice", "alice@example.com", "hash2")
	if err := users.Create(ctx, &u2); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("duplicate create err = %v, want ErrEmailTaken", err)
	}

	got, err := users.GetByEmail(ctx, "alice@example.com")
	if err != nil || got.Name != "Alice" {
		t.Errorf("GetByEmail = (%+v, %v), want Alice", got, err)
	}
	if _, err := users.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByEmail(missing) err = %v, want ErrUserNotFound", err)
	}
}
