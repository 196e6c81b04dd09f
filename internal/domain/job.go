package domain

import "time"

// ReminderJob is the unit of work the delayed queue carries. It holds a
// weak reference to the reminder; the queue never owns reminder data.
type ReminderJob struct {
	ReminderID  string    `json:"reminder_id"`
	FireAt      time.Time `json:"fire_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

const DefaultMaxAttempts = 5

func NewReminderJob(reminderID string, fireAt time.Time) ReminderJob {
	return ReminderJob{
		ReminderID:  reminderID,
		FireAt:      fireAt,
		MaxAttempts: DefaultMaxAttempts,
	}
}
