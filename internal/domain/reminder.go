package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadTime is subtracted from a reminder's target time to compute when
// the notification job fires.
const LeadTime = 10 * time.Minute

type ReminderStatus string

const (
	StatusPending ReminderStatus = "PENDING"
	StatusSent    ReminderStatus = "SENT"
	StatusFailed  ReminderStatus = "FAILED"
)

type Reminder struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string         `json:"userId" gorm:"type:uuid;index;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Time        time.Time      `json:"time" gorm:"not null"`
	Status      ReminderStatus `json:"status" gorm:"not null;default:PENDING"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func NewReminder(userID, title, description string, at time.Time) Reminder {
	return Reminder{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Time:        at,
		Status:      StatusPending,
	}
}

// FireAt is the absolute instant the reminder's job becomes due.
func (r Reminder) FireAt() time.Time {
	return r.Time.Add(-LeadTime)
}
