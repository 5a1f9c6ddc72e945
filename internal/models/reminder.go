package models

import (
	"fmt"
	"time"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderCompleted ReminderStatus = "COMPLETED"
	ReminderSnoozed   ReminderStatus = "SNOOZED"
	ReminderDismissed ReminderStatus = "DISMISSED"
)

// Reminder is a follow-up scheduled on a lead. Collection: reminders.
// ReminderTime is an HH:mm wall-clock string combined with ReminderDate at
// read time; see DueAt.
type Reminder struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	LeadRef      string         `bson:"leadId" json:"leadId"`
	AssignedTo   string         `bson:"assignedTo" json:"assignedTo"`
	AdminID      string         `bson:"adminId" json:"adminId"`
	Note         string         `bson:"note,omitempty" json:"note,omitempty"`
	ReminderDate time.Time      `bson:"reminderDate" json:"reminderDate"`
	ReminderTime string         `bson:"reminderTime" json:"reminderTime"`
	Status       ReminderStatus `bson:"status" json:"status"`
	SnoozedUntil *time.Time     `bson:"snoozedUntil,omitempty" json:"snoozedUntil,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// DueAt combines ReminderDate and the HH:mm ReminderTime into the instant the
// reminder fires, in UTC.
func (r *Reminder) DueAt() (time.Time, error) {
	t, err := time.Parse("15:04", r.ReminderTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder time %q: %w", r.ReminderTime, err)
	}
	d := r.ReminderDate.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
