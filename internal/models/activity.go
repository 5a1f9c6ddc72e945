package models

import (
	"time"
)

// ActivityType classifies an audit record.
type ActivityType string

const (
	ActivityCreate            ActivityType = "CREATE"
	ActivityUpdate            ActivityType = "UPDATE"
	ActivityDelete            ActivityType = "DELETE"
	ActivityImport            ActivityType = "IMPORT"
	ActivityStatusChange      ActivityType = "STATUS_CHANGE"
	ActivityAssignment        ActivityType = "ASSIGNMENT"
	ActivityComment           ActivityType = "COMMENT"
	ActivityLeadCreated       ActivityType = "LEAD_CREATED"
	ActivityReminderSet       ActivityType = "REMINDER_SET"
	ActivityReminderCompleted ActivityType = "REMINDER_COMPLETED"
)

// Activity is one immutable audit record of a state-changing operation.
// Collection: activities. Activities are append-only; the only deletions are
// the cascades when a lead or a whole tenant is removed.
type Activity struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	Type      ActivityType           `bson:"type" json:"type"`
	UserID    string                 `bson:"userId" json:"userId"`
	AdminID   string                 `bson:"adminId" json:"adminId"`
	LeadRef   string                 `bson:"leadId,omitempty" json:"leadId,omitempty"`
	Details   string                 `bson:"details" json:"details"`
	Metadata  map[string]interface{} `bson:"metadata" json:"metadata"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
}

// ActivityDayCount is one bucket of the per-day dashboard aggregation.
type ActivityDayCount struct {
	Day   string       `bson:"day" json:"day"` // YYYY-MM-DD
	Type  ActivityType `bson:"type" json:"type"`
	Count int64        `bson:"count" json:"count"`
}
