package models

import (
	"time"
)

// Comment is one ordered note on a lead. Collection: comments.
type Comment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	LeadRef   string    `bson:"leadId" json:"leadId"`
	AdminID   string    `bson:"adminId" json:"adminId"`
	Content   string    `bson:"content" json:"content"`
	CreatedBy Snapshot  `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
