package models

import (
	"time"
)

// Well-known lead statuses. Status is stored as a string and tenants may use
// custom pipeline stages, so these are defaults, not a closed enum.
const (
	LeadStatusNew        = "NEW"
	LeadStatusContacted  = "CONTACTED"
	LeadStatusInProgress = "IN_PROGRESS"
	LeadStatusQualified  = "QUALIFIED"
	LeadStatusLost       = "LOST"
	LeadStatusWon        = "WON"
)

// Lead is a sales contact owned by exactly one tenant. Collection: leads.
//
// LeadID is the short human-friendly numeric identifier, unique across the
// whole system (a unique sparse index is the final authority; see the
// generator in services). Email is unique per tenant via a compound index on
// (email, adminId).
type Lead struct {
	ID        string `bson:"_id,omitempty" json:"id"`
	LeadID    int    `bson:"leadId,omitempty" json:"leadId,omitempty"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	Status    string `bson:"status" json:"status"`
	Source    string `bson:"source,omitempty" json:"source,omitempty"`
	Comments  string `bson:"comments,omitempty" json:"comments,omitempty"`

	// AssignedTo is always a plain user id reference; populated views are a
	// read-time projection, never a second stored shape.
	AssignedTo *string    `bson:"assignedTo" json:"assignedTo"`
	AssignedAt *time.Time `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`

	AdminID   string    `bson:"adminId" json:"adminId"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (l *Lead) IsAssigned() bool {
	return l.AssignedTo != nil && *l.AssignedTo != ""
}

// LeadPatch is a partial update. Only non-nil fields are written, so a patch
// never clobbers fields the client did not send.
type LeadPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Country   *string
	Status    *string
	Source    *string
	Comments  *string
}

// Fields returns the persisted field names and values present in the patch.
func (p LeadPatch) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Country != nil {
		set["country"] = *p.Country
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Source != nil {
		set["source"] = *p.Source
	}
	if p.Comments != nil {
		set["comments"] = *p.Comments
	}
	return set
}

func (p LeadPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// LeadView is a lead plus the populated assignee snapshot for read paths.
type LeadView struct {
	Lead
	Assignee *Snapshot `json:"assignee,omitempty"`
}
