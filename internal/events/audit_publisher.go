// Package events mirrors persisted activity records onto a Kafka topic so
// downstream consumers (notifications, analytics) can react without polling
// the activities collection. The Mongo write is authoritative; publishing is
// fire-and-forget and must never fail a request.
package events

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/pkg/kafka"
)

// AuditEvent is the wire shape published for every activity record.
type AuditEvent struct {
	EventID   string                 `json:"event_id"`
	Timestamp int64                  `json:"timestamp"`
	TenantID  string                 `json:"tenant_id"`
	UserID    string                 `json:"user_id"`
	Type      models.ActivityType    `json:"type"`
	LeadID    string                 `json:"lead_id,omitempty"`
	Details   string                 `json:"details"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AuditPublisher publishes audit events to Kafka.
type AuditPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *zap.Logger
	enabled  bool
}

// NewAuditPublisher creates a publisher. A nil producer disables publishing;
// events are then only visible in the activities collection.
func NewAuditPublisher(producer *kafka.Producer, topic string, log *zap.Logger) *AuditPublisher {
	enabled := producer != nil
	if enabled {
		log.Info("audit event publisher initialized", zap.String("topic", topic))
	} else {
		log.Info("audit event publisher disabled (no Kafka producer)")
	}
	return &AuditPublisher{
		producer: producer,
		topic:    topic,
		log:      log,
		enabled:  enabled,
	}
}

// PublishActivity sends an audit event for a persisted activity
// (fire-and-forget). Events are keyed by tenant so one tenant's audit stream
// stays ordered within a partition.
func (p *AuditPublisher) PublishActivity(activity *models.Activity) {
	if !p.enabled || p.producer == nil {
		return
	}

	event := &AuditEvent{
		EventID:   uuid.New().String(),
		Timestamp: activity.Timestamp.Unix(),
		TenantID:  activity.AdminID,
		UserID:    activity.UserID,
		Type:      activity.Type,
		LeadID:    activity.LeadRef,
		Details:   activity.Details,
		Metadata:  activity.Metadata,
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	go func() {
		if err := p.producer.PublishJSON(p.topic, activity.AdminID, event); err != nil {
			p.log.Warn("failed to publish audit event",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		}
	}()
}
