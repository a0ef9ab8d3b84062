package model

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий, которые пишутся в outbox
const (
	EventBookingRequested      = "booking.requested"
	EventBookingAccepted       = "booking.accepted"
	EventBookingRejected       = "booking.rejected"
	EventBookingAutoRejected   = "booking.auto_rejected"
	EventBookingCancelled      = "booking.cancelled"
	EventSubscriptionRequested = "subscription.requested"
	EventSubscriptionAccepted  = "subscription.accepted"
	EventSubscriptionRejected  = "subscription.rejected"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// OutboxEvent событие, записанное в одной транзакции с изменением заявки
type OutboxEvent struct {
	ID            int64      `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	AggregateType string     `json:"aggregate_type"` // booking | subscription
	AggregateID   int64      `json:"aggregate_id"`
	EventType     string     `json:"event_type"`
	RecipientID   int64      `json:"recipient_id"` // кого уведомить
	Payload       []byte     `json:"payload"`
	CreatedAt     time.Time  `json:"created_at"`
	PublishedAt   *time.Time `json:"published_at"`
}

// RequestEventPayload тело события о заявке
type RequestEventPayload struct {
	ID        int64         `json:"id"`
	CoachID   int64         `json:"coach_id"`
	MemberID  int64         `json:"member_id"`
	Status    RequestStatus `json:"status"`
	Reply     string        `json:"reply,omitempty"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	At        time.Time     `json:"at"`
}
