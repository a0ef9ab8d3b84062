package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	aggregateBooking      = "booking"
	aggregateSubscription = "subscription"
)

func bookingPayload(b *model.Booking, at time.Time) model.RequestEventPayload {
	start, end := b.StartTime, b.EndTime
	return model.RequestEventPayload{
		ID:        b.ID,
		CoachID:   b.CoachID,
		MemberID:  b.MemberID,
		Status:    b.Status,
		Reply:     b.Reply,
		StartTime: &start,
		EndTime:   &end,
		At:        at,
	}
}

func subscriptionPayload(s *model.Subscription, at time.Time) model.RequestEventPayload {
	return model.RequestEventPayload{
		ID:       s.ID,
		CoachID:  s.CoachID,
		MemberID: s.MemberID,
		Status:   s.Status,
		Reply:    s.Reply,
		At:       at,
	}
}

// publish пишет событие в outbox в текущей транзакции
func publish(ctx context.Context, outbox OutboxStore, aggregateType, eventType string, recipientID int64, payload model.RequestEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	evt := &model.OutboxEvent{
		EventID:       uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   payload.ID,
		EventType:     eventType,
		RecipientID:   recipientID,
		Payload:       body,
	}
	if err := outbox.Add(ctx, evt); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}
	return nil
}
