package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	*base.Repository
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{Repository: base.NewRepository(pool)}
}

// Add записывает событие. Вызывается в транзакции, меняющей заявку.
func (r *OutboxRepository) Add(ctx context.Context, evt *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (event_id, aggregate_type, aggregate_id, event_type, recipient_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query,
		evt.EventID,
		evt.AggregateType,
		evt.AggregateID,
		evt.EventType,
		evt.RecipientID,
		evt.Payload,
	).Scan(&evt.ID, &evt.CreatedAt)
	if err != nil {
		return fmt.Errorf("add outbox event: %w", err)
	}

	return nil
}

// FetchUnpublished выбирает неотправленные события, пропуская заблокированные другим релеем
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, recipient_id, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []*model.OutboxEvent
	for rows.Next() {
		var evt model.OutboxEvent
		err := rows.Scan(
			&evt.ID,
			&evt.EventID,
			&evt.AggregateType,
			&evt.AggregateID,
			&evt.EventType,
			&evt.RecipientID,
			&evt.Payload,
			&evt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &evt)
	}

	return events, rows.Err()
}

// MarkPublished отмечает события отправленными
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.ExecAffected(ctx, `UPDATE outbox_events SET published_at = now() WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("mark events published: %w", err)
	}
	return nil
}
