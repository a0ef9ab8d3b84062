// Package events доставляет события из outbox во внешние системы.
package events

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"go.uber.org/zap"
)

// Publisher получатель пачки событий. Ошибка означает, что пачка будет отправлена повторно.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, events []*model.OutboxEvent) error
}

type OutboxSource interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultBatchSize = 50

// Relay переносит неотправленные события из outbox в публикаторы.
// Публикаторы получают пачку внутри транзакции и при ошибке получат её снова.
// Уведомители получают пачку один раз, после того как она отмечена отправленной.
type Relay struct {
	tx         Transactor
	source     OutboxSource
	publishers []Publisher
	notifiers  []Publisher
	batchSize  int
	logger     *zap.Logger
}

func NewRelay(tx Transactor, source OutboxSource, batchSize int, logger *zap.Logger, publishers ...Publisher) *Relay {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Relay{
		tx:         tx,
		source:     source,
		publishers: publishers,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// WithNotifiers добавляет получателей, для которых повторная доставка хуже пропущенной
func (r *Relay) WithNotifiers(notifiers ...Publisher) *Relay {
	r.notifiers = append(r.notifiers, notifiers...)
	return r
}

// RunOnce отправляет одну пачку событий и возвращает её размер.
// Строки заблокированы до конца транзакции, поэтому несколько реплик не отправят одно событие дважды.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	var sent []*model.OutboxEvent

	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		batch, err := r.source.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, p := range r.publishers {
			if err := p.Publish(ctx, batch); err != nil {
				return fmt.Errorf("publish to %s: %w", p.Name(), err)
			}
		}

		ids := make([]int64, 0, len(batch))
		for _, evt := range batch {
			ids = append(ids, evt.ID)
		}
		if err := r.source.MarkPublished(ctx, ids); err != nil {
			return err
		}

		sent = batch
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("relay outbox: %w", err)
	}
	if len(sent) == 0 {
		return 0, nil
	}

	r.logger.Info("Outbox events published", zap.Int("count", len(sent)))

	for _, n := range r.notifiers {
		if err := n.Publish(ctx, sent); err != nil {
			r.logger.Warn("Failed to notify",
				zap.String("notifier", n.Name()),
				zap.Int("count", len(sent)),
				zap.Error(err),
			)
		}
	}
	return len(sent), nil
}
