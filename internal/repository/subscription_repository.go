package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	*base.Repository
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{Repository: base.NewRepository(pool)}
}

const subscriptionColumns = `
	id, member_id, coach_id, message, status, reply,
	request_time, response_time, cancel_time, coach_is_read, member_is_read`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(
		&s.ID,
		&s.MemberID,
		&s.CoachID,
		&s.Message,
		&s.Status,
		&s.Reply,
		&s.RequestTime,
		&s.ResponseTime,
		&s.CancelTime,
		&s.CoachIsRead,
		&s.MemberIsRead,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) one(ctx context.Context, op, query string, args ...any) (*model.Subscription, error) {
	s, err := scanSubscription(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (r *SubscriptionRepository) many(ctx context.Context, op, query string, args ...any) ([]*model.Subscription, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// Create создаёт заявку на подписку
func (r *SubscriptionRepository) Create(ctx context.Context, s *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (member_id, coach_id, message, status, request_time, coach_is_read, member_is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.QueryRow(ctx, query,
		s.MemberID,
		s.CoachID,
		s.Message,
		string(s.Status),
		s.RequestTime,
		s.CoachIsRead,
		s.MemberIsRead,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

// GetByID получает подписку по ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.one(ctx, "get subscription by id", `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
}

// GetForUpdate получает подписку и блокирует строку
func (r *SubscriptionRepository) GetForUpdate(ctx context.Context, id int64) (*model.Subscription, error) {
	return r.one(ctx, "get subscription for update", `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id)
}

// UpdateState сохраняет статус, ответ и флаги прочтения
func (r *SubscriptionRepository) UpdateState(ctx context.Context, s *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET status = $2,
		    reply = $3,
		    response_time = $4,
		    cancel_time = $5,
		    coach_is_read = $6,
		    member_is_read = $7
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query,
		s.ID,
		string(s.Status),
		s.Reply,
		s.ResponseTime,
		s.CancelTime,
		s.CoachIsRead,
		s.MemberIsRead,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subscription %d not found", s.ID)
	}

	return nil
}

// LatestRejected последний отказ тренера участнику
func (r *SubscriptionRepository) LatestRejected(ctx context.Context, memberID, coachID int64) (*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE member_id = $1 AND coach_id = $2 AND status = 'reject' AND response_time IS NOT NULL
		ORDER BY response_time DESC
		LIMIT 1
	`
	return r.one(ctx, "get latest rejected subscription", query, memberID, coachID)
}

// ExistsWithStatus проверяет наличие подписки в одном из статусов
func (r *SubscriptionRepository) ExistsWithStatus(ctx context.Context, memberID, coachID int64, statuses ...model.RequestStatus) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE member_id = $1 AND coach_id = $2 AND status = ANY($3::text[])
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, memberID, coachID, statusStrings(statuses)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subscription status: %w", err)
	}
	return exists, nil
}

// FindActive принятая или ожидающая подписка, принятая в приоритете
func (r *SubscriptionRepository) FindActive(ctx context.Context, memberID, coachID int64) (*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE member_id = $1 AND coach_id = $2 AND status IN ('accept', 'pending')
		ORDER BY (status = 'accept') DESC, request_time DESC
		LIMIT 1
		FOR UPDATE
	`
	return r.one(ctx, "find active subscription", query, memberID, coachID)
}

// MarkRead отмечает подписку прочитанной для роли
func (r *SubscriptionRepository) MarkRead(ctx context.Context, id int64, role model.Role) error {
	_, readColumn, err := partyColumns(role)
	if err != nil {
		return err
	}

	if _, err := r.ExecAffected(ctx, `UPDATE subscriptions SET `+readColumn+` = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark subscription read: %w", err)
	}
	return nil
}

// CountUnread количество непрочитанных заявок на подписку
func (r *SubscriptionRepository) CountUnread(ctx context.Context, party model.Party) (int, error) {
	idColumn, readColumn, err := partyColumns(party.Role)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*) FROM subscriptions
		WHERE ` + idColumn + ` = $1 AND NOT ` + readColumn + ` AND status <> 'delete'
	`

	var n int
	if err := r.QueryRow(ctx, query, party.UserID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread subscriptions: %w", err)
	}
	return n, nil
}

// ListByParty страница подписок стороны
func (r *SubscriptionRepository) ListByParty(ctx context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Subscription, int, error) {
	idColumn, readColumn, err := partyColumns(party.Role)
	if err != nil {
		return nil, 0, err
	}

	filter := `
		WHERE ` + idColumn + ` = $1
		  AND status <> 'delete'
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
	`
	wanted := statusStrings(statuses)

	var total int
	if err := r.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions`+filter, party.UserID, wanted).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions by party: %w", err)
	}

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions` + filter + `
		ORDER BY ` + readColumn + ` ASC, request_time DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	subs, err := r.many(ctx, "list subscriptions by party", query, party.UserID, wanted, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// ListAcceptedByMember принятые подписки участника
func (r *SubscriptionRepository) ListAcceptedByMember(ctx context.Context, memberID int64) ([]*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE member_id = $1 AND status = 'accept'
		ORDER BY response_time DESC NULLS LAST, id DESC
	`
	return r.many(ctx, "list accepted subscriptions", query, memberID)
}
