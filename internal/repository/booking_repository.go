package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

const bookingColumns = `
	id, coach_id, member_id, start_time, end_time, status, message, reply,
	request_time, response_time, cancel_time, coach_is_read, member_is_read, is_recorded`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.CoachID,
		&b.MemberID,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.Message,
		&b.Reply,
		&b.RequestTime,
		&b.ResponseTime,
		&b.CancelTime,
		&b.CoachIsRead,
		&b.MemberIsRead,
		&b.IsRecorded,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) collect(ctx context.Context, op, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (r *BookingRepository) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := r.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// Create создаёт новую заявку на тренировку
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO session_bookings (
			coach_id, member_id, start_time, end_time, status, message,
			request_time, coach_is_read, member_is_read, is_recorded
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.QueryRow(ctx, query,
		b.CoachID,
		b.MemberID,
		b.StartTime,
		b.EndTime,
		string(b.Status),
		b.Message,
		b.RequestTime,
		b.CoachIsRead,
		b.MemberIsRead,
		b.IsRecorded,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM session_bookings WHERE id = $1`, id)
}

// GetForUpdate получает заявку и блокирует строку до конца транзакции
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM session_bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *BookingRepository) get(ctx context.Context, query string, id int64) (*model.Booking, error) {
	b, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return b, nil
}

// UpdateState сохраняет изменяемые поля заявки
func (r *BookingRepository) UpdateState(ctx context.Context, b *model.Booking) error {
	query := `
		UPDATE session_bookings
		SET status = $2,
		    reply = $3,
		    response_time = $4,
		    cancel_time = $5,
		    coach_is_read = $6,
		    member_is_read = $7,
		    is_recorded = $8
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query,
		b.ID,
		string(b.Status),
		b.Reply,
		b.ResponseTime,
		b.CancelTime,
		b.CoachIsRead,
		b.MemberIsRead,
		b.IsRecorded,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("booking %d not found", b.ID)
	}

	return nil
}

// Delete физически удаляет заявку
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM session_bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

// MemberHasOverlap проверяет, есть ли у участника заявка в статусе status, пересекающаяся с [start, end)
func (r *BookingRepository) MemberHasOverlap(ctx context.Context, memberID int64, status model.RequestStatus, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_bookings
			WHERE member_id = $1
			  AND status = $2
			  AND start_time < $4
			  AND end_time > $3
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, memberID, string(status), start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check member overlap: %w", err)
	}
	return exists, nil
}

// LockCoachSlot заявки тренера, пересекающиеся с интервалом, в любом статусе кроме delete
func (r *BookingRepository) LockCoachSlot(ctx context.Context, coachID int64, start, end time.Time, excludeID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM session_bookings
		WHERE coach_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND status <> 'delete'
		  AND id <> $4
		ORDER BY id
		FOR UPDATE
	`
	return r.collect(ctx, "lock coach slot", query, coachID, start, end, excludeID)
}

// ListAccepted подтверждённые тренировки стороны, пересекающиеся с [from, to)
func (r *BookingRepository) ListAccepted(ctx context.Context, party model.Party, from, to time.Time) ([]*model.Booking, error) {
	idColumn, _, err := partyColumns(party.Role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM session_bookings
		WHERE ` + idColumn + ` = $1
		  AND status = 'accept'
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`
	return r.collect(ctx, "list accepted bookings", query, party.UserID, from, to)
}

// MarkRead отмечает заявку прочитанной для роли
func (r *BookingRepository) MarkRead(ctx context.Context, id int64, role model.Role) error {
	_, readColumn, err := partyColumns(role)
	if err != nil {
		return err
	}

	query := `UPDATE session_bookings SET ` + readColumn + ` = TRUE WHERE id = $1`
	if _, err := r.ExecAffected(ctx, query, id); err != nil {
		return fmt.Errorf("mark booking read: %w", err)
	}
	return nil
}

// CountUnread количество непрочитанных заявок стороны
func (r *BookingRepository) CountUnread(ctx context.Context, party model.Party) (int, error) {
	idColumn, readColumn, err := partyColumns(party.Role)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*) FROM session_bookings
		WHERE ` + idColumn + ` = $1 AND NOT ` + readColumn + ` AND status <> 'delete'
	`
	return r.count(ctx, "count unread bookings", query, party.UserID)
}

// ListByParty страница заявок стороны: сначала непрочитанные, затем более новые
func (r *BookingRepository) ListByParty(ctx context.Context, party model.Party, statuses []model.RequestStatus, limit, offset int) ([]*model.Booking, int, error) {
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

	total, err := r.count(ctx, "count bookings by party", `SELECT COUNT(*) FROM session_bookings`+filter, party.UserID, wanted)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM session_bookings` + filter + `
		ORDER BY ` + readColumn + ` ASC, request_time DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	bookings, err := r.collect(ctx, "list bookings by party", query, party.UserID, wanted, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListUnrecorded прошедшие подтверждённые тренировки, которые тренер ещё не занёс в историю
func (r *BookingRepository) ListUnrecorded(ctx context.Context, coachID int64, now time.Time, limit, offset int) ([]*model.Booking, int, error) {
	total, err := r.CountUnrecorded(ctx, coachID, now)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM session_bookings
		WHERE coach_id = $1 AND status = 'accept' AND end_time <= $2 AND NOT is_recorded
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4
	`
	bookings, err := r.collect(ctx, "list unrecorded bookings", query, coachID, now, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// CountUnrecorded количество незанесённых тренировок
func (r *BookingRepository) CountUnrecorded(ctx context.Context, coachID int64, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM session_bookings
		WHERE coach_id = $1 AND status = 'accept' AND end_time <= $2 AND NOT is_recorded
	`
	return r.count(ctx, "count unrecorded bookings", query, coachID, now)
}
