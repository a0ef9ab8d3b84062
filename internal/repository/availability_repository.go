package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

const templateColumns = `id, coach_id, day_of_week, start_minutes, end_minutes, created_at`

func scanTemplate(row pgx.Row) (*model.AvailabilityTemplate, error) {
	var (
		tpl        model.AvailabilityTemplate
		start, end int
	)
	if err := row.Scan(&tpl.ID, &tpl.CoachID, &tpl.DayOfWeek, &start, &end, &tpl.CreatedAt); err != nil {
		return nil, err
	}
	tpl.StartTime = model.ClockTime(start)
	tpl.EndTime = model.ClockTime(end)
	return &tpl, nil
}

// ListByCoach получает все шаблоны тренера по дню и времени начала
func (r *AvailabilityRepository) ListByCoach(ctx context.Context, coachID int64) ([]*model.AvailabilityTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM availability_templates
		WHERE coach_id = $1
		ORDER BY day_of_week, start_minutes
	`

	rows, err := r.Query(ctx, query, coachID)
	if err != nil {
		return nil, fmt.Errorf("list templates by coach: %w", err)
	}
	defer rows.Close()

	var templates []*model.AvailabilityTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, rows.Err()
}

// GetByID получает шаблон по ID
func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM availability_templates WHERE id = $1`

	tpl, err := scanTemplate(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get template by id: %w", err)
	}

	return tpl, nil
}

// HasOverlap проверяет пересечение с другими шаблонами тренера в тот же день
func (r *AvailabilityRepository) HasOverlap(ctx context.Context, coachID int64, dayOfWeek int, start, end model.ClockTime, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM availability_templates
			WHERE coach_id = $1
			  AND day_of_week = $2
			  AND start_minutes < $4
			  AND end_minutes > $3
			  AND id <> $5
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, coachID, dayOfWeek, int(start), int(end), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check template overlap: %w", err)
	}

	return exists, nil
}

// Create создаёт шаблон
func (r *AvailabilityRepository) Create(ctx context.Context, tpl *model.AvailabilityTemplate) error {
	query := `
		INSERT INTO availability_templates (coach_id, day_of_week, start_minutes, end_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query,
		tpl.CoachID,
		tpl.DayOfWeek,
		int(tpl.StartTime),
		int(tpl.EndTime),
	).Scan(&tpl.ID, &tpl.CreatedAt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}

	return nil
}

// Update меняет день и время шаблона
func (r *AvailabilityRepository) Update(ctx context.Context, tpl *model.AvailabilityTemplate) error {
	query := `
		UPDATE availability_templates
		SET day_of_week = $2, start_minutes = $3, end_minutes = $4
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, tpl.ID, tpl.DayOfWeek, int(tpl.StartTime), int(tpl.EndTime))
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d not found", tpl.ID)
	}

	return nil
}

// Delete удаляет шаблон
func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM availability_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
