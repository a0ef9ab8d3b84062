package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/schedule"
	"go.uber.org/zap"
)

// Границы рабочего дня зала и минимальная длина блока
var (
	EarliestTemplateStart = model.NewClockTime(8, 0)
	LatestTemplateEnd     = model.NewClockTime(22, 0)
	MinTemplateLength     = time.Hour
)

type AvailabilityService struct {
	templates TemplateStore
	bookings  BookingStore
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

func NewAvailabilityService(
	templates TemplateStore,
	bookings BookingStore,
	loc *time.Location,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		templates: templates,
		bookings:  bookings,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock подменяет источник текущего времени
func (s *AvailabilityService) SetClock(now func() time.Time) {
	s.now = now
}

// ListTemplates возвращает шаблоны тренера списком и по дням недели
func (s *AvailabilityService) ListTemplates(ctx context.Context, coachID int64) (*model.TemplateView, error) {
	templates, err := s.templates.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	view := &model.TemplateView{
		ListView:     templates,
		CalendarView: make(map[int][]*model.AvailabilityTemplate),
	}
	if view.ListView == nil {
		view.ListView = []*model.AvailabilityTemplate{}
	}
	for _, tpl := range templates {
		view.CalendarView[tpl.DayOfWeek] = append(view.CalendarView[tpl.DayOfWeek], tpl)
	}

	return view, nil
}

// CreateTemplate добавляет еженедельный блок доступности
func (s *AvailabilityService) CreateTemplate(ctx context.Context, coachID int64, input model.TemplateInput) (*model.AvailabilityTemplate, error) {
	if err := s.validateTemplate(ctx, coachID, input, 0); err != nil {
		return nil, err
	}

	tpl := &model.AvailabilityTemplate{
		CoachID:   coachID,
		DayOfWeek: input.DayOfWeek,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.Info("Availability template created",
		zap.Int64("template_id", tpl.ID),
		zap.Int64("coach_id", coachID),
		zap.Int("day_of_week", tpl.DayOfWeek),
		zap.Stringer("start", tpl.StartTime),
		zap.Stringer("end", tpl.EndTime),
	)

	return tpl, nil
}

// UpdateTemplate меняет день и время блока
func (s *AvailabilityService) UpdateTemplate(ctx context.Context, coachID, templateID int64, input model.TemplateInput) (*model.AvailabilityTemplate, error) {
	tpl, err := s.ownTemplate(ctx, coachID, templateID)
	if err != nil {
		return nil, err
	}

	if err := s.validateTemplate(ctx, coachID, input, templateID); err != nil {
		return nil, err
	}

	tpl.DayOfWeek = input.DayOfWeek
	tpl.StartTime = input.StartTime
	tpl.EndTime = input.EndTime

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	s.logger.Info("Availability template updated",
		zap.Int64("template_id", tpl.ID),
		zap.Int64("coach_id", coachID),
	)

	return tpl, nil
}

// DeleteTemplate удаляет блок. Уже созданные заявки не затрагиваются.
func (s *AvailabilityService) DeleteTemplate(ctx context.Context, coachID, templateID int64) error {
	if _, err := s.ownTemplate(ctx, coachID, templateID); err != nil {
		return err
	}

	if err := s.templates.Delete(ctx, templateID); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	s.logger.Info("Availability template deleted",
		zap.Int64("template_id", templateID),
		zap.Int64("coach_id", coachID),
	)
	return nil
}

func (s *AvailabilityService) ownTemplate(ctx context.Context, coachID, templateID int64) (*model.AvailabilityTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tpl == nil || tpl.CoachID != coachID {
		return nil, notFoundError("availability template %d", templateID)
	}
	return tpl, nil
}

func (s *AvailabilityService) validateTemplate(ctx context.Context, coachID int64, input model.TemplateInput, excludeID int64) error {
	if input.DayOfWeek < 1 || input.DayOfWeek > 7 {
		return validationError("day of week must be between 1 and 7")
	}
	if input.StartTime < EarliestTemplateStart {
		return validationError("start time cannot be earlier than %s", EarliestTemplateStart)
	}
	if input.EndTime > LatestTemplateEnd {
		return validationError("end time cannot be later than %s", LatestTemplateEnd)
	}
	if input.EndTime < input.StartTime.Add(MinTemplateLength) {
		return validationError("availability must last at least %s", MinTemplateLength)
	}

	overlap, err := s.templates.HasOverlap(ctx, coachID, input.DayOfWeek, input.StartTime, input.EndTime, excludeID)
	if err != nil {
		return fmt.Errorf("check template overlap: %w", err)
	}
	if overlap {
		return businessError("availability overlaps with an existing block on the same day")
	}

	return nil
}

// ComputeBookableStarts считает, когда у тренера можно начать занятие длительностью durationMinutes
// на следующей неделе. Результат сгруппирован по дню недели, дни без слотов отсутствуют.
func (s *AvailabilityService) ComputeBookableStarts(ctx context.Context, coachID int64, durationMinutes int) (map[int][]model.BookableSlot, error) {
	if durationMinutes <= 0 {
		return nil, validationError("duration must be positive")
	}
	duration := time.Duration(durationMinutes) * time.Minute

	result := make(map[int][]model.BookableSlot)

	templates, err := s.templates.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		return result, nil
	}

	from := schedule.NextMonday(s.now(), s.loc)
	to := from.AddDate(0, 0, 7)

	accepted, err := s.bookings.ListAccepted(ctx, model.Party{UserID: coachID, Role: model.RoleCoach}, from, to)
	if err != nil {
		return nil, fmt.Errorf("list accepted bookings: %w", err)
	}
	booked := make([]schedule.Interval, 0, len(accepted))
	for _, b := range accepted {
		booked = append(booked, schedule.NewInterval(b.StartTime, b.EndTime))
	}

	for _, day := range schedule.DatesBetween(from, to) {
		weekday := schedule.ISOWeekday(day)

		free := schedule.Subtract(schedule.Expand(templates, day, weekday, s.loc), booked)
		starts := schedule.Tile(free, duration)
		sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

		for _, start := range starts {
			local := start.In(s.loc)
			result[weekday] = append(result[weekday], model.BookableSlot{
				StartTime: model.ClockOf(local),
				EndTime:   model.ClockOf(local.Add(duration)),
				Date:      local.Format(time.DateOnly),
			})
		}
	}

	s.logger.Debug("Bookable starts computed",
		zap.Int64("coach_id", coachID),
		zap.Int("duration_minutes", durationMinutes),
		zap.Int("days", len(result)),
	)

	return result, nil
}
