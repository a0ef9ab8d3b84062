package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/schedule"
	"go.uber.org/zap"
)

// AutoRejectReply ответ на заявки, проигравшие слот другой принятой заявке
const AutoRejectReply = "Sorry, this slot is already taken."

const defaultLockTTL = 10 * time.Second

// BookingSettings параметры записи на тренировки
type BookingSettings struct {
	Location     *time.Location
	LockTTL      time.Duration
	Cancellation CancellationPolicy
}

type BookingService struct {
	tx            Transactor
	bookings      BookingStore
	subscriptions SubscriptionStore
	outbox        OutboxStore
	locker        Locker
	settings      BookingSettings
	now           func() time.Time
	logger        *zap.Logger
}

func NewBookingService(
	tx Transactor,
	bookings BookingStore,
	subscriptions SubscriptionStore,
	outbox OutboxStore,
	locker Locker,
	settings BookingSettings,
	logger *zap.Logger,
) *BookingService {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.LockTTL <= 0 {
		settings.LockTTL = defaultLockTTL
	}
	if settings.Cancellation.Mode == "" {
		settings.Cancellation = DefaultCancellationPolicy()
	}

	return &BookingService{
		tx:            tx,
		bookings:      bookings,
		subscriptions: subscriptions,
		outbox:        outbox,
		locker:        locker,
		settings:      settings,
		now:           time.Now,
		logger:        logger,
	}
}

// SetClock подменяет источник текущего времени
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

func validateRole(role model.Role) error {
	if _, err := model.ParseRole(string(role)); err != nil {
		return validationError("illegal role %q", role)
	}
	return nil
}

// BookSession создаёт заявку участника на тренировку в день dayOfWeek следующей недели
func (s *BookingService) BookSession(ctx context.Context, memberID int64, req model.BookingRequest) (*model.Booking, error) {
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 {
		return nil, validationError("day of week must be between 1 and 7")
	}
	if req.StartTime == nil || req.EndTime == nil {
		return nil, validationError("start and end time are required")
	}
	startClock, endClock := *req.StartTime, *req.EndTime
	if startClock < 0 || endClock > model.NewClockTime(24, 0) {
		return nil, validationError("time of day is out of range")
	}
	if endClock <= startClock {
		return nil, validationError("end time must be after start time")
	}

	now := s.now()
	date := schedule.NextMonday(now, s.settings.Location).AddDate(0, 0, req.DayOfWeek-1)
	start := startClock.On(date, s.settings.Location)
	end := endClock.On(date, s.settings.Location)

	booking := &model.Booking{
		CoachID:      req.CoachID,
		MemberID:     memberID,
		StartTime:    start,
		EndTime:      end,
		Status:       model.StatusPending,
		Message:      req.Message,
		RequestTime:  now,
		CoachIsRead:  false,
		MemberIsRead: true,
	}

	lockKey := fmt.Sprintf("booking:member:%d", memberID)
	err := withLock(ctx, s.locker, lockKey, s.settings.LockTTL, s.logger, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.createBooking(ctx, booking, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session requested",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("member_id", memberID),
		zap.Int64("coach_id", booking.CoachID),
		zap.Time("start", booking.StartTime),
		zap.Time("end", booking.EndTime),
	)

	return booking, nil
}

// createBooking проверяет подписку и пересечения участника и сохраняет заявку
func (s *BookingService) createBooking(ctx context.Context, booking *model.Booking, now time.Time) error {
	memberID, start, end := booking.MemberID, booking.StartTime, booking.EndTime

	subscribed, err := s.subscriptions.ExistsWithStatus(ctx, memberID, booking.CoachID, model.StatusAccept)
	if err != nil {
		return fmt.Errorf("check subscription: %w", err)
	}
	if !subscribed {
		return businessError("you are not subscribed to this coach")
	}

	confirmed, err := s.bookings.MemberHasOverlap(ctx, memberID, model.StatusAccept, start, end)
	if err != nil {
		return fmt.Errorf("check confirmed overlap: %w", err)
	}
	if confirmed {
		return businessError("you already have a confirmed session at this time")
	}

	pending, err := s.bookings.MemberHasOverlap(ctx, memberID, model.StatusPending, start, end)
	if err != nil {
		return fmt.Errorf("check pending overlap: %w", err)
	}
	if pending {
		return businessError("you already have a pending request at this time")
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return publish(ctx, s.outbox, aggregateBooking, model.EventBookingRequested, booking.CoachID, bookingPayload(booking, now))
}

// CoachHandleRequest принимает или отклоняет заявку. При принятии остальные ожидающие
// заявки на тот же интервал отклоняются в той же транзакции.
func (s *BookingService) CoachHandleRequest(ctx context.Context, coachID, requestID int64, status model.RequestStatus, reply string) (*model.Booking, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, validationError("please bring your reply")
	}
	if !status.IsDecision() {
		return nil, validationError("status must be %q or %q", model.StatusAccept, model.StatusReject)
	}

	var (
		booking      *model.Booking
		autoRejected int
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil || booking.CoachID != coachID {
			return notFoundError("booking request %d", requestID)
		}
		if !booking.IsPending() {
			return businessError("request has already been handled")
		}

		var competing []*model.Booking
		if status == model.StatusAccept {
			competing, err = s.lockSlot(ctx, booking)
			if err != nil {
				return err
			}
		}

		now := s.now()
		decide(booking, status, reply, now)
		if err := s.bookings.UpdateState(ctx, booking); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		eventType := model.EventBookingRejected
		if status == model.StatusAccept {
			eventType = model.EventBookingAccepted
		}
		if err := publish(ctx, s.outbox, aggregateBooking, eventType, booking.MemberID, bookingPayload(booking, now)); err != nil {
			return err
		}

		autoRejected = len(competing)
		return s.rejectCompeting(ctx, competing, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking request handled",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("coach_id", coachID),
		zap.String("status", string(status)),
		zap.Int("auto_rejected", autoRejected),
	)

	return booking, nil
}

func decide(b *model.Booking, status model.RequestStatus, reply string, now time.Time) {
	b.Status = status
	b.Reply = reply
	b.ResponseTime = &now
	b.CoachIsRead = true
	b.MemberIsRead = false
}

// lockSlot блокирует заявки тренера на пересекающееся время. Если время уже занято
// подтверждённой тренировкой, принять заявку нельзя. Возвращает ожидающие заявки
// на точно тот же интервал.
func (s *BookingService) lockSlot(ctx context.Context, accepting *model.Booking) ([]*model.Booking, error) {
	slot, err := s.bookings.LockCoachSlot(ctx, accepting.CoachID, accepting.StartTime, accepting.EndTime, accepting.ID)
	if err != nil {
		return nil, fmt.Errorf("lock coach slot: %w", err)
	}

	var competing []*model.Booking
	for _, b := range slot {
		if b.IsAccepted() {
			return nil, businessError("slot is already taken by confirmed session %d", b.ID)
		}
		if b.IsPending() && b.StartTime.Equal(accepting.StartTime) && b.EndTime.Equal(accepting.EndTime) {
			competing = append(competing, b)
		}
	}
	return competing, nil
}

func (s *BookingService) rejectCompeting(ctx context.Context, competing []*model.Booking, now time.Time) error {
	for _, b := range competing {
		decide(b, model.StatusReject, AutoRejectReply, now)
		if err := s.bookings.UpdateState(ctx, b); err != nil {
			return fmt.Errorf("auto reject booking %d: %w", b.ID, err)
		}
		if err := publish(ctx, s.outbox, aggregateBooking, model.EventBookingAutoRejected, b.MemberID, bookingPayload(b, now)); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawRequest удаляет ещё не рассмотренную заявку участника
func (s *BookingService) WithdrawRequest(ctx context.Context, memberID, requestID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil || booking.MemberID != memberID {
			return notFoundError("booking request %d", requestID)
		}
		if !booking.IsPending() {
			return validationError("only pending requests can be withdrawn")
		}

		if err := s.bookings.Delete(ctx, requestID); err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Booking request withdrawn",
		zap.Int64("booking_id", requestID),
		zap.Int64("member_id", memberID),
	)
	return nil
}

// CancelBooking отменяет подтверждённую тренировку участника
func (s *BookingService) CancelBooking(ctx context.Context, memberID, bookingID int64) (*model.Booking, error) {
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil || booking.MemberID != memberID {
			return notFoundError("booking %d", bookingID)
		}
		if !booking.IsAccepted() {
			return validationError("only confirmed sessions can be cancelled")
		}

		now := s.now()
		if !s.settings.Cancellation.Allows(booking.StartTime, now, s.settings.Location) {
			return validationError("free cancellation period for this session has passed")
		}

		booking.Status = model.StatusCancel
		booking.CancelTime = &now
		booking.MemberIsRead = true
		booking.CoachIsRead = false
		if err := s.bookings.UpdateState(ctx, booking); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		return publish(ctx, s.outbox, aggregateBooking, model.EventBookingCancelled, booking.CoachID, bookingPayload(booking, now))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("member_id", memberID),
	)

	return booking, nil
}

// ReadRequest отмечает заявку прочитанной стороной party
func (s *BookingService) ReadRequest(ctx context.Context, party model.Party, requestID int64) error {
	if err := validateRole(party.Role); err != nil {
		return err
	}

	booking, err := s.bookings.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil || booking.Status == model.StatusDelete || !booking.BelongsTo(party) {
		return notFoundError("booking request %d", requestID)
	}

	if err := s.bookings.MarkRead(ctx, requestID, party.Role); err != nil {
		return fmt.Errorf("mark booking read: %w", err)
	}
	return nil
}

// CountUnread количество непрочитанных заявок стороны
func (s *BookingService) CountUnread(ctx context.Context, party model.Party) (int, error) {
	if err := validateRole(party.Role); err != nil {
		return 0, err
	}

	n, err := s.bookings.CountUnread(ctx, party)
	if err != nil {
		return 0, fmt.Errorf("count unread bookings: %w", err)
	}
	return n, nil
}

// GetSchedule подтверждённые тренировки текущей и следующей недели
func (s *BookingService) GetSchedule(ctx context.Context, party model.Party) (*model.WeeklySchedule, error) {
	if err := validateRole(party.Role); err != nil {
		return nil, err
	}

	loc := s.settings.Location
	current := schedule.WeekStart(s.now(), loc)
	next := current.AddDate(0, 0, 7)
	following := next.AddDate(0, 0, 7)

	bookings, err := s.bookings.ListAccepted(ctx, party, current, following)
	if err != nil {
		return nil, fmt.Errorf("list accepted bookings: %w", err)
	}

	var currentWeek, nextWeek []*model.Booking
	for _, b := range bookings {
		switch {
		case b.StartTime.Before(current):
		case b.StartTime.Before(next):
			currentWeek = append(currentWeek, b)
		case b.StartTime.Before(following):
			nextWeek = append(nextWeek, b)
		}
	}

	return &model.WeeklySchedule{
		CurrentWeek: buildScheduleView(currentWeek, loc),
		NextWeek:    buildScheduleView(nextWeek, loc),
	}, nil
}

func buildScheduleView(bookings []*model.Booking, loc *time.Location) model.ScheduleView {
	view := model.ScheduleView{
		ListView:     make([]*model.ScheduleEntry, 0, len(bookings)),
		CalendarView: make(map[int][]*model.ScheduleEntry),
	}

	// от поздних к ранним
	for i := len(bookings) - 1; i >= 0; i-- {
		b := bookings[i]
		start := b.StartTime.In(loc)
		entry := &model.ScheduleEntry{
			BookingID: b.ID,
			CoachID:   b.CoachID,
			MemberID:  b.MemberID,
			DayOfWeek: schedule.ISOWeekday(start),
			Date:      start.Format(time.DateOnly),
			StartTime: model.ClockOf(start),
			EndTime:   model.ClockOf(b.EndTime.In(loc)),
			Message:   b.Message,
		}
		view.ListView = append(view.ListView, entry)
		view.CalendarView[entry.DayOfWeek] = append(view.CalendarView[entry.DayOfWeek], entry)
	}

	return view
}

func pageBounds(page, size int) (limit, offset int, err error) {
	if page < 1 || size < 1 {
		return 0, 0, validationError("page and size must be positive")
	}
	if size > 100 {
		return 0, 0, validationError("page size cannot exceed 100")
	}
	return size, (page - 1) * size, nil
}

func validateStatuses(statuses []model.RequestStatus) error {
	for _, st := range statuses {
		if st == model.StatusDelete {
			return validationError("deleted requests cannot be listed")
		}
		if _, err := model.ParseRequestStatus(string(st)); err != nil {
			return validationError("%s", err)
		}
	}
	return nil
}

// GetRequests страница заявок стороны, непрочитанные первыми
func (s *BookingService) GetRequests(ctx context.Context, party model.Party, page, size int, statuses []model.RequestStatus) (*model.Page[*model.Booking], error) {
	if err := validateRole(party.Role); err != nil {
		return nil, err
	}
	if err := validateStatuses(statuses); err != nil {
		return nil, err
	}
	limit, offset, err := pageBounds(page, size)
	if err != nil {
		return nil, err
	}

	items, total, err := s.bookings.ListByParty(ctx, party, statuses, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	if items == nil {
		items = []*model.Booking{}
	}

	return &model.Page[*model.Booking]{Items: items, Total: total, Page: page, Size: size}, nil
}

// ListUnrecorded прошедшие тренировки, по которым тренер ещё не оставил запись
func (s *BookingService) ListUnrecorded(ctx context.Context, coachID int64, page, size int) (*model.Page[*model.Booking], error) {
	limit, offset, err := pageBounds(page, size)
	if err != nil {
		return nil, err
	}

	items, total, err := s.bookings.ListUnrecorded(ctx, coachID, s.now(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list unrecorded sessions: %w", err)
	}
	if items == nil {
		items = []*model.Booking{}
	}

	return &model.Page[*model.Booking]{Items: items, Total: total, Page: page, Size: size}, nil
}

// CountUnrecorded количество незанесённых тренировок
func (s *BookingService) CountUnrecorded(ctx context.Context, coachID int64) (int, error) {
	n, err := s.bookings.CountUnrecorded(ctx, coachID, s.now())
	if err != nil {
		return 0, fmt.Errorf("count unrecorded sessions: %w", err)
	}
	return n, nil
}

// MarkRecorded отмечает прошедшую тренировку занесённой в историю
func (s *BookingService) MarkRecorded(ctx context.Context, coachID, bookingID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil || booking.CoachID != coachID {
			return notFoundError("booking %d", bookingID)
		}
		if !booking.IsAccepted() {
			return businessError("only confirmed sessions can be recorded")
		}
		if booking.EndTime.After(s.now()) {
			return businessError("session has not finished yet")
		}
		if booking.IsRecorded {
			return nil
		}

		booking.IsRecorded = true
		if err := s.bookings.UpdateState(ctx, booking); err != nil {
			return fmt.Errorf("mark session recorded: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Session recorded",
		zap.Int64("booking_id", bookingID),
		zap.Int64("coach_id", coachID),
	)
	return nil
}
