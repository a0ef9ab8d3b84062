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

type SubscriptionService struct {
	tx            Transactor
	subscriptions SubscriptionStore
	outbox        OutboxStore
	locker        Locker
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

func NewSubscriptionService(
	tx Transactor,
	subscriptions SubscriptionStore,
	outbox OutboxStore,
	locker Locker,
	loc *time.Location,
	logger *zap.Logger,
) *SubscriptionService {
	if loc == nil {
		loc = time.Local
	}
	return &SubscriptionService{
		tx:            tx,
		subscriptions: subscriptions,
		outbox:        outbox,
		locker:        locker,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

// SetClock подменяет источник текущего времени
func (s *SubscriptionService) SetClock(now func() time.Time) {
	s.now = now
}

// CooldownEnd момент, с которого после отказа можно снова подать заявку:
// полночь первого понедельника строго после дня отказа
func CooldownEnd(rejectedAt time.Time, loc *time.Location) time.Time {
	return schedule.NextMonday(rejectedAt, loc)
}

// SendRequest подаёт заявку на подписку к тренеру
func (s *SubscriptionService) SendRequest(ctx context.Context, memberID int64, req model.SubscriptionRequest) (*model.Subscription, error) {
	if req.CoachID <= 0 {
		return nil, validationError("coach id is required")
	}
	if req.CoachID == memberID {
		return nil, validationError("you cannot subscribe to yourself")
	}

	now := s.now()
	if schedule.ISOWeekday(now.In(s.loc)) == 7 {
		return nil, businessError("you can't subscribe on Sunday, please wait until next week")
	}

	sub := &model.Subscription{
		MemberID:     memberID,
		CoachID:      req.CoachID,
		Message:      req.Message,
		Status:       model.StatusPending,
		RequestTime:  now,
		CoachIsRead:  false,
		MemberIsRead: true,
	}

	lockKey := fmt.Sprintf("subscription:member:%d", memberID)
	err := withLock(ctx, s.locker, lockKey, defaultLockTTL, s.logger, func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			return s.createRequest(ctx, sub, now)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Subscription requested",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("member_id", memberID),
		zap.Int64("coach_id", sub.CoachID),
	)

	return sub, nil
}

// createRequest проверяет период ожидания после отказа и повторные заявки
func (s *SubscriptionService) createRequest(ctx context.Context, sub *model.Subscription, now time.Time) error {
	memberID, coachID := sub.MemberID, sub.CoachID

	rejected, err := s.subscriptions.LatestRejected(ctx, memberID, coachID)
	if err != nil {
		return fmt.Errorf("get latest rejection: %w", err)
	}
	if rejected != nil && rejected.ResponseTime != nil && now.Before(CooldownEnd(*rejected.ResponseTime, s.loc)) {
		return businessError("you have been rejected, please wait for the cooling off period")
	}

	pending, err := s.subscriptions.ExistsWithStatus(ctx, memberID, coachID, model.StatusPending)
	if err != nil {
		return fmt.Errorf("check pending subscription: %w", err)
	}
	if pending {
		return businessError("you have already sent a request, please wait for it to be processed")
	}

	active, err := s.subscriptions.ExistsWithStatus(ctx, memberID, coachID, model.StatusAccept)
	if err != nil {
		return fmt.Errorf("check active subscription: %w", err)
	}
	if active {
		return businessError("you have already subscribed to this coach")
	}

	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return publish(ctx, s.outbox, aggregateSubscription, model.EventSubscriptionRequested, sub.CoachID, subscriptionPayload(sub, now))
}

// CoachHandleRequest принимает или отклоняет заявку на подписку
func (s *SubscriptionService) CoachHandleRequest(ctx context.Context, coachID, requestID int64, status model.RequestStatus, reply string) (*model.Subscription, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, validationError("please bring your reply")
	}
	if !status.IsDecision() {
		return nil, validationError("status must be %q or %q", model.StatusAccept, model.StatusReject)
	}

	var sub *model.Subscription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.subscriptions.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get subscription: %w", err)
		}
		if sub == nil || sub.CoachID != coachID {
			return notFoundError("subscription request %d", requestID)
		}
		if !sub.IsPending() {
			return businessError("request has already been handled")
		}

		now := s.now()
		sub.Status = status
		sub.Reply = reply
		sub.ResponseTime = &now
		sub.CoachIsRead = true
		sub.MemberIsRead = false
		if err := s.subscriptions.UpdateState(ctx, sub); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		eventType := model.EventSubscriptionRejected
		if status == model.StatusAccept {
			eventType = model.EventSubscriptionAccepted
		}
		return publish(ctx, s.outbox, aggregateSubscription, eventType, sub.MemberID, subscriptionPayload(sub, now))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Subscription request handled",
		zap.Int64("subscription_id", requestID),
		zap.Int64("coach_id", coachID),
		zap.String("status", string(status)),
	)

	return sub, nil
}

// ReadRequest отмечает заявку на подписку прочитанной
func (s *SubscriptionService) ReadRequest(ctx context.Context, party model.Party, requestID int64) error {
	if err := validateRole(party.Role); err != nil {
		return err
	}

	sub, err := s.subscriptions.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("get subscription: %w", err)
	}
	if sub == nil || sub.Status == model.StatusDelete || !sub.BelongsTo(party) {
		return notFoundError("subscription request %d", requestID)
	}

	if err := s.subscriptions.MarkRead(ctx, requestID, party.Role); err != nil {
		return fmt.Errorf("mark subscription read: %w", err)
	}
	return nil
}

// CountUnread количество непрочитанных заявок на подписку
func (s *SubscriptionService) CountUnread(ctx context.Context, party model.Party) (int, error) {
	if err := validateRole(party.Role); err != nil {
		return 0, err
	}

	n, err := s.subscriptions.CountUnread(ctx, party)
	if err != nil {
		return 0, fmt.Errorf("count unread subscriptions: %w", err)
	}
	return n, nil
}

// List страница заявок на подписку стороны
func (s *SubscriptionService) List(ctx context.Context, party model.Party, page, size int, statuses []model.RequestStatus) (*model.Page[*model.Subscription], error) {
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

	items, total, err := s.subscriptions.ListByParty(ctx, party, statuses, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if items == nil {
		items = []*model.Subscription{}
	}

	return &model.Page[*model.Subscription]{Items: items, Total: total, Page: page, Size: size}, nil
}

// MemberCancelSubscription отменяет подписку или ожидающую заявку участника
func (s *SubscriptionService) MemberCancelSubscription(ctx context.Context, memberID, coachID int64) (*model.Subscription, error) {
	var sub *model.Subscription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.subscriptions.FindActive(ctx, memberID, coachID)
		if err != nil {
			return fmt.Errorf("find active subscription: %w", err)
		}
		if sub == nil {
			return notFoundError("no active subscription to coach %d", coachID)
		}

		now := s.now()
		sub.Status = model.StatusCancel
		sub.CancelTime = &now
		sub.MemberIsRead = true
		sub.CoachIsRead = false
		if err := s.subscriptions.UpdateState(ctx, sub); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		return publish(ctx, s.outbox, aggregateSubscription, model.EventSubscriptionCancelled, coachID, subscriptionPayload(sub, now))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Subscription cancelled",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("member_id", memberID),
		zap.Int64("coach_id", coachID),
	)

	return sub, nil
}

// MySubscriptionCoaches тренеры, на которых подписан участник
func (s *SubscriptionService) MySubscriptionCoaches(ctx context.Context, memberID int64) ([]model.SubscribedCoach, error) {
	subs, err := s.subscriptions.ListAcceptedByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list accepted subscriptions: %w", err)
	}

	coaches := make([]model.SubscribedCoach, 0, len(subs))
	for _, sub := range subs {
		since := sub.RequestTime
		if sub.ResponseTime != nil {
			since = *sub.ResponseTime
		}
		coaches = append(coaches, model.SubscribedCoach{
			CoachID:        sub.CoachID,
			SubscriptionID: sub.ID,
			Since:          since,
		})
	}

	return coaches, nil
}
