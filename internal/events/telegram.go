package events

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// MessageSender часть *bot.Bot для отправки сообщений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type ContactBook interface {
	TelegramChatID(ctx context.Context, userID int64) (int64, bool, error)
}

// TelegramNotifier сообщает получателю события о новой заявке или решении по ней.
// Недоставленное уведомление не повторяется: пользователь увидит заявку в списке непрочитанных.
type TelegramNotifier struct {
	sender   MessageSender
	contacts ContactBook
	loc      *time.Location
	logger   *zap.Logger
}

func NewTelegramNotifier(sender MessageSender, contacts ContactBook, loc *time.Location, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, contacts: contacts, loc: loc, logger: logger}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Publish(ctx context.Context, events []*model.OutboxEvent) error {
	for _, evt := range events {
		chatID, ok, err := n.contacts.TelegramChatID(ctx, evt.RecipientID)
		if err != nil {
			return fmt.Errorf("get chat of user %d: %w", evt.RecipientID, err)
		}
		if !ok {
			continue
		}

		text, err := n.render(evt)
		if err != nil {
			n.logger.Warn("Skip malformed event", zap.String("event_id", evt.EventID.String()), zap.Error(err))
			continue
		}

		_, err = n.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			n.logger.Warn("Failed to send telegram notification",
				zap.Int64("recipient_id", evt.RecipientID),
				zap.String("event_type", evt.EventType),
				zap.Error(err),
			)
		}
	}
	return nil
}

var eventTitles = map[string]string{
	model.EventBookingRequested:      "📅 New session request",
	model.EventBookingAccepted:       "✅ Your session was accepted",
	model.EventBookingRejected:       "❌ Your session was rejected",
	model.EventBookingAutoRejected:   "❌ Your session was rejected",
	model.EventBookingCancelled:      "🚫 A session was cancelled",
	model.EventSubscriptionRequested: "🙋 New subscription request",
	model.EventSubscriptionAccepted:  "✅ Your subscription was accepted",
	model.EventSubscriptionRejected:  "❌ Your subscription was rejected",
	model.EventSubscriptionCancelled: "🚫 A member cancelled the subscription",
}

func (n *TelegramNotifier) render(evt *model.OutboxEvent) (string, error) {
	var p model.RequestEventPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}

	title, ok := eventTitles[evt.EventType]
	if !ok {
		title = evt.EventType
	}

	var sb strings.Builder
	sb.WriteString("<b>" + title + "</b>")
	if p.StartTime != nil && p.EndTime != nil {
		start, end := p.StartTime.In(n.loc), p.EndTime.In(n.loc)
		fmt.Fprintf(&sb, "\n%s, %s-%s", start.Format("Mon 02.01"), start.Format("15:04"), end.Format("15:04"))
	}
	if p.Reply != "" {
		sb.WriteString("\n\n" + html.EscapeString(p.Reply))
	}
	return sb.String(), nil
}
