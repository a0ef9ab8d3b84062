package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// LinkBot отвечает пользователю идентификатором его чата,
// который затем сохраняется через PUT /v1/me/telegram
type LinkBot struct {
	logger *zap.Logger
}

func NewLinkBot(logger *zap.Logger) *LinkBot {
	return &LinkBot{logger: logger}
}

// RegisterHandlers регистрирует команды бота
func (c *LinkBot) RegisterHandlers(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, c.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/chatid", bot.MatchTypeExact, c.HandleStart)
}

// HandleStart отправляет пользователю ID чата
func (c *LinkBot) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	params := startReply(update)
	if params == nil {
		return
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		c.logger.Error("Failed to send chat id",
			zap.Int64("chat_id", update.Message.Chat.ID),
			zap.Error(err),
		)
	}
}

// DefaultHandler обрабатывает все остальные сообщения
func (c *LinkBot) DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.logger.Debug("Unhandled telegram message", zap.Int64("chat_id", update.Message.Chat.ID))
}

func startReply(update *models.Update) *bot.SendMessageParams {
	if update == nil || update.Message == nil {
		return nil
	}

	name := update.Message.Chat.FirstName
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}
	if name == "" {
		name = "there"
	}

	return &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf(
			"👋 Hi, %s!\n\n"+
				"Your chat id is %d.\n"+
				"Save it in the app to get notified about your session and subscription requests.",
			name, update.Message.Chat.ID,
		),
	}
}
