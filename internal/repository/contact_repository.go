package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository каналы доставки уведомлений пользователям
type ContactRepository struct {
	*base.Repository
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{Repository: base.NewRepository(pool)}
}

// TelegramChatID возвращает чат пользователя. ok = false, если пользователь не привязал Telegram.
func (r *ContactRepository) TelegramChatID(ctx context.Context, userID int64) (int64, bool, error) {
	var chatID *int64
	err := r.QueryRow(ctx, `SELECT telegram_chat_id FROM user_contacts WHERE user_id = $1`, userID).Scan(&chatID)
	if err != nil {
		if base.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get telegram chat id: %w", err)
	}
	if chatID == nil {
		return 0, false, nil
	}
	return *chatID, true, nil
}

// SetTelegramChatID привязывает чат к пользователю
func (r *ContactRepository) SetTelegramChatID(ctx context.Context, userID, chatID int64) error {
	query := `
		INSERT INTO user_contacts (user_id, telegram_chat_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET telegram_chat_id = EXCLUDED.telegram_chat_id, updated_at = now()
	`
	if _, err := r.ExecAffected(ctx, query, userID, chatID); err != nil {
		return fmt.Errorf("set telegram chat id: %w", err)
	}
	return nil
}
