package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
)

// AppendMessageLog пишет строку журнала извлечений. Журнал только растёт:
// ни правок, ни удалений из кода бота.
func AppendMessageLog(ctx context.Context, database *sql.DB, telegramUserID, text string, extracted *string, success bool, errMsg *string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO messages_log (telegram_user_id, message_text, extracted_data, extraction_success, error_message)
		VALUES ($1, $2, $3, $4, $5)
	`, telegramUserID, text, extracted, success, errMsg)
	return err
}

func CountMessageLog(ctx context.Context, database *sql.DB, telegramUserID string) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages_log WHERE telegram_user_id = $1
	`, telegramUserID).Scan(&n)
	return n, err
}
