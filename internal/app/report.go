package app

import (
	"context"
	"os"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/export"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleMonthlyReport — /report: книга с записями за текущий месяц.
// Доступно только администраторам из ADMIN_IDS.
func (p *Processor) HandleMonthlyReport(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64, adminIDs []int64, loc *time.Location) {
	if !isAdmin(chatID, adminIDs) {
		p.send(bot, chatID, "🚫 Только для администратора")
		return
	}

	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, -1)

	rows, err := db.ListRecordsForPeriod(ctx, p.DB, from, to)
	if err != nil {
		p.fail("report", err)
		p.send(bot, chatID, replyPersistenceError())
		return
	}
	if len(rows) == 0 {
		p.send(bot, chatID, "За этот месяц записей нет.")
		return
	}

	path, err := export.GenerateAttendanceReport(rows, now.Format("2006-01"))
	if err != nil {
		p.fail("report", err)
		p.send(bot, chatID, "Не удалось сформировать отчёт.")
		return
	}
	defer func() { _ = os.Remove(path) }()

	docMsg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	docMsg.Caption = "📊 Посещаемость за " + now.Format("01.2006")
	if _, err := tg.Send(bot, docMsg); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func isAdmin(chatID int64, adminIDs []int64) bool {
	for _, id := range adminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
