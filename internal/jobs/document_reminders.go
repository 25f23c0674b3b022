package jobs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DocumentReminders — задача напоминаний о несданных документах: требования
// старше суток, по которым ещё не напоминали, рассылаются всем активным
// связям ученика и помечаются. Одно напоминание на документ.
func DocumentReminders(bot *tgbotapi.BotAPI, database *sql.DB) Job {
	return func(ctx context.Context) error {
		due, err := db.DocumentsDueForReminder(ctx, database, "24 hours", 100)
		if err != nil {
			observability.CaptureErr(err)
			return err
		}
		if len(due) == 0 {
			return nil
		}

		done := make([]int64, 0, len(due))
		for _, d := range due {
			links, err := db.ListActiveParentLinksByStudent(ctx, database, d.Doc.StudentID)
			if err != nil {
				observability.CaptureErr(err)
				continue
			}
			if len(links) == 0 {
				// некому напоминать; пометим, чтобы не перебирать документ вечно
				done = append(done, d.Doc.ID)
				continue
			}

			docType := "документ"
			if d.Doc.DocumentType != nil {
				docType = *d.Doc.DocumentType
			}
			text := fmt.Sprintf("📎 Напоминание: для ученика %s за %s ещё не сдан документ (%s).\nСфотографируйте его и пришлите в этот чат.",
				d.StudentName, d.Doc.Date.Format("02.01.2006"), docType)

			sent := false
			for _, l := range links {
				var chatID int64
				if _, err := fmt.Sscanf(l.TelegramID, "%d", &chatID); err != nil {
					continue
				}
				if _, err := tg.Send(bot, tgbotapi.NewMessage(chatID, text)); err != nil {
					observability.CaptureErr(err)
					continue
				}
				sent = true
			}
			if sent {
				done = append(done, d.Doc.ID)
			}
		}

		if len(done) > 0 {
			if err := db.MarkDocumentsReminded(ctx, database, done); err != nil {
				observability.CaptureErr(err)
				return err
			}
		}
		return nil
	}
}
