package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandlePhoto привязывает присланную фотографию к свежайшему непогашенному
// требованию документа ученика отправителя. Машина намерений не участвует.
func (p *Processor) HandlePhoto(ctx context.Context, bot *tgbotapi.BotAPI, msg *tgbotapi.Message, uploadDir string) {
	chatID := msg.Chat.ID
	sender := strconv.FormatInt(msg.From.ID, 10)

	link, err := db.GetActiveParentLink(ctx, p.DB, sender)
	if err != nil {
		p.fail("photo", err)
		p.send(bot, chatID, replyPersistenceError())
		return
	}
	if link == nil {
		p.send(bot, chatID, "Вы ещё не зарегистрированы.\nСначала отправьте сообщение об отсутствии ребёнка — регистрация произойдёт автоматически.")
		return
	}

	student, err := db.GetStudentByID(ctx, p.DB, link.StudentID)
	if err != nil || student == nil {
		p.fail("photo", fmt.Errorf("student by link %d: %w", link.ID, err))
		p.send(bot, chatID, replyPersistenceError())
		return
	}

	doc, err := db.LatestUnsubmittedDocument(ctx, p.DB, student.ID)
	if err != nil {
		p.fail("photo", err)
		p.send(bot, chatID, replyPersistenceError())
		return
	}
	if doc == nil {
		p.send(bot, chatID, fmt.Sprintf("У ученика %s нет несданных документов.", student.Name))
		return
	}

	// телеграм кладёт варианты по возрастанию размера — берём последний
	photos := msg.Photo
	if len(photos) == 0 {
		return
	}
	fileID := photos[len(photos)-1].FileID

	fileName := fmt.Sprintf("%d_%d.jpg", student.ID, time.Now().Unix())
	if err := downloadPhoto(ctx, bot, fileID, filepath.Join(uploadDir, fileName)); err != nil {
		p.fail("photo", err)
		p.send(bot, chatID, "Не удалось сохранить фотографию.\nПопробуйте ещё раз через минуту.")
		return
	}

	if err := db.MarkDocumentSubmitted(ctx, p.DB, doc.ID, fileName, fileID); err != nil {
		p.fail("photo", err)
		p.send(bot, chatID, replyPersistenceError())
		return
	}

	docType := "документ"
	if doc.DocumentType != nil {
		docType = *doc.DocumentType
	}
	p.Log.Infow("документ принят", "student", student.Name, "doc", doc.ID)
	p.send(bot, chatID, fmt.Sprintf("✅ Документ для ученика %s принят!\n\n📅 Дата: %s\n📋 Вид: %s\n\nОкончательно подтвердит классный руководитель.",
		student.Name, doc.Date.Format(dateLayout), docType))
}

func (p *Processor) send(bot *tgbotapi.BotAPI, chatID int64, text string) {
	if _, err := tg.Send(bot, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

func downloadPhoto(ctx context.Context, bot *tgbotapi.BotAPI, fileID, dst string) error {
	url, err := bot.GetFileDirectURL(fileID)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != 200 {
		return errors.New("telegram file status: " + resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	_, err = io.Copy(out, resp.Body)
	return err
}
