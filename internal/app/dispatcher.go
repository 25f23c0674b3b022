package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/nlu"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"go.uber.org/zap"
)

// Processor — машина намерений: извлечение → ученик → create/update/cancel.
// Телеграм-обвязка снаружи; ядро принимает текст и возвращает текст ответа.
type Processor struct {
	DB        *sql.DB
	Extractor nlu.Extractor
	Limiter   *StudentLimiter
	Log       *zap.SugaredLogger

	insertRecord func(ctx context.Context, database *sql.DB, rec models.AttendanceRecord, docType *string) (int64, error)
}

func NewProcessor(database *sql.DB, extractor nlu.Extractor, log *zap.SugaredLogger) *Processor {
	return &Processor{
		DB:           database,
		Extractor:    extractor,
		Limiter:      NewStudentLimiter(),
		Log:          log,
		insertRecord: db.CreatePendingRecord,
	}
}

// HandleText обрабатывает одно входящее сообщение до конца и возвращает ответ
// отправителю. Каждое сообщение — независимая единица работы.
func (p *Processor) HandleText(ctx context.Context, senderID int64, text string) string {
	sender := strconv.FormatInt(senderID, 10)
	ctx = ctxutil.WithChatID(ctx, senderID)

	res := p.Extractor.Extract(ctx, text)
	p.appendAudit(ctx, sender, text, res)

	switch res.Kind {
	case nlu.KindClarification:
		return replyClarification()
	case nlu.KindMissingField:
		return replyMissingField()
	case nlu.KindFailure:
		p.Log.Warnw("извлечение не удалось", "sender", sender, "err", res.Err)
		return replyGatewayFailure()
	}

	e := res.Extraction
	student, err := ResolveStudent(ctx, p.DB, e.StudentName, sender)
	if errors.Is(err, ErrStudentNotFound) {
		return replyStudentNotFound(e.StudentName)
	}
	if err != nil {
		p.fail("resolve", err)
		return replyPersistenceError()
	}

	// с этого места — строго по одному сообщению на ученика
	unlock := p.Limiter.Lock(student.ID)
	defer unlock()
	ctx = ctxutil.WithStudentID(ctx, student.ID)

	// авторегистрация связи; её сбой не останавливает обработку
	if err := db.EnsureParentLink(ctx, p.DB, student.ID, sender); err != nil {
		p.fail("parent-link", err)
	}

	var reply string
	switch e.Intent {
	case nlu.IntentCancel:
		reply = p.handleCancel(ctx, student)
	case nlu.IntentUpdate:
		reply = p.handleUpdate(ctx, student, e, text)
	default:
		reply = p.handleCreate(ctx, student, e, text, res.RawJSON)
	}
	return reply
}

func (p *Processor) handleCreate(ctx context.Context, student *models.Student, e *nlu.Extraction, text, rawJSON string) string {
	dates, err := ExpandDateRange(*e.Date, e.EndDate)
	if errors.Is(err, ErrInvalidRange) {
		metrics.IntentOutcomes.WithLabelValues("create", "invalid_range").Inc()
		return replyInvalidRange()
	}
	if err != nil {
		p.fail("create", err)
		return replyPersistenceError()
	}

	// каждая дата коммитится отдельно: пара «запись+документ» атомарна,
	// период в целом — нет
	docCount := 0
	for i, d := range dates {
		docType := DocumentTypeFor(*e.Type, *e.Reason)
		rec := models.AttendanceRecord{
			StudentID:       student.ID,
			Date:            d,
			Type:            *e.Type,
			Reason:          *e.Reason,
			OriginalMessage: text,
			ExtractionLog:   rawJSON,
		}
		if _, err := p.insertRecord(ctx, p.DB, rec, docType); err != nil {
			p.fail("create", err)
			metrics.IntentOutcomes.WithLabelValues("create", "partial").Inc()
			if i > 0 {
				return replyCreatedPartial(student.Name, i, len(dates), d)
			}
			return replyPersistenceError()
		}
		if docType != nil {
			docCount++
		}
	}

	metrics.IntentOutcomes.WithLabelValues("create", "ok").Inc()
	p.Log.Infow("записи созданы", "student", student.Name, "dates", len(dates), "docs", docCount)
	return replyCreated(student.Name, dates, *e.Type, *e.Reason, docCount)
}

func (p *Processor) handleUpdate(ctx context.Context, student *models.Student, e *nlu.Extraction, text string) string {
	// отсутствие pending-записи важнее пустого патча: сперва смотрим, есть ли
	// вообще что править
	pending, err := db.MostRecentPending(ctx, p.DB, student.ID)
	if err != nil {
		p.fail("update", err)
		return replyPersistenceError()
	}
	if pending == nil {
		metrics.IntentOutcomes.WithLabelValues("update", "no_pending").Inc()
		return replyNoPending(student.Name)
	}

	patch := db.AttendancePatch{
		Date:   e.Date,
		Type:   e.Type,
		Reason: e.Reason,
		Note:   text,
	}
	if patch.Empty() {
		metrics.IntentOutcomes.WithLabelValues("update", "no_changes").Inc()
		return replyNoChanges()
	}

	rec, err := db.UpdateMostRecentPending(ctx, p.DB, student.ID, patch)
	if errors.Is(err, db.ErrNoPendingRecord) {
		metrics.IntentOutcomes.WithLabelValues("update", "no_pending").Inc()
		return replyNoPending(student.Name)
	}
	if err != nil {
		p.fail("update", err)
		return replyPersistenceError()
	}

	var changed []string
	if e.Date != nil {
		changed = append(changed, "дата → "+e.Date.Format(dateLayout))
	}
	if e.Type != nil {
		changed = append(changed, "тип → "+e.Type.Label())
	}
	if e.Reason != nil {
		changed = append(changed, "причина → "+e.Reason.Label())
	}

	metrics.IntentOutcomes.WithLabelValues("update", "ok").Inc()
	p.Log.Infow("запись исправлена", "student", student.Name, "record", rec.ID, "changed", changed)
	return replyUpdated(student.Name, changed)
}

func (p *Processor) handleCancel(ctx context.Context, student *models.Student) string {
	rec, err := db.CancelMostRecentPending(ctx, p.DB, student.ID)
	if errors.Is(err, db.ErrNoPendingRecord) {
		metrics.IntentOutcomes.WithLabelValues("cancel", "no_pending").Inc()
		return replyNoPending(student.Name)
	}
	if err != nil {
		p.fail("cancel", err)
		return replyPersistenceError()
	}

	metrics.IntentOutcomes.WithLabelValues("cancel", "ok").Inc()
	p.Log.Infow("запись отменена", "student", student.Name, "date", rec.Date.Format(dateLayout))
	return replyCanceled(student.Name, rec)
}

// appendAudit пишет строку журнала для каждого входящего сообщения,
// независимо от исхода. Сбой журнала обработку не останавливает.
func (p *Processor) appendAudit(ctx context.Context, sender, text string, res nlu.Result) {
	var extracted *string
	if res.RawJSON != "" {
		extracted = &res.RawJSON
	}
	var errMsg *string
	if res.Kind != nlu.KindExtracted {
		m := auditReason(res)
		errMsg = &m
	}
	if err := db.AppendMessageLog(ctx, p.DB, sender, text, extracted, res.Kind == nlu.KindExtracted, errMsg); err != nil {
		p.fail("audit", err)
	}
}

func auditReason(res nlu.Result) string {
	switch res.Kind {
	case nlu.KindClarification:
		return "уверенность ниже порога"
	case nlu.KindMissingField:
		return "не хватает типа или причины"
	default:
		if res.Err != nil {
			return res.Err.Error()
		}
		return "сбой извлечения"
	}
}

func (p *Processor) fail(op string, err error) {
	metrics.HandlerErrors.Inc()
	observability.CaptureErr(fmt.Errorf("%s: %w", op, err))
	p.Log.Errorw("ошибка обработки", "op", op, "err", err)
}
