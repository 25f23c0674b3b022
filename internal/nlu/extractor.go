package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

type Intent string

const (
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentCancel Intent = "cancel"
)

// Extraction — проверенный результат разбора сообщения. За пределы этого
// пакета сырые данные шлюза не выходят.
type Extraction struct {
	Intent      Intent
	StudentName string
	Date        *time.Time
	EndDate     *time.Time
	Type        *models.AttendanceType
	Reason      *models.AttendanceReason
	Confidence  float64
}

type Kind int

const (
	// KindExtracted — валидное извлечение, можно диспетчеризовать.
	KindExtracted Kind = iota
	// KindClarification — уверенность ниже порога, нужен переспрос.
	KindClarification
	// KindMissingField — create без типа/причины из закрытых перечислений.
	KindMissingField
	// KindFailure — таймаут шлюза или неразборчивый ответ.
	KindFailure
)

// Result — сумма исходов extract(text): Extraction | ClarificationNeeded | GatewayFailure.
type Result struct {
	Kind       Kind
	Extraction *Extraction
	// RawJSON сохраняется в журнал независимо от исхода валидации.
	RawJSON string
	Err     error
}

// Extractor — граница NLU-шлюза.
type Extractor interface {
	Extract(ctx context.Context, text string) Result
}

var (
	ErrGateway      = errors.New("сбой NLU-шлюза")
	ErrMissingField = errors.New("для регистрации нужны тип и причина")
)

// сырой ответ шлюза; поля намеренно нестрогие
type payload struct {
	Intent           string  `json:"intent"`
	StudentName      string  `json:"student_name"`
	Date             string  `json:"date"`
	EndDate          string  `json:"end_date"`
	AttendanceType   string  `json:"attendance_type"`
	AttendanceReason string  `json:"attendance_reason"`
	Confidence       float64 `json:"confidence"`
}

// Validate превращает сырой JSON шлюза в Result. Политика не доверяет шлюзу:
// порог уверенности и закрытые перечисления проверяются здесь, а не в промпте.
func Validate(raw string, minConfidence float64, loc *time.Location) Result {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Result{Kind: KindFailure, RawJSON: raw, Err: errors.Join(ErrGateway, err)}
	}

	if p.Confidence < minConfidence {
		return Result{Kind: KindClarification, RawJSON: raw}
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(p.Intent)))
	switch intent {
	case IntentCreate, IntentUpdate, IntentCancel:
	default:
		return Result{Kind: KindFailure, RawJSON: raw, Err: ErrGateway}
	}

	e := &Extraction{
		Intent:      intent,
		StudentName: strings.TrimSpace(p.StudentName),
		Confidence:  p.Confidence,
	}

	if d, ok := parseDate(p.Date, loc); ok {
		e.Date = &d
	}
	if d, ok := parseDate(p.EndDate, loc); ok {
		e.EndDate = &d
	}
	if t := models.AttendanceType(strings.TrimSpace(p.AttendanceType)); t != "" && t.Valid() {
		e.Type = &t
	}
	if r := models.AttendanceReason(strings.TrimSpace(p.AttendanceReason)); r != "" && r.Valid() {
		e.Reason = &r
	}

	// create требует тип и причину строго из перечислений; умолчания запрещены
	if intent == IntentCreate && (e.Type == nil || e.Reason == nil) {
		return Result{Kind: KindMissingField, RawJSON: raw, Err: ErrMissingField}
	}
	// дата по умолчанию — сегодня, только для create
	if intent == IntentCreate && e.Date == nil {
		today := truncateDate(time.Now().In(loc))
		e.Date = &today
	}

	return Result{Kind: KindExtracted, Extraction: e, RawJSON: raw}
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ExtractJSON достаёт JSON-объект из ответа модели: из блока ```json ... ```
// либо по крайним фигурным скобкам.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(s[start : end+1])
	}
	return ""
}
