package nlu

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// ClaudeExtractor разбирает сообщения родителей через Anthropic API.
type ClaudeExtractor struct {
	llm           llms.Model
	timeout       time.Duration
	minConfidence float64
	loc           *time.Location
}

func NewClaude(apiKey, model string, timeout time.Duration, minConfidence float64, loc *time.Location) (*ClaudeExtractor, error) {
	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("anthropic client: %w", err)
	}
	return &ClaudeExtractor{
		llm:           llm,
		timeout:       timeout,
		minConfidence: minConfidence,
		loc:           loc,
	}, nil
}

func (c *ClaudeExtractor) Extract(ctx context.Context, text string) Result {
	ctx, cancel := ctxutil.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, buildPrompt(text, time.Now().In(c.loc)),
		llms.WithMaxTokens(1024),
		llms.WithTemperature(0),
	)
	if err != nil {
		metrics.ObserveExtraction("failure", time.Since(start))
		return Result{Kind: KindFailure, Err: fmt.Errorf("%w: %v", ErrGateway, err)}
	}

	raw := ExtractJSON(out)
	if raw == "" {
		metrics.ObserveExtraction("failure", time.Since(start))
		return Result{Kind: KindFailure, Err: fmt.Errorf("%w: пустой ответ модели", ErrGateway)}
	}

	res := Validate(raw, c.minConfidence, c.loc)
	switch res.Kind {
	case KindExtracted:
		metrics.ObserveExtraction("ok", time.Since(start))
	case KindClarification:
		metrics.ObserveExtraction("clarification", time.Since(start))
	default:
		metrics.ObserveExtraction("failure", time.Since(start))
	}
	return res
}

func buildPrompt(text string, now time.Time) string {
	return fmt.Sprintf(`Ты — секретарь школы, отвечающий за учёт посещаемости. Прочитай сообщение родителя и выдели запрос.

Сообщение: %q
Сегодня: %s

Определи намерение:
- "create" — сообщают о новом отсутствии/опоздании/раннем уходе ("Петя заболел", "Аня опоздает");
- "update" — правят уже отправленное (есть слова «исправьте», «не …, а …», «поменяйте»);
- "cancel" — отменяют отправленное («отмените», «уже выздоровел», «всё-таки придёт»).

Поля:
- student_name: имя ребёнка как в сообщении; для update/cancel без имени — пустая строка;
- date: YYYY-MM-DD, «сегодня»/«завтра» переводи по текущей дате; если даты нет — сегодня;
- end_date: YYYY-MM-DD только для периода («с понедельника по среду»), иначе null;
- attendance_type: "absence" | "lateness" | "early_leave"; для update/cancel допустим null;
- attendance_reason: "illness" | "unauthorized" | "authorized"; «болеет/врач/температура» — illness,
  «экскурсия/соревнования/семейные обстоятельства с разрешения школы» — authorized,
  «проспал/без причины/не сказали» — unauthorized; по умолчанию unauthorized;
- confidence: 0.0–1.0.

Ответь только JSON-объектом:
{"intent": "...", "student_name": "...", "date": "...", "end_date": null, "attendance_type": "...", "attendance_reason": "...", "confidence": 0.0}`,
		text, now.Format("2006-01-02"))
}
