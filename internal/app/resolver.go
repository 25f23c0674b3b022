package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// ErrStudentNotFound — ни имя, ни связь отправителя не привели к ученику.
var ErrStudentNotFound = errors.New("ученик не найден")

// фамильярные хвосты имён, которые отбрасываем перед сопоставлением
// («Кильдон-и» → «Кильдон»); срезается не больше одного
var fillerSuffixes = []string{"이", "-i"}

// NormalizeCandidate срезает один фамильярный хвост с конца имени.
func NormalizeCandidate(name string) string {
	name = strings.TrimSpace(name)
	for _, suf := range fillerSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suf); ok && trimmed != "" {
			return strings.TrimSpace(trimmed)
		}
	}
	return name
}

// MatchRegistry сопоставляет имя-кандидат с реестром, ступени по порядку:
// точное совпадение, вхождение кандидата в имя, обратное вхождение.
// Внутри ступени побеждает самое короткое зарегистрированное имя, а не
// первое попавшееся в порядке реестра.
func MatchRegistry(students []models.Student, candidate string) *models.Student {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil
	}
	cLower := strings.ToLower(candidate)

	// 1. точное совпадение
	for i := range students {
		if strings.EqualFold(students[i].Name, candidate) {
			return &students[i]
		}
	}

	// 2. имя в реестре содержит кандидата
	if best := shortest(students, func(name string) bool {
		return strings.Contains(strings.ToLower(name), cLower)
	}); best != nil {
		return best
	}

	// 3. обратное вхождение: кандидат содержит имя, либо имя кончается кандидатом
	return shortest(students, func(name string) bool {
		nLower := strings.ToLower(name)
		return strings.Contains(cLower, nLower) || strings.HasSuffix(nLower, cLower)
	})
}

func shortest(students []models.Student, ok func(name string) bool) *models.Student {
	var best *models.Student
	for i := range students {
		if !ok(students[i].Name) {
			continue
		}
		if best == nil || len(students[i].Name) < len(best.Name) {
			best = &students[i]
		}
	}
	return best
}

// ResolveStudent находит ученика по имени из сообщения, с откатом на активную
// связь отправителя, когда имени нет или оно никому не подошло.
func ResolveStudent(ctx context.Context, database *sql.DB, candidateName string, telegramID string) (*models.Student, error) {
	if name := NormalizeCandidate(candidateName); name != "" {
		students, err := db.ListStudents(ctx, database)
		if err != nil {
			return nil, err
		}
		if st := MatchRegistry(students, name); st != nil {
			return st, nil
		}
	}

	link, err := db.GetActiveParentLink(ctx, database, telegramID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		st, err := db.GetStudentByID(ctx, database, link.StudentID)
		if err != nil {
			return nil, err
		}
		if st != nil {
			return st, nil
		}
	}
	return nil, ErrStudentNotFound
}
