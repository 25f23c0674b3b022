package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// GetActiveParentLink — активная связь отправителя; самая ранняя, если их несколько.
func GetActiveParentLink(ctx context.Context, database *sql.DB, telegramID string) (*models.ParentLink, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var l models.ParentLink
	err := database.QueryRowContext(ctx, `
		SELECT id, student_id, telegram_id, parent_name, relation, is_active, auto_registered, first_contact_at, created_at
		FROM student_parents
		WHERE telegram_id = $1 AND is_active = TRUE
		ORDER BY created_at
		LIMIT 1
	`, telegramID).Scan(&l.ID, &l.StudentID, &l.TelegramID, &l.ParentName, &l.Relation,
		&l.IsActive, &l.AutoRegistered, &l.FirstContactAt, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListActiveParentLinksByStudent — все активные связи ученика (для рассылки напоминаний).
func ListActiveParentLinksByStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.ParentLink, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, student_id, telegram_id, parent_name, relation, is_active, auto_registered, first_contact_at, created_at
		FROM student_parents
		WHERE student_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ParentLink
	for rows.Next() {
		var l models.ParentLink
		if err := rows.Scan(&l.ID, &l.StudentID, &l.TelegramID, &l.ParentName, &l.Relation,
			&l.IsActive, &l.AutoRegistered, &l.FirstContactAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// EnsureParentLink — идемпотентная авторегистрация по паре (student, telegram_id).
// Существующие связи не трогаем: деактивированная вручную связь не оживает.
func EnsureParentLink(ctx context.Context, database *sql.DB, studentID int64, telegramID string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO student_parents (student_id, telegram_id, auto_registered, is_active)
		VALUES ($1, $2, TRUE, TRUE)
		ON CONFLICT (student_id, telegram_id) DO NOTHING
	`, studentID, telegramID)
	return err
}

// DeactivateParentLink — административное отключение связи.
func DeactivateParentLink(ctx context.Context, database *sql.DB, linkID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE student_parents SET is_active = FALSE WHERE id = $1
	`, linkID)
	return err
}
