package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	var s models.Student
	if err := row.Scan(&s.ID, &s.Name, &s.StudentNumber, &s.Phone, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func GetStudentByID(ctx context.Context, database *sql.DB, id int64) (*models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	st, err := scanStudent(database.QueryRowContext(ctx, `
		SELECT id, name, student_number, phone, created_at
		FROM students WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

// GetStudentByExactName — точное совпадение полного имени.
func GetStudentByExactName(ctx context.Context, database *sql.DB, name string) (*models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	st, err := scanStudent(database.QueryRowContext(ctx, `
		SELECT id, name, student_number, phone, created_at
		FROM students WHERE name = $1
		ORDER BY id LIMIT 1
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

// ListStudents — весь реестр (школа небольшая, подстрочные сравнения делаем в Go).
func ListStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, name, student_number, phone, created_at
		FROM students ORDER BY student_number
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.StudentNumber, &s.Phone, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func CreateStudent(ctx context.Context, database *sql.DB, name string, number int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO students (name, student_number) VALUES ($1, $2)
		RETURNING id
	`, name, number).Scan(&id)
	return id, err
}
