package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/lib/pq"
)

const documentCols = `id, student_id, attendance_record_id, date, is_submitted, submitted_at,
	document_type, file_path, file_telegram_id, reminder_sent, reminder_sent_at, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.DocumentSubmission, error) {
	var d models.DocumentSubmission
	if err := row.Scan(&d.ID, &d.StudentID, &d.AttendanceRecordID, &d.Date, &d.IsSubmitted, &d.SubmittedAt,
		&d.DocumentType, &d.FilePath, &d.FileTelegramID, &d.ReminderSent, &d.ReminderSentAt,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// LatestUnsubmittedDocument — свежайшее по дате непогашенное требование ученика.
// Именно к нему привязывается присланная фотография.
func LatestUnsubmittedDocument(ctx context.Context, database *sql.DB, studentID int64) (*models.DocumentSubmission, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	doc, err := scanDocument(database.QueryRowContext(ctx, `
		SELECT `+documentCols+`
		FROM document_submissions
		WHERE student_id = $1 AND is_submitted = FALSE
		ORDER BY date DESC, id DESC
		LIMIT 1
	`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

func MarkDocumentSubmitted(ctx context.Context, database *sql.DB, docID int64, filePath, fileTelegramID string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE document_submissions
		SET is_submitted = TRUE, submitted_at = now(), file_path = $1, file_telegram_id = $2, updated_at = now()
		WHERE id = $3
	`, filePath, fileTelegramID, docID)
	return err
}

func CountDocumentsByRecord(ctx context.Context, database *sql.DB, recordID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM document_submissions WHERE attendance_record_id = $1
	`, recordID).Scan(&n)
	return n, err
}

// DocumentDue — кандидат на напоминание.
type DocumentDue struct {
	Doc         models.DocumentSubmission
	StudentName string
}

// DocumentsDueForReminder — непогашенные требования старше intervalText
// (например, "24 hours"), по которым напоминание ещё не отправлялось.
// Напоминаем один раз на документ.
func DocumentsDueForReminder(ctx context.Context, database *sql.DB, intervalText string, limit int) ([]DocumentDue, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT s.name,
		       d.id, d.student_id, d.attendance_record_id, d.date, d.is_submitted, d.submitted_at,
		       d.document_type, d.file_path, d.file_telegram_id, d.reminder_sent, d.reminder_sent_at,
		       d.created_at, d.updated_at
		FROM document_submissions d
		JOIN students s ON s.id = d.student_id
		WHERE d.is_submitted = FALSE
		  AND d.reminder_sent = FALSE
		  AND d.created_at < now() - $1::interval
		ORDER BY d.created_at
		LIMIT $2
	`, intervalText, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DocumentDue
	for rows.Next() {
		var dd DocumentDue
		d := &dd.Doc
		if err := rows.Scan(&dd.StudentName,
			&d.ID, &d.StudentID, &d.AttendanceRecordID, &d.Date, &d.IsSubmitted, &d.SubmittedAt,
			&d.DocumentType, &d.FilePath, &d.FileTelegramID, &d.ReminderSent, &d.ReminderSentAt,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, dd)
	}
	return out, rows.Err()
}

func MarkDocumentsReminded(ctx context.Context, database *sql.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE document_submissions
		SET reminder_sent = TRUE, reminder_sent_at = now(), updated_at = now()
		WHERE id = ANY($1)
	`, pq.Array(ids))
	return err
}
