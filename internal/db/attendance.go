package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// ErrNoPendingRecord — у ученика нет записи в статусе pending.
var ErrNoPendingRecord = errors.New("нет записи в статусе ожидания")

const attendanceCols = `id, student_id, date, attendance_type, attendance_reason, approval_status,
	original_message, extraction_log, modified_by, modified_at, modification_reason, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (*models.AttendanceRecord, error) {
	var r models.AttendanceRecord
	if err := row.Scan(&r.ID, &r.StudentID, &r.Date, &r.Type, &r.Reason, &r.ApprovalStatus,
		&r.OriginalMessage, &r.ExtractionLog, &r.ModifiedBy, &r.ModifiedAt, &r.ModificationReason,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreatePendingRecord вставляет запись и, если требуется, связанное требование
// документа — одной транзакцией: пары «запись+документ» не бывают половинчатыми.
func CreatePendingRecord(ctx context.Context, database *sql.DB, rec models.AttendanceRecord, docType *string) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_records (student_id, date, attendance_type, attendance_reason, approval_status, original_message, extraction_log)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
		RETURNING id
	`, rec.StudentID, rec.Date, rec.Type, rec.Reason, rec.OriginalMessage, rec.ExtractionLog).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attendance: %w", err)
	}

	if docType != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO document_submissions (student_id, attendance_record_id, date, is_submitted, document_type)
			VALUES ($1, $2, $3, FALSE, $4)
		`, rec.StudentID, id, rec.Date, *docType)
		if err != nil {
			return 0, fmt.Errorf("insert document requirement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// MostRecentPending — последняя созданная pending-запись ученика (по created_at, не по дате).
func MostRecentPending(ctx context.Context, database *sql.DB, studentID int64) (*models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rec, err := scanAttendance(database.QueryRowContext(ctx, `
		SELECT `+attendanceCols+`
		FROM attendance_records
		WHERE student_id = $1 AND approval_status = 'pending'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// AttendancePatch — частичная правка: применяются только непустые поля.
type AttendancePatch struct {
	Date   *time.Time
	Type   *models.AttendanceType
	Reason *models.AttendanceReason
	// Note дописывается в хвост original_message, история не перезаписывается.
	Note string
}

func (p AttendancePatch) Empty() bool {
	return p.Date == nil && p.Type == nil && p.Reason == nil
}

// UpdateMostRecentPending правит последнюю pending-запись под блокировкой строки.
// approved/rejected записи не затрагиваются по построению запроса.
func UpdateMostRecentPending(ctx context.Context, database *sql.DB, studentID int64, patch AttendancePatch) (*models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := scanAttendance(tx.QueryRowContext(ctx, `
		SELECT `+attendanceCols+`
		FROM attendance_records
		WHERE student_id = $1 AND approval_status = 'pending'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPendingRecord
	}
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		rec.Date = *patch.Date
	}
	if patch.Type != nil {
		rec.Type = *patch.Type
	}
	if patch.Reason != nil {
		rec.Reason = *patch.Reason
	}
	if patch.Note != "" {
		rec.OriginalMessage = rec.OriginalMessage + "\n[правка: " + patch.Note + "]"
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE attendance_records
		SET date = $1, attendance_type = $2, attendance_reason = $3, original_message = $4, updated_at = now()
		WHERE id = $5
	`, rec.Date, rec.Type, rec.Reason, rec.OriginalMessage, rec.ID); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// CancelMostRecentPending удаляет последнюю pending-запись и каскадно её
// требования документов. Удаление безвозвратное.
func CancelMostRecentPending(ctx context.Context, database *sql.DB, studentID int64) (*models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := scanAttendance(tx.QueryRowContext(ctx, `
		SELECT `+attendanceCols+`
		FROM attendance_records
		WHERE student_id = $1 AND approval_status = 'pending'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPendingRecord
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM document_submissions WHERE attendance_record_id = $1
	`, rec.ID); err != nil {
		return nil, fmt.Errorf("delete documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attendance_records WHERE id = $1
	`, rec.ID); err != nil {
		return nil, fmt.Errorf("delete attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func CountRecordsByStudent(ctx context.Context, database *sql.DB, studentID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var n int
	err := database.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE student_id = $1
	`, studentID).Scan(&n)
	return n, err
}

// RecordRow — строка месячного отчёта.
type RecordRow struct {
	StudentName   string
	StudentNumber int64
	Record        models.AttendanceRecord
}

// ListRecordsForPeriod — записи за период с именами учеников, для экспорта.
func ListRecordsForPeriod(ctx context.Context, database *sql.DB, from, to time.Time) ([]RecordRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT s.name, s.student_number,
		       r.id, r.student_id, r.date, r.attendance_type, r.attendance_reason, r.approval_status,
		       r.original_message, r.extraction_log, r.modified_by, r.modified_at, r.modification_reason,
		       r.created_at, r.updated_at
		FROM attendance_records r
		JOIN students s ON s.id = r.student_id
		WHERE r.date >= $1 AND r.date <= $2
		ORDER BY r.date, s.student_number
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RecordRow
	for rows.Next() {
		var rr RecordRow
		r := &rr.Record
		if err := rows.Scan(&rr.StudentName, &rr.StudentNumber,
			&r.ID, &r.StudentID, &r.Date, &r.Type, &r.Reason, &r.ApprovalStatus,
			&r.OriginalMessage, &r.ExtractionLog, &r.ModifiedBy, &r.ModifiedAt, &r.ModificationReason,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
