//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/testutil/testdb"
)

func mustStudent(t *testing.T, database *sql.DB, name string, number int64) int64 {
	t.Helper()
	id, err := db.CreateStudent(context.Background(), database, name, number)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrStr(s string) *string { return &s }

func TestCreatePendingRecord_WithAndWithoutDocument(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Иванов Пётр", 1)

	withDoc := models.AttendanceRecord{
		StudentID:       stID,
		Date:            day(2026, 3, 10),
		Type:            models.Absence,
		Reason:          models.Illness,
		OriginalMessage: "Петя заболел",
		ExtractionLog:   `{"intent":"create"}`,
	}
	recID, err := db.CreatePendingRecord(ctx, h.DB, withDoc, ptrStr("медицинская справка"))
	if err != nil {
		t.Fatal(err)
	}
	n, err := db.CountDocumentsByRecord(ctx, h.DB, recID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("ожидали 1 требование документа, получили %d", n)
	}

	withoutDoc := models.AttendanceRecord{
		StudentID: stID,
		Date:      day(2026, 3, 11),
		Type:      models.Lateness,
		Reason:    models.Unauthorized,
	}
	recID2, err := db.CreatePendingRecord(ctx, h.DB, withoutDoc, nil)
	if err != nil {
		t.Fatal(err)
	}
	n, err = db.CountDocumentsByRecord(ctx, h.DB, recID2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("опоздание не создаёт требований, получили %d", n)
	}

	total, err := db.CountRecordsByStudent(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", total)
	}
}

func TestMostRecentPending_ByCreatedAt(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Петров Иван", 2)

	// первая запись с поздней датой, вторая — с ранней: свежесть считаем
	// по моменту создания, не по дате пропуска
	first := models.AttendanceRecord{StudentID: stID, Date: day(2026, 3, 20), Type: models.Absence, Reason: models.Unauthorized}
	if _, err := db.CreatePendingRecord(ctx, h.DB, first, nil); err != nil {
		t.Fatal(err)
	}
	second := models.AttendanceRecord{StudentID: stID, Date: day(2026, 3, 5), Type: models.Lateness, Reason: models.Unauthorized}
	secondID, err := db.CreatePendingRecord(ctx, h.DB, second, nil)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := db.MostRecentPending(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != secondID {
		t.Fatalf("ожидали последнюю созданную запись %d, получили %v", secondID, rec)
	}
}

func TestUpdateMostRecentPending_PartialPatch(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Сидорова Анна", 3)

	rec := models.AttendanceRecord{
		StudentID:       stID,
		Date:            day(2026, 3, 10),
		Type:            models.Absence,
		Reason:          models.Illness,
		OriginalMessage: "Аня заболела",
	}
	recID, err := db.CreatePendingRecord(ctx, h.DB, rec, ptrStr("медицинская справка"))
	if err != nil {
		t.Fatal(err)
	}

	newType := models.Lateness
	got, err := db.UpdateMostRecentPending(ctx, h.DB, stID, db.AttendancePatch{
		Type: &newType,
		Note: "на самом деле опоздала",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != recID {
		t.Fatalf("правилась не та запись: %d", got.ID)
	}
	if got.Type != models.Lateness {
		t.Fatalf("тип не обновился: %s", got.Type)
	}
	// незатронутые поля остаются прежними
	if !got.Date.Equal(day(2026, 3, 10)) || got.Reason != models.Illness {
		t.Fatalf("патч задел лишние поля: %+v", got)
	}
	if !strings.Contains(got.OriginalMessage, "Аня заболела") || !strings.Contains(got.OriginalMessage, "[правка: на самом деле опоздала]") {
		t.Fatalf("история сообщения потеряна: %q", got.OriginalMessage)
	}
}

func TestUpdateMostRecentPending_NoPending(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Кузнецов Олег", 4)

	newDate := day(2026, 3, 15)
	_, err = db.UpdateMostRecentPending(ctx, h.DB, stID, db.AttendancePatch{Date: &newDate})
	if !errors.Is(err, db.ErrNoPendingRecord) {
		t.Fatalf("ожидали ErrNoPendingRecord, получили %v", err)
	}
}

func TestCancelMostRecentPending_CascadesDocuments(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Морозова Вера", 5)

	rec := models.AttendanceRecord{StudentID: stID, Date: day(2026, 3, 10), Type: models.Absence, Reason: models.Authorized}
	recID, err := db.CreatePendingRecord(ctx, h.DB, rec, ptrStr("подтверждающий документ"))
	if err != nil {
		t.Fatal(err)
	}

	canceled, err := db.CancelMostRecentPending(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if canceled.ID != recID {
		t.Fatalf("отменилась не та запись: %d", canceled.ID)
	}

	n, err := db.CountRecordsByStudent(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("запись осталась после отмены: %d", n)
	}
	docs, err := db.CountDocumentsByRecord(ctx, h.DB, recID)
	if err != nil {
		t.Fatal(err)
	}
	if docs != 0 {
		t.Fatalf("требования документов остались после отмены: %d", docs)
	}

	// повторная отмена — ошибка без побочных эффектов
	if _, err := db.CancelMostRecentPending(ctx, h.DB, stID); !errors.Is(err, db.ErrNoPendingRecord) {
		t.Fatalf("ожидали ErrNoPendingRecord, получили %v", err)
	}
}

func TestUpdateAndCancel_SkipApprovedAndRejected(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Новикова Алиса", 7)

	approved := models.AttendanceRecord{StudentID: stID, Date: day(2026, 3, 10), Type: models.Absence, Reason: models.Illness, OriginalMessage: "болеет"}
	approvedID, err := db.CreatePendingRecord(ctx, h.DB, approved, nil)
	if err != nil {
		t.Fatal(err)
	}
	rejected := models.AttendanceRecord{StudentID: stID, Date: day(2026, 3, 11), Type: models.Lateness, Reason: models.Unauthorized, OriginalMessage: "опоздает"}
	rejectedID, err := db.CreatePendingRecord(ctx, h.DB, rejected, nil)
	if err != nil {
		t.Fatal(err)
	}

	// решения классного руководителя приходят мимо бота
	if _, err := h.DB.ExecContext(ctx, `UPDATE attendance_records SET approval_status = 'approved' WHERE id = $1`, approvedID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.DB.ExecContext(ctx, `UPDATE attendance_records SET approval_status = 'rejected' WHERE id = $1`, rejectedID); err != nil {
		t.Fatal(err)
	}

	// подтверждённые и отклонённые записи для бота не существуют
	newType := models.EarlyLeave
	if _, err := db.UpdateMostRecentPending(ctx, h.DB, stID, db.AttendancePatch{Type: &newType, Note: "поменяйте"}); !errors.Is(err, db.ErrNoPendingRecord) {
		t.Fatalf("update не должен видеть решённые записи, получили %v", err)
	}
	if _, err := db.CancelMostRecentPending(ctx, h.DB, stID); !errors.Is(err, db.ErrNoPendingRecord) {
		t.Fatalf("cancel не должен видеть решённые записи, получили %v", err)
	}

	// обе записи на месте и не изменены
	n, err := db.CountRecordsByStudent(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("решённые записи пропали: осталось %d", n)
	}
	for _, c := range []struct {
		id     int64
		status models.ApprovalStatus
		typ    models.AttendanceType
		msg    string
	}{
		{approvedID, models.StatusApproved, models.Absence, "болеет"},
		{rejectedID, models.StatusRejected, models.Lateness, "опоздает"},
	} {
		var status models.ApprovalStatus
		var typ models.AttendanceType
		var msg string
		if err := h.DB.QueryRowContext(ctx, `
			SELECT approval_status, attendance_type, original_message FROM attendance_records WHERE id = $1
		`, c.id).Scan(&status, &typ, &msg); err != nil {
			t.Fatal(err)
		}
		if status != c.status || typ != c.typ || msg != c.msg {
			t.Fatalf("запись %d изменилась: %s/%s/%q", c.id, status, typ, msg)
		}
	}
}

func TestListRecordsForPeriod(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	stID := mustStudent(t, h.DB, "Волкова Дарья", 6)

	for _, d := range []time.Time{day(2026, 2, 28), day(2026, 3, 10), day(2026, 4, 1)} {
		rec := models.AttendanceRecord{StudentID: stID, Date: d, Type: models.Absence, Reason: models.Unauthorized}
		if _, err := db.CreatePendingRecord(ctx, h.DB, rec, nil); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := db.ListRecordsForPeriod(ctx, h.DB, day(2026, 3, 1), day(2026, 3, 31))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("ожидали одну запись за март, получили %d", len(rows))
	}
	if rows[0].StudentName != "Волкова Дарья" {
		t.Fatalf("имя ученика не подтянулось: %q", rows[0].StudentName)
	}
}
