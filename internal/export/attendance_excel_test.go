package export

import (
	"os"
	"testing"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestGenerateAttendanceReport(t *testing.T) {
	rows := []db.RecordRow{
		{
			StudentName:   "Иванов Пётр",
			StudentNumber: 1,
			Record: models.AttendanceRecord{
				Date:           time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				Type:           models.Absence,
				Reason:         models.Illness,
				ApprovalStatus: models.StatusPending,
			},
		},
		{
			StudentName:   "Сидорова Анна",
			StudentNumber: 2,
			Record: models.AttendanceRecord{
				Date:           time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
				Type:           models.Lateness,
				Reason:         models.Unauthorized,
				ApprovalStatus: models.StatusApproved,
			},
		},
	}

	path, err := GenerateAttendanceReport(rows, "test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(path) }()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Посещаемость", "C2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Иванов Пётр" {
		t.Fatalf("ожидали имя в C2, получили %q", got)
	}
	got, _ = f.GetCellValue("Посещаемость", "G2")
	if got != "медицинская справка" {
		t.Fatalf("болезнь требует справку, получили %q", got)
	}
	got, _ = f.GetCellValue("Посещаемость", "G3")
	if got != "не нужен" {
		t.Fatalf("опоздание без документа, получили %q", got)
	}
}

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 7: "G", 26: "Z", 27: "AA", 52: "AZ"}
	for n, want := range cases {
		if got := colName(n); got != want {
			t.Errorf("colName(%d): ожидали %s, получили %s", n, want, got)
		}
	}
}
