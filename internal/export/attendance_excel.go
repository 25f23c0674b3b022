package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

var header = []string{"Дата", "№ в журнале", "Ученик", "Тип", "Причина", "Статус", "Документ"}

func statusLabel(s models.ApprovalStatus) string {
	switch s {
	case models.StatusPending:
		return "ожидает"
	case models.StatusApproved:
		return "подтверждено"
	case models.StatusRejected:
		return "отклонено"
	case models.StatusModified:
		return "исправлено"
	}
	return string(s)
}

// GenerateAttendanceReport собирает книгу с записями за период и сохраняет
// её во временный файл. Вызывающий удаляет файл после отправки.
func GenerateAttendanceReport(rows []db.RecordRow, title string) (string, error) {
	f := excelize.NewFile()
	const sheet = "Посещаемость"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return "", fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, bold)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for i, rr := range rows {
		doc := "не нужен"
		if docLabel := documentNote(rr.Record); docLabel != "" {
			doc = docLabel
		}
		vals := []string{
			rr.Record.Date.Format("02.01.2006"),
			fmt.Sprintf("%d", rr.StudentNumber),
			rr.StudentName,
			rr.Record.Type.Label(),
			rr.Record.Reason.Label(),
			statusLabel(rr.Record.ApprovalStatus),
			doc,
		}
		for c, v := range vals {
			cell := fmt.Sprintf("%s%d", colName(c+1), i+2)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return "", fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// эвристическая ширина по заголовку и первым строкам
	for c := 1; c <= len(header); c++ {
		w := float64(len([]rune(header[c-1]))) * 1.4
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("attendance_%s_%d.xlsx", title, time.Now().Unix()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func documentNote(r models.AttendanceRecord) string {
	if r.Type == models.Absence && r.Reason == models.Illness {
		return "медицинская справка"
	}
	if r.Type == models.Absence && r.Reason == models.Authorized {
		return "подтверждающий документ"
	}
	return ""
}

// colName — A, B, ..., Z, AA, ...
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}
