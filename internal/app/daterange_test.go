package app_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/app"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandDateRange_Single(t *testing.T) {
	got, err := app.ExpandDateRange(date(2026, 3, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Equal(date(2026, 3, 10)) {
		t.Fatalf("ожидали одну дату 10.03, получили %v", got)
	}
}

func TestExpandDateRange_Inclusive(t *testing.T) {
	end := date(2026, 3, 12)
	got, err := app.ExpandDateRange(date(2026, 3, 10), &end)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("ожидали 3 даты, получили %d: %v", len(got), got)
	}
	for i, want := range []time.Time{date(2026, 3, 10), date(2026, 3, 11), date(2026, 3, 12)} {
		if !got[i].Equal(want) {
			t.Fatalf("дата %d: ожидали %v, получили %v", i, want, got[i])
		}
	}
}

func TestExpandDateRange_SameDay(t *testing.T) {
	end := date(2026, 3, 10)
	got, err := app.ExpandDateRange(date(2026, 3, 10), &end)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("ожидали одну дату, получили %v", got)
	}
}

func TestExpandDateRange_Invalid(t *testing.T) {
	end := date(2026, 3, 9)
	_, err := app.ExpandDateRange(date(2026, 3, 10), &end)
	if !errors.Is(err, app.ErrInvalidRange) {
		t.Fatalf("ожидали ErrInvalidRange, получили %v", err)
	}
}

func TestExpandDateRange_MonthBoundary(t *testing.T) {
	end := date(2026, 4, 2)
	got, err := app.ExpandDateRange(date(2026, 3, 30), &end)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("ожидали 4 даты через границу месяца, получили %d", len(got))
	}
	if !got[2].Equal(date(2026, 4, 1)) {
		t.Fatalf("ожидали 01.04 на третьей позиции, получили %v", got[2])
	}
}
