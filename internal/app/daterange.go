package app

import (
	"errors"
	"time"
)

// ErrInvalidRange — конец периода раньше начала.
var ErrInvalidRange = errors.New("конец периода раньше начала")

// ExpandDateRange разворачивает период в возрастающую последовательность дат,
// включая обе границы. Без конца — одна дата.
func ExpandDateRange(start time.Time, end *time.Time) ([]time.Time, error) {
	if end == nil {
		return []time.Time{start}, nil
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	var out []time.Time
	for d := start; !d.After(*end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}
