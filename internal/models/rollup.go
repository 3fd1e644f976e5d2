package models

import "time"

// MonthlyRow holds the per-channel mean for one calendar month. A channel with
// no samples in the month has no key.
type MonthlyRow struct {
	Month  time.Time           `json:"month"`
	Values map[Channel]float64 `json:"values"`
}

// Value returns the mean for ch and whether it is present.
func (r MonthlyRow) Value(ch Channel) (float64, bool) {
	v, ok := r.Values[ch]
	return v, ok
}

// MonthlyRollup is the month-indexed summary table, ordered by month.
type MonthlyRollup struct {
	Channels []Channel    `json:"channels"`
	Rows     []MonthlyRow `json:"rows"`
}

// MonthOf returns the first instant of t's calendar month in UTC.
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
