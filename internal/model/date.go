package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Stored dates must fall within these years.
const (
	MinYear = 1970
	MaxYear = 2999
)

// InRange reports whether t falls within MinYear..MaxYear.
func InRange(t time.Time) bool {
	y := t.Year()
	return y >= MinYear && y <= MaxYear
}

// DateOf truncates t to midnight UTC of its calendar day. All stored dates go through it.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a stored date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if !InRange(t) {
		return time.Time{}, fmt.Errorf("date %s outside %d..%d", s, MinYear, MaxYear)
	}
	return DateOf(t), nil
}

// DaysBetween lists every date from start to end inclusive.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthsBetween lists the first day of every month touched by start..end.
func MonthsBetween(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}
