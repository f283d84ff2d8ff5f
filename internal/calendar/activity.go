// Package calendar turns day-by-day contribution activity into the week
// buckets and month labels of a contribution calendar.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for all activity dates
const DateLayout = "2006-01-02"

// MaxLevel is the highest intensity level a day can carry
const MaxLevel Level = 4

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnsorted        = errors.New("activities are not sorted by date")
	ErrEmptyWeek       = errors.New("week is empty")
	ErrInvalidActivity = errors.New("invalid activity")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Level is a quantized intensity bucket in [0, MaxLevel]
type Level uint8

// Valid reports whether l is within [0, MaxLevel]
func (l Level) Valid() bool {
	return l <= MaxLevel
}

// Activity represents one calendar day's contribution count and level
type Activity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level Level  `json:"level"`
}

// Interval is an inclusive range of calendar days
type Interval struct {
	Start time.Time
	End   time.Time
}

// Days returns every calendar day in the interval, in order.
// An interval whose end precedes its start has no days.
func (iv Interval) Days() []time.Time {
	start, end := Day(iv.Start), Day(iv.End)
	if end.Before(start) {
		return nil
	}

	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Day truncates t to midnight UTC of its own calendar date
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TotalCount sums the counts of all activities
func TotalCount(activities []Activity) int {
	total := 0
	for _, a := range activities {
		total += a.Count
	}
	return total
}
