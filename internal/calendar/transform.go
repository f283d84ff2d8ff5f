package calendar

import (
	"fmt"
	"time"
)

// TransformFunc rewrites a sequence of activities before it is grouped
type TransformFunc func([]Activity) []Activity

// Transform applies fn to data and validates what it returns.
// A nil fn leaves data untouched.
func Transform(data []Activity, fn TransformFunc) ([]Activity, error) {
	if fn == nil {
		return data, nil
	}

	transformed := fn(data)
	for i, a := range transformed {
		if err := Validate(a); err != nil {
			return nil, fmt.Errorf("transformed activity %d: %w", i, err)
		}
	}

	return transformed, nil
}

// Validate checks the required activity fields
func Validate(a Activity) error {
	if a.Count < 0 {
		return fmt.Errorf(`%w: required property "count" must be a non-negative number, got %d`, ErrInvalidActivity, a.Count)
	}
	if !datePattern.MatchString(a.Date) {
		return fmt.Errorf(`%w: required property "date: YYYY-MM-DD" missing or invalid, got %q`, ErrInvalidActivity, a.Date)
	}
	if !a.Level.Valid() {
		return fmt.Errorf(`%w: required property "level: 0 | 1 | 2 | 3 | 4" missing or invalid, got %d`, ErrInvalidActivity, a.Level)
	}
	return nil
}

// LastMonths keeps the activities of the n calendar months ending with the
// month of now.
func LastMonths(n int, now time.Time) TransformFunc {
	end := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -n, 0)

	return func(activities []Activity) []Activity {
		kept := make([]Activity, 0, len(activities))
		for _, a := range activities {
			day, err := ParseDate(a.Date)
			if err != nil {
				continue
			}
			if !day.Before(start) && day.Before(end) {
				kept = append(kept, a)
			}
		}
		return kept
	}
}

// Between keeps the activities whose dates fall within iv
func Between(iv Interval) TransformFunc {
	start, end := Day(iv.Start), Day(iv.End)

	return func(activities []Activity) []Activity {
		kept := make([]Activity, 0, len(activities))
		for _, a := range activities {
			day, err := ParseDate(a.Date)
			if err != nil {
				continue
			}
			if !day.Before(start) && !day.After(end) {
				kept = append(kept, a)
			}
		}
		return kept
	}
}
