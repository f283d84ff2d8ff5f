package calendar

import (
	"fmt"
	"time"
)

// Week is a run of at most seven day slots. A nil slot means "no data":
// the day lies outside the range covered by the activities.
type Week []*Activity

// First returns the first non-placeholder activity of the week, or nil
func (w Week) First() *Activity {
	for _, a := range w {
		if a != nil {
			return a
		}
	}
	return nil
}

// FillHoles returns a dense daily sequence from the first to the last
// activity's date. Days missing from the input are zero-activity days.
// When a date occurs more than once the last occurrence wins.
func FillHoles(activities []Activity) ([]Activity, error) {
	if len(activities) == 0 {
		return []Activity{}, nil
	}

	byDate := make(map[string]Activity, len(activities))
	for _, a := range activities {
		byDate[a.Date] = a
	}

	start, err := ParseDate(activities[0].Date)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(activities[len(activities)-1].Date)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: first %s, last %s", ErrUnsorted, activities[0].Date, activities[len(activities)-1].Date)
	}

	days := Interval{Start: start, End: end}.Days()
	dense := make([]Activity, 0, len(days))
	for _, day := range days {
		date := FormatDate(day)
		if a, ok := byDate[date]; ok {
			dense = append(dense, a)
			continue
		}
		dense = append(dense, Activity{Date: date})
	}

	return dense, nil
}

// GroupByWeeks fills gaps in the date-sorted activities and partitions them
// into weeks starting on weekStart. Week 0 is padded on the left with
// placeholders; the last week may be shorter than seven days.
func GroupByWeeks(activities []Activity, weekStart time.Weekday) ([]Week, error) {
	if len(activities) == 0 {
		return []Week{}, nil
	}

	dense, err := FillHoles(activities)
	if err != nil {
		return nil, err
	}

	first, err := ParseDate(dense[0].Date)
	if err != nil {
		return nil, err
	}

	pad := LeadingPad(first.Weekday(), weekStart)
	slots := make([]*Activity, pad, pad+len(dense))
	for i := range dense {
		slots = append(slots, &dense[i])
	}

	weeks := make([]Week, 0, (len(slots)+6)/7)
	for i := 0; i < len(slots); i += 7 {
		end := min(i+7, len(slots))
		weeks = append(weeks, Week(slots[i:end:end]))
	}

	return weeks, nil
}

// LeadingPad is the number of days between the most recent weekStart on or
// before a day falling on weekday, and that day itself.
func LeadingPad(weekday, weekStart time.Weekday) int {
	return ((int(weekday)-int(weekStart))%7 + 7) % 7
}
