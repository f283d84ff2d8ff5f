package calendar

import "fmt"

// minLabelWeeks is the least number of weeks a month label needs to be readable
const minLabelWeeks = 3

// DefaultMonthNames are the English short month names
var DefaultMonthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthLabel attaches a month name to a week index
type MonthLabel struct {
	WeekIndex int    `json:"weekIndex"`
	Label     string `json:"label"`
}

// MonthLabels finds the weeks that start a new month. The first label is
// dropped when the next one is too close, the last one when too few weeks
// follow it.
//
// Every week must hold at least one activity. GroupByWeeks guarantees that,
// so an ErrEmptyWeek result means the weeks were built some other way.
func MonthLabels(weeks []Week, monthNames [12]string) ([]MonthLabel, error) {
	labels := make([]MonthLabel, 0, 13)
	for i, week := range weeks {
		first := week.First()
		if first == nil {
			return nil, fmt.Errorf("%w: week %d has no activity", ErrEmptyWeek, i+1)
		}

		day, err := ParseDate(first.Date)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", i+1, err)
		}

		month := monthNames[day.Month()-1]
		if i == 0 || labels[len(labels)-1].Label != month {
			labels = append(labels, MonthLabel{WeekIndex: i, Label: month})
		}
	}

	shown := make([]MonthLabel, 0, len(labels))
	for i, label := range labels {
		switch {
		case i == 0:
			if len(labels) < 2 || labels[1].WeekIndex-label.WeekIndex < minLabelWeeks {
				continue
			}
		case i == len(labels)-1:
			if len(weeks)-label.WeekIndex < minLabelWeeks {
				continue
			}
		}
		shown = append(shown, label)
	}

	return shown, nil
}
