package calendar

import (
	"math"
	"math/rand/v2"
	"time"
)

// testDataMaxCount is the largest count a generated day can carry
const testDataMaxCount = 20

// TestDataOptions configures GenerateTestData
type TestDataOptions struct {
	// Interval defaults to the calendar year of Now
	Interval *Interval
	// MaxLevel of zero means MaxLevel; negative values become 1
	MaxLevel int
	Rand     *rand.Rand
	Now      func() time.Time
}

// GenerateTestData produces one random activity per day of the interval.
// Counts are skewed towards zero; the result is placeholder data only.
func GenerateTestData(opts TestDataOptions) []Activity {
	maxLevel := int(MaxLevel)
	if opts.MaxLevel != 0 {
		maxLevel = min(max(1, opts.MaxLevel), int(MaxLevel))
	}

	float := rand.Float64
	if opts.Rand != nil {
		float = opts.Rand.Float64
	}

	interval := opts.Interval
	if interval == nil {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		year := now().Year()
		interval = &Interval{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}

	days := interval.Days()
	activities := make([]Activity, 0, len(days))
	for _, day := range days {
		// shifted by up to 80% towards zero
		c := math.Round(float()*testDataMaxCount - float()*(0.8*testDataMaxCount))
		count := max(0, int(c))
		level := int(math.Ceil(float64(count) / testDataMaxCount * float64(maxLevel)))

		activities = append(activities, Activity{
			Date:  FormatDate(day),
			Count: count,
			Level: Level(level),
		})
	}

	return activities
}
