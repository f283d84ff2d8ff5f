package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
	"github.com/klabast/wb-services/time-travel/internal/script"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// writeJSON encodes v as the response body and logs encoding failures
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}

// queryDate parses the YYYY-MM-DD query parameter name, or returns def
func queryDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return calendar.ParseDate(v)
}

// queryWeekday parses a 0-6 weekday query parameter, or returns def
func queryWeekday(r *http.Request, name string, def time.Weekday) (time.Weekday, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 6 {
		return 0, false
	}
	return time.Weekday(n), true
}

// SortSelectionsByDate returns a copy of selections in ascending date order
func SortSelectionsByDate(selections []selection.Selection) []selection.Selection {
	sorted := make([]selection.Selection, len(selections))
	copy(sorted, selections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// TotalCommits is the number of commits the script makes for selections
func TotalCommits(selections []selection.Selection) int {
	total := 0
	for _, sel := range selections {
		total += script.Commits(sel)
	}
	return total
}

// ValidateRange rejects intervals that end before they start or span more
// than MaxRangeDays
func ValidateRange(iv calendar.Interval) error {
	if iv.End.Before(iv.Start) {
		return fmt.Errorf("%s: %s is before %s", ErrInvalidRange, calendar.FormatDate(iv.End), calendar.FormatDate(iv.Start))
	}
	// Sub saturates, so huge ranges still compare as too large
	if days := int64(iv.End.Sub(iv.Start).Hours()/24) + 1; days > MaxRangeDays {
		return fmt.Errorf("%s: %d days, at most %d", ErrRangeTooLarge, days, MaxRangeDays)
	}
	return nil
}

// LoadActivities returns the days of iv: synthetic data when fetcher is nil,
// otherwise the configured user's contributions within iv, limited to the
// last months relative to now when configured
func LoadActivities(ctx context.Context, fetcher contributions.Fetcher, cfg Config, iv calendar.Interval, now time.Time) ([]calendar.Activity, string, error) {
	if fetcher == nil {
		return calendar.GenerateTestData(calendar.TestDataOptions{
			Interval: &iv,
			MaxLevel: cfg.Calendar.MaxLevel,
		}), SourceSynthetic, nil
	}

	resp, err := fetcher.Fetch(ctx, cfg.Contributions.Username)
	if err != nil {
		return nil, SourceContributions, err
	}
	activities := resp.Contributions
	if n := cfg.Contributions.LastMonths; n > 0 {
		if activities, err = calendar.Transform(activities, calendar.LastMonths(n, now)); err != nil {
			return nil, SourceContributions, err
		}
	}
	activities, err = calendar.Transform(activities, calendar.Between(iv))
	if err != nil {
		return nil, SourceContributions, err
	}
	if len(activities) == 0 {
		// no history in range; show an empty grid for it
		activities = []calendar.Activity{{Date: calendar.FormatDate(iv.Start)}}
		if !iv.Start.Equal(iv.End) {
			activities = append(activities, calendar.Activity{Date: calendar.FormatDate(iv.End)})
		}
	}
	return activities, SourceContributions, nil
}
