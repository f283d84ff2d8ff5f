// Package selection holds the user's fake-commit picks: one count per day,
// raised by repeated adds and capped at MaxCount.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
)

// MaxCount is the highest count a selected day can reach
const MaxCount = 5

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidMode      = errors.New("invalid selection mode")
)

// Selection is a day picked for fake commits
type Selection struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Mode decides what a click on a day does
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeRemove Mode = "remove"
)

// ParseMode converts s into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdd, ModeRemove:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMode, s, ModeAdd, ModeRemove)
}

// Validate checks that s has a YYYY-MM-DD date and a count in [1, MaxCount]
func Validate(s Selection) error {
	if _, err := calendar.ParseDate(s.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	if s.Count < 1 || s.Count > MaxCount {
		return fmt.Errorf("%w: count for %s must be between 1 and %d, got %d", ErrInvalidSelection, s.Date, MaxCount, s.Count)
	}
	return nil
}

// Set is an insertion-ordered collection of selections keyed by date.
// It is safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	items []Selection
}

// NewSet returns a set holding the given selections
func NewSet(selections ...Selection) *Set {
	s := &Set{}
	s.Replace(selections)
	return s
}

// Add selects date with count 1, or raises its count up to MaxCount
func (s *Set) Add(date string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(date); i >= 0 {
		s.items[i].Count = min(s.items[i].Count+1, MaxCount)
		return s.items[i]
	}

	sel := Selection{Date: date, Count: 1}
	s.items = append(s.items, sel)
	return sel
}

// Remove drops date from the set. It reports whether date was selected.
func (s *Set) Remove(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(date)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Apply adds or removes date according to mode
func (s *Set) Apply(mode Mode, date string) error {
	switch mode {
	case ModeAdd:
		s.Add(date)
	case ModeRemove:
		s.Remove(date)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return nil
}

// Clear removes every selection
func (s *Set) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Get returns the selection for date
func (s *Set) Get(date string) (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(date); i >= 0 {
		return s.items[i], true
	}
	return Selection{}, false
}

// List returns a copy of the selections in insertion order
func (s *Set) List() []Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Selection, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of selected days
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Replace swaps the content of the set. Later duplicates of a date
// overwrite the count of the first one.
func (s *Set) Replace(selections []Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]Selection, 0, len(selections))
	for _, sel := range selections {
		if i := s.index(sel.Date); i >= 0 {
			s.items[i].Count = sel.Count
			continue
		}
		s.items = append(s.items, sel)
	}
}

// index finds date; caller must hold s.mu
func (s *Set) index(date string) int {
	for i, sel := range s.items {
		if sel.Date == date {
			return i
		}
	}
	return -1
}
