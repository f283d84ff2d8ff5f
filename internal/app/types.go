package app

import (
	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// CalendarResponse is the grid data for one date range
type CalendarResponse struct {
	From        string                `json:"from"`
	To          string                `json:"to"`
	WeekStart   int                   `json:"weekStart"`
	Weeks       []calendar.Week       `json:"weeks"`
	MonthLabels []calendar.MonthLabel `json:"monthLabels"`
	TotalCount  int                   `json:"totalCount"`
	Source      string                `json:"source"`
}

// ConfigResponse describes the UI settings
type ConfigResponse struct {
	MonthNames      [12]string `json:"monthNames"`
	WeekStart       int        `json:"weekStart"`
	From            string     `json:"from"`
	To              string     `json:"to"`
	MaxCount        int        `json:"maxCount"`
	LevelColors     []string   `json:"levelColors"`
	SelectionColors []string   `json:"selectionColors"`
	EditProtected   bool       `json:"editProtected"`
	Username        string     `json:"username,omitempty"`
}

// SelectionRequest applies one click on a day
type SelectionRequest struct {
	Date string `json:"date"`
	Mode string `json:"mode"`
}

// SelectionsResponse lists the session's selections
type SelectionsResponse struct {
	Selections []selection.Selection `json:"selections"`
	Commits    int                   `json:"commits"`
}

// Data sources
const (
	SourceSynthetic     = "synthetic"
	SourceContributions = "contributions"
)
