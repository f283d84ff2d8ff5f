package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
	"github.com/klabast/wb-services/time-travel/internal/render"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// ServeIndex serves the calendar UI
func (s *Server) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.indexHTML); err != nil {
		s.logger.Warn("write index HTML", zap.Error(err))
	}
}

// GetConfig returns the settings the UI needs to draw the calendar
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	iv := s.cfg.DefaultInterval(s.now())

	levels := make([]string, len(render.LevelColors))
	for i, c := range render.LevelColors {
		levels[i] = string(c)
	}
	selected := make([]string, len(render.SelectionColors))
	for i, c := range render.SelectionColors {
		selected[i] = string(c)
	}

	s.writeJSON(w, ConfigResponse{
		MonthNames:      s.cfg.MonthNames(),
		WeekStart:       s.cfg.Calendar.WeekStart,
		From:            calendar.FormatDate(iv.Start),
		To:              calendar.FormatDate(iv.End),
		MaxCount:        selection.MaxCount,
		LevelColors:     levels,
		SelectionColors: selected,
		EditProtected:   s.auth.Enabled(),
		Username:        s.cfg.Contributions.Username,
	})
}

// HandleCalendar returns the week grid and month labels for a date range
// Query params: from, to (YYYY-MM-DD), weekStart (0-6)
func (s *Server) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	def := s.cfg.DefaultInterval(s.now())

	from, err := queryDate(r, "from", def.Start)
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	to, err := queryDate(r, "to", def.End)
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, ErrInvalidRange, http.StatusBadRequest)
		return
	}
	if err := ValidateRange(calendar.Interval{Start: from, End: to}); err != nil {
		http.Error(w, ErrRangeTooLarge, http.StatusBadRequest)
		return
	}
	weekStart, ok := queryWeekday(r, "weekStart", s.cfg.WeekStart())
	if !ok {
		http.Error(w, ErrInvalidWeekStart, http.StatusBadRequest)
		return
	}

	iv := calendar.Interval{Start: from, End: to}
	activities, source, err := s.activities(r, iv)
	if err != nil {
		var apiErr *contributions.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			http.Error(w, apiErr.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("load activities", zap.Error(err))
		http.Error(w, ErrUpstream, http.StatusBadGateway)
		return
	}

	weeks, err := calendar.GroupByWeeks(activities, weekStart)
	if err != nil {
		s.logger.Error("group activities by week", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	labels, err := calendar.MonthLabels(weeks, s.cfg.MonthNames())
	if err != nil {
		// GroupByWeeks never yields empty weeks; this is a bug
		s.logger.Error("month labels", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, CalendarResponse{
		From:        calendar.FormatDate(from),
		To:          calendar.FormatDate(to),
		WeekStart:   int(weekStart),
		Weeks:       weeks,
		MonthLabels: labels,
		TotalCount:  calendar.TotalCount(activities),
		Source:      source,
	})
}

// activities loads the days of iv from the configured source
func (s *Server) activities(r *http.Request, iv calendar.Interval) ([]calendar.Activity, string, error) {
	return LoadActivities(r.Context(), s.fetcher, s.cfg, iv, s.now())
}

// GetSelections lists the session's selections
func (s *Server) GetSelections(w http.ResponseWriter, r *http.Request) {
	s.writeSelections(w, s.sessions.Lookup(r))
}

// ApplySelection adds or removes one day, depending on the request mode
func (s *Server) ApplySelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := calendar.ParseDate(req.Date); err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = string(selection.ModeAdd)
	}
	mode, err := selection.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, ErrInvalidMode, http.StatusBadRequest)
		return
	}

	set, ok := s.sessionSelections(w, r)
	if !ok {
		return
	}
	if err := set.Apply(mode, req.Date); err != nil {
		http.Error(w, ErrInvalidMode, http.StatusBadRequest)
		return
	}

	s.logger.Debug("selection applied", zap.String("date", req.Date), zap.String("mode", string(mode)))
	s.writeSelections(w, set)
}

// ClearSelections removes every selection of the session
func (s *Server) ClearSelections(w http.ResponseWriter, r *http.Request) {
	set := s.sessions.Lookup(r)
	set.Clear()
	s.writeSelections(w, set)
}

// HandleScript returns the commit script for the session's selections
// Query param: download=true for a standalone .sh file
func (s *Server) HandleScript(w http.ResponseWriter, r *http.Request) {
	s.GenerateScript(w, s.sessions.Lookup(r).List(), r.URL.Query().Get("download") == "true")
}

// HandleExport handles selection downloads in ICS, CSV or JSON format
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "ics", "csv", "json":
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
		return
	}

	selections := s.sessions.Lookup(r).List()

	switch format {
	case "ics":
		s.GenerateICS(w, selections)
	case "csv":
		s.GenerateCSV(w, selections)
	case "json":
		s.GenerateJSON(w, selections)
	}
}

func (s *Server) sessionSelections(w http.ResponseWriter, r *http.Request) (*selection.Set, bool) {
	set, err := s.sessions.Selections(w, r)
	if err != nil {
		s.logger.Error("start session", zap.Error(err))
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return nil, false
	}
	return set, true
}

func (s *Server) writeSelections(w http.ResponseWriter, set *selection.Set) {
	list := set.List()
	s.writeJSON(w, SelectionsResponse{Selections: list, Commits: TotalCommits(list)})
}
