package commands

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/script"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// Select applies mode to each date and saves the selections file
func Select(file *app.SelectionFile, mode selection.Mode, dates []string, logger *zap.Logger) ([]selection.Selection, error) {
	if len(dates) == 0 {
		return nil, errors.New("no dates given")
	}
	for _, d := range dates {
		if _, err := calendar.ParseDate(d); err != nil {
			return nil, err
		}
	}

	current, err := file.LoadOrEmpty()
	if err != nil {
		return nil, err
	}

	set := selection.NewSet(current...)
	for _, d := range dates {
		if err := set.Apply(mode, d); err != nil {
			return nil, err
		}
		logger.Debug("selection applied", zap.String("date", d), zap.String("mode", string(mode)))
	}

	list := set.List()
	if err := file.Save(list); err != nil {
		return nil, err
	}
	return list, nil
}

// ClearSelections empties the selections file
func ClearSelections(file *app.SelectionFile) error {
	return file.Save(nil)
}

// UndoSelections restores the selections saved before the last change
func UndoSelections(file *app.SelectionFile) ([]selection.Selection, error) {
	if err := file.Restore(); err != nil {
		return nil, err
	}
	return file.LoadOrEmpty()
}

// PrintSelections lists the selections in date order with their commit counts
func PrintSelections(w io.Writer, selections []selection.Selection) error {
	if len(selections) == 0 {
		_, err := fmt.Fprintln(w, "No days selected.")
		return err
	}
	for _, sel := range app.SortSelectionsByDate(selections) {
		if _, err := fmt.Fprintf(w, "%s  count %d  (%d commits)\n", sel.Date, sel.Count, script.Commits(sel)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d days, %d commits\n", len(selections), app.TotalCommits(selections))
	return err
}

// WriteScript writes a standalone commit script for the selections file
func WriteScript(w io.Writer, file *app.SelectionFile) error {
	selections, err := file.Load()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, script.Header()); err != nil {
		return err
	}
	return script.WriteTo(w, selections)
}
