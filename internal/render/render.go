// Package render draws a contribution calendar in the terminal.
package render

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

const cell = "■"

// LevelColors maps every activity level to its cell color
var LevelColors = [calendar.MaxLevel + 1]lipgloss.Color{
	"#161b22",
	"#0e4429",
	"#006d32",
	"#26a641",
	"#39d353",
}

// SelectionColors maps a selection count to its cell color; index 0 is an
// unselected day
var SelectionColors = [selection.MaxCount + 1]lipgloss.Color{
	"#52525b",
	"#bbf7d0",
	"#86efac",
	"#4ade80",
	"#22c55e",
	"#16a34a",
}

// LevelColor returns the color for level, clamped to the palette
func LevelColor(level calendar.Level) lipgloss.Color {
	return LevelColors[min(level, calendar.MaxLevel)]
}

// SelectionColor returns the color for a selection count, clamped to the palette
func SelectionColor(count int) lipgloss.Color {
	return SelectionColors[min(max(count, 0), selection.MaxCount)]
}

// Options controls what the grid shows
type Options struct {
	WeekStart  time.Weekday
	MonthNames [12]string
	// Selected switches the cell colors from activity levels to selection counts
	Selected *selection.Set
}

var labelStyle = lipgloss.NewStyle().Faint(true)

// Grid renders weeks as columns and weekdays as rows, with month labels
// above and weekday labels to the left.
func Grid(weeks []calendar.Week, opts Options) (string, error) {
	labels, err := calendar.MonthLabels(weeks, opts.MonthNames)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	// each cell is two columns wide: the glyph and a space
	header := []rune(strings.Repeat(" ", len(weeks)*2))
	for _, l := range labels {
		for i, r := range []rune(l.Label) {
			if pos := l.WeekIndex*2 + i; pos < len(header) {
				header[pos] = r
			}
		}
	}
	b.WriteString("    ")
	b.WriteString(labelStyle.Render(strings.TrimRight(string(header), " ")))
	b.WriteString("\n")

	for row := range 7 {
		weekday := time.Weekday((int(opts.WeekStart) + row) % 7)
		b.WriteString(labelStyle.Render(weekday.String()[:3]))
		b.WriteString(" ")

		for _, week := range weeks {
			if row >= len(week) || week[row] == nil {
				b.WriteString("  ")
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(cellColor(week[row], opts.Selected)).Render(cell))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// Write renders the grid to w
func Write(w io.Writer, weeks []calendar.Week, opts Options) error {
	grid, err := Grid(weeks, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, grid)
	return err
}

func cellColor(a *calendar.Activity, selected *selection.Set) lipgloss.Color {
	if selected == nil {
		return LevelColor(a.Level)
	}
	sel, _ := selected.Get(a.Date)
	return SelectionColor(sel.Count)
}
