package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/commands"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
)

var (
	renderFrom       string
	renderTo         string
	renderWeekStart  int
	renderSelections bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the calendar in the terminal",
	Long: `Draws the contribution calendar for a date range as a colored grid,
one column per week. With --selections the cells show the selected days
instead of the activity levels.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFrom, "from", "", "First day (YYYY-MM-DD), defaults to the configured range")
	renderCmd.Flags().StringVar(&renderTo, "to", "", "Last day (YYYY-MM-DD), defaults to the configured range")
	renderCmd.Flags().IntVar(&renderWeekStart, "week-start", -1, "First day of the week, 0 (Sunday) to 6")
	renderCmd.Flags().BoolVar(&renderSelections, "selections", false, "Color the selected days")
}

func runRender(cmd *cobra.Command, args []string) error {
	iv := cfg.DefaultInterval(time.Now())
	if renderFrom != "" {
		t, err := calendar.ParseDate(renderFrom)
		if err != nil {
			return err
		}
		iv.Start = t
	}
	if renderTo != "" {
		t, err := calendar.ParseDate(renderTo)
		if err != nil {
			return err
		}
		iv.End = t
	}
	if err := app.ValidateRange(iv); err != nil {
		return fmt.Errorf("--from/--to: %w", err)
	}

	opts := commands.RenderOptions{Config: cfg, Interval: iv}
	if cmd.Flags().Changed("week-start") {
		if renderWeekStart < 0 || renderWeekStart > 6 {
			return fmt.Errorf("--week-start must be 0-6, got %d", renderWeekStart)
		}
		ws := time.Weekday(renderWeekStart)
		opts.WeekStart = &ws
	}
	if cfg.Contributions.Username != "" {
		opts.Fetcher = contributions.NewClient(cfg.Contributions.BaseURL, cfg.Contributions.Timeout)
	}
	if renderSelections {
		selections, err := selectionFile().LoadOrEmpty()
		if err != nil {
			return err
		}
		opts.Selections = selections
	}

	return commands.Render(cmd.Context(), cmd.OutOrStdout(), opts)
}
