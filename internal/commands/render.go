package commands

import (
	"context"
	"io"
	"time"

	"github.com/klabast/wb-services/time-travel/internal/app"
	"github.com/klabast/wb-services/time-travel/internal/calendar"
	"github.com/klabast/wb-services/time-travel/internal/contributions"
	"github.com/klabast/wb-services/time-travel/internal/render"
	"github.com/klabast/wb-services/time-travel/internal/selection"
)

// RenderOptions configures the render subcommand
type RenderOptions struct {
	Config   app.Config
	Interval calendar.Interval
	// WeekStart overrides the configured first day of the week when set
	WeekStart *time.Weekday
	Fetcher   contributions.Fetcher
	// Selections, when present, replace activity levels as cell colors
	Selections []selection.Selection
	// Now defaults to time.Now
	Now func() time.Time
}

// Render draws the calendar grid of opts.Interval to w
func Render(ctx context.Context, w io.Writer, opts RenderOptions) error {
	if err := app.ValidateRange(opts.Interval); err != nil {
		return err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	activities, _, err := app.LoadActivities(ctx, opts.Fetcher, opts.Config, opts.Interval, now())
	if err != nil {
		return err
	}

	weekStart := opts.Config.WeekStart()
	if opts.WeekStart != nil {
		weekStart = *opts.WeekStart
	}

	weeks, err := calendar.GroupByWeeks(activities, weekStart)
	if err != nil {
		return err
	}

	ropts := render.Options{
		WeekStart:  weekStart,
		MonthNames: opts.Config.MonthNames(),
	}
	if len(opts.Selections) > 0 {
		ropts.Selected = selection.NewSet(opts.Selections...)
	}
	return render.Write(w, weeks, ropts)
}
