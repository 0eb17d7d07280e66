package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/timeoff-tracker/internal/config"
	"github.com/username/timeoff-tracker/internal/daemon"
	"github.com/username/timeoff-tracker/internal/icalfeed"
	"github.com/username/timeoff-tracker/internal/overlay"
	"github.com/username/timeoff-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

// yearArg parses an optional year argument, defaulting to the current year.
func yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return dateutil.Today().Year(), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return year, nil
}

func withApp(run func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		a, err := initializeApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		return run(a, args)
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [year]",
		Short: "Render the calendar for a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(a *app, args []string) error {
			year, err := yearArg(args)
			if err != nil {
				return err
			}

			if _, err := a.syncer.Load(year); err != nil {
				logger.Warn("Failed to load stored holidays, showing calendar without them",
					zap.Int("year", year),
					zap.Error(err))
			}

			data := a.builder.BuildYear(year, a.current.Country, a.current.Subdivision)

			overlays := a.fetchOverlays(year)
			fmt.Println(a.renderer.Year(data, a.set, overlays))
			fmt.Println(a.renderer.Legend())
			fmt.Println()

			result := a.calc.ComputeRemaining(year, a.current.Country, a.current.Subdivision, a.syncer.Policy(), a.set)
			fmt.Printf("Remaining personal holidays: %d\n", result.Remaining)
			return nil
		}),
	}
}

func remainingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remaining [year]",
		Short: "Show the remaining-days breakdown for a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(a *app, args []string) error {
			year, err := yearArg(args)
			if err != nil {
				return err
			}

			if _, err := a.syncer.Load(year); err != nil {
				logger.Warn("Failed to load stored holidays, breakdown counts no used days",
					zap.Int("year", year),
					zap.Error(err))
			}

			result := a.calc.ComputeRemaining(year, a.current.Country, a.current.Subdivision, a.syncer.Policy(), a.set)
			fmt.Print(a.renderer.Breakdown(result))
			return nil
		}),
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <date>",
		Short: "Toggle a personal holiday on a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[0], err)
			}
			year := date.Year()
			key := dateutil.DateKey(date)

			if _, err := a.syncer.Load(year); err != nil {
				return fmt.Errorf("cannot toggle, stored holidays unavailable: %w", err)
			}

			data := a.builder.BuildYear(year, a.current.Country, a.current.Subdivision)
			day := data.GetDay(int(date.Month()), date.Day())
			if day == nil {
				return fmt.Errorf("date %s is not in year %d", key, year)
			}
			if day.IsWeekend {
				return fmt.Errorf("%s is a weekend, personal holidays cover work days only", key)
			}
			if day.IsBankHoliday {
				return fmt.Errorf("%s is already a bank holiday (%s)", key, day.BankHolidayName)
			}

			added := a.set.Toggle(key)
			if added {
				fmt.Printf("Added personal holiday on %s\n", key)
			} else {
				fmt.Printf("Removed personal holiday on %s\n", key)
			}

			if err := a.syncer.Flush(year); err != nil {
				return fmt.Errorf("failed to save: %w", err)
			}

			result := a.calc.ComputeRemaining(year, a.current.Country, a.current.Subdivision, a.syncer.Policy(), a.set)
			fmt.Printf("Remaining personal holidays: %d\n", result.Remaining)
			return nil
		}),
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [year]",
		Short: "Pull the stored document and push any local changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(a *app, args []string) error {
			year, err := yearArg(args)
			if err != nil {
				return err
			}

			result, err := a.syncer.Load(year)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			if err := a.syncer.Flush(year); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			where := "local store"
			if a.remote {
				where = "gist"
			}
			fmt.Printf("Synced %d with %s (%d personal holidays)\n",
				year, where, a.set.CountForYear(year))
			if result.AdoptedFromYear != 0 {
				fmt.Printf("Adopted entitlement settings from %d\n", result.AdoptedFromYear)
			}
			return nil
		}),
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events [year]",
		Short: "List calendar feed events for a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(a *app, args []string) error {
			year, err := yearArg(args)
			if err != nil {
				return err
			}

			feedURL := a.icalURL()
			if feedURL == "" {
				return fmt.Errorf("no calendar feed configured (set ical.url)")
			}

			client := icalfeed.NewClient(logger)
			events, err := client.Fetch(feedURL, year)
			if err != nil {
				return fmt.Errorf("failed to fetch feed: %w", err)
			}

			count := 0
			for _, event := range events {
				if !event.InYear(year) {
					continue
				}
				count++
				when := event.Start.Format("2006-01-02")
				if !event.AllDay {
					when = event.Start.Format("2006-01-02 15:04")
				}
				line := fmt.Sprintf("%s  %s", when, event.Summary)
				if event.Location != "" {
					line += " @ " + event.Location
				}
				fmt.Println(line)
			}
			if count == 0 {
				fmt.Printf("No events in %d\n", year)
			}
			return nil
		}),
	}
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run in the background, syncing on a schedule",
		RunE: withApp(func(a *app, args []string) error {
			syncFn := func() (int, error) {
				year := dateutil.Today().Year()
				if _, err := a.syncer.Load(year); err != nil {
					return 0, err
				}
				if err := a.syncer.Flush(year); err != nil {
					return 0, err
				}
				result := a.calc.ComputeRemaining(year, a.current.Country, a.current.Subdivision, a.syncer.Policy(), a.set)
				return result.Remaining, nil
			}

			d := daemon.New(syncFn, a.cfg.Daemon.Schedule, a.cfg.Daemon.SystemTray, logger)
			return d.Start()
		}),
	}
}

// fetchOverlays pulls feed events and positions them per month. Feed
// problems degrade to a calendar without overlays.
func (a *app) fetchOverlays(year int) map[time.Month]overlay.MonthOverlay {
	feedURL := a.icalURL()
	if feedURL == "" {
		return nil
	}

	client := icalfeed.NewClient(logger)
	events, err := client.Fetch(feedURL, year)
	if err != nil {
		logger.Warn("Failed to fetch calendar feed, rendering without events",
			zap.Error(err))
		return nil
	}

	overlays := make(map[time.Month]overlay.MonthOverlay, 12)
	for m := time.January; m <= time.December; m++ {
		overlays[m] = overlay.ForMonth(events, year, m)
	}
	return overlays
}
