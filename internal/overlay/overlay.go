// Package overlay positions external calendar events on a month grid. The
// grid is Monday-first, laid out as a flat sequence of cells: leading blanks
// for the days before the first of the month, then one cell per day.
package overlay

import (
	"sort"
	"time"

	"github.com/username/timeoff-tracker/internal/icalfeed"
	"github.com/username/timeoff-tracker/pkg/dateutil"
)

// MaxVisibleEvents caps how many event bars a month shows. Anything beyond
// the cap is summarized by MoreCount.
const MaxVisibleEvents = 3

// Placement is an event bar positioned on the month grid.
type Placement struct {
	Event icalfeed.Event

	// StartOffset is the number of cells before the bar: blanks from the
	// Monday-first lead plus the days before the event starts.
	StartOffset int

	// Span is the number of day cells the bar covers inside this month,
	// at least 1.
	Span int

	// EndOffset is the number of day cells remaining after the bar, at
	// least 0.
	EndOffset int
}

// MonthOverlay is the set of event bars for one month.
type MonthOverlay struct {
	Placements []Placement

	// MoreCount is how many events did not fit under MaxVisibleEvents.
	MoreCount int
}

// ForMonth clips the events to the month and computes their placements.
// Events are ordered by start date; at most MaxVisibleEvents are placed and
// the rest only counted.
func ForMonth(events []icalfeed.Event, year int, month time.Month) MonthOverlay {
	daysInMonth := dateutil.DaysInMonth(year, month)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	lead := dateutil.MondayFirstIndex(int(first.Weekday()))

	var clipped []Placement
	for _, event := range events {
		startDay, endDay, ok := clipToMonth(event, year, month, daysInMonth)
		if !ok {
			continue
		}

		span := endDay - startDay + 1
		if span < 1 {
			span = 1
		}
		startPos := lead + startDay - 1
		endOffset := lead + daysInMonth - (startPos + span)
		if endOffset < 0 {
			endOffset = 0
		}

		clipped = append(clipped, Placement{
			Event:       event,
			StartOffset: startPos,
			Span:        span,
			EndOffset:   endOffset,
		})
	}

	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].Event.Start.Before(clipped[j].Event.Start)
	})

	overlay := MonthOverlay{Placements: clipped}
	if len(clipped) > MaxVisibleEvents {
		overlay.MoreCount = len(clipped) - MaxVisibleEvents
		overlay.Placements = clipped[:MaxVisibleEvents]
	}
	return overlay
}

// clipToMonth returns the 1-based first and last day of the month the event
// touches, or false when the event lies outside the month entirely.
func clipToMonth(event icalfeed.Event, year int, month time.Month, daysInMonth int) (int, int, bool) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	start := event.Start
	end := event.End
	if !end.After(start) {
		end = start.Add(time.Second)
	}

	if !start.Before(monthEnd) || !end.After(monthStart) {
		return 0, 0, false
	}

	startDay := 1
	if start.After(monthStart) {
		startDay = start.Day()
	}

	// End is exclusive: an event ending at midnight does not touch that day.
	lastMoment := end.Add(-time.Nanosecond)
	endDay := daysInMonth
	if lastMoment.Before(monthEnd) && lastMoment.Month() == month && lastMoment.Year() == year {
		endDay = lastMoment.Day()
	}

	if endDay < startDay {
		endDay = startDay
	}
	return startDay, endDay, true
}
