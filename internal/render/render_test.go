package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timeoff-tracker/internal/entitlement"
	"github.com/username/timeoff-tracker/internal/holidays"
	"github.com/username/timeoff-tracker/internal/icalfeed"
	"github.com/username/timeoff-tracker/internal/overlay"
	"github.com/username/timeoff-tracker/internal/personal"
	"github.com/username/timeoff-tracker/internal/settings"
	"github.com/username/timeoff-tracker/internal/yearmodel"
	"go.uber.org/zap"
)

type emptyProvider struct{}

func (emptyProvider) Lookup(int, string, string) ([]holidays.Holiday, error) {
	return nil, nil
}

func buildYear(t *testing.T, year int) *yearmodel.YearData {
	t.Helper()
	builder := yearmodel.NewBuilder(emptyProvider{}, zap.NewNop())
	return builder.BuildYear(year, "US", "")
}

func TestYearContainsAllMonths(t *testing.T) {
	r := New(settings.Defaults().Colors)
	data := buildYear(t, 2025)

	out := r.Year(data, personal.NewSet(), nil)

	assert.Contains(t, out, "2025")
	for _, name := range []string{"January", "April", "August", "December"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Mo Tu We Th Fr Sa Su")
}

func TestMonthGridAlignment(t *testing.T) {
	r := New(settings.Defaults().Colors)
	data := buildYear(t, 2025)

	// June 2025 starts on a Sunday, so day 1 sits in the last column.
	out := r.Month(data.Months[5], personal.NewSet(), overlay.MonthOverlay{})
	lines := strings.Split(out, "\n")

	var firstWeek string
	for _, line := range lines {
		if strings.Contains(line, " 1") && !strings.Contains(line, "Mo") {
			firstWeek = line
			break
		}
	}
	require.NotEmpty(t, firstWeek)
	assert.True(t, strings.HasSuffix(strings.TrimRight(firstWeek, " "), "1"),
		"June 2025 must start in the Sunday column, got %q", firstWeek)
}

func TestMonthShowsEventBars(t *testing.T) {
	r := New(settings.Defaults().Colors)
	data := buildYear(t, 2025)

	ov := overlay.MonthOverlay{
		Placements: []overlay.Placement{
			{Event: icalfeed.Event{Summary: "Team offsite"}, StartOffset: 7, Span: 3, EndOffset: 26},
		},
		MoreCount: 2,
	}

	out := r.Month(data.Months[5], personal.NewSet(), ov)
	assert.Contains(t, out, "Team offsite (3d)")
	assert.Contains(t, out, "+2 more")
}

func TestBreakdown(t *testing.T) {
	r := New(settings.Defaults().Colors)

	out := r.Breakdown(entitlement.Result{
		Remaining:                 33,
		TotalDaysInYear:           366,
		WeekendDays:               104,
		BankHolidaysOnWeekdays:    8,
		WorkDays:                  216,
		CarryoverHolidays:         2,
		AvailablePersonalHolidays: 40,
		UsedPersonalHolidays:      7,
	})

	assert.Contains(t, out, "366")
	assert.Contains(t, out, "-104")
	assert.Contains(t, out, "-216")
	assert.Contains(t, out, "+2")
	assert.Contains(t, out, "Remaining")
	assert.Contains(t, out, "33")
	assert.NotContains(t, out, "estimates")
}

func TestBreakdownMarksEstimates(t *testing.T) {
	r := New(settings.Defaults().Colors)

	out := r.Breakdown(entitlement.Result{Estimated: true, TotalDaysInYear: 365})
	assert.Contains(t, out, "estimates")
}

func TestLegend(t *testing.T) {
	r := New(settings.Defaults().Colors)

	out := r.Legend()
	for _, label := range []string{"work day", "weekend", "bank holiday", "personal holiday", "calendar event"} {
		assert.Contains(t, out, label)
	}
}

