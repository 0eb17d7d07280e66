// Package render draws the year calendar, the entitlement breakdown and the
// legend for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/username/timeoff-tracker/internal/entitlement"
	"github.com/username/timeoff-tracker/internal/overlay"
	"github.com/username/timeoff-tracker/internal/personal"
	"github.com/username/timeoff-tracker/internal/settings"
	"github.com/username/timeoff-tracker/internal/yearmodel"
	"github.com/username/timeoff-tracker/pkg/dateutil"
)

const monthsPerRow = 3

// Styles holds the lipgloss styles derived from the legend palette.
type Styles struct {
	Title          lipgloss.Style
	Header         lipgloss.Style
	Normal         lipgloss.Style
	Weekend        lipgloss.Style
	Holiday        lipgloss.Style
	HolidayWeekend lipgloss.Style
	Personal       lipgloss.Style
	Event          lipgloss.Style
	Muted          lipgloss.Style
}

// Renderer renders calendar output with a legend palette.
type Renderer struct {
	styles Styles
}

// New creates a renderer for the given palette.
func New(colors settings.LegendColors) *Renderer {
	return &Renderer{styles: Styles{
		Title:          lipgloss.NewStyle().Bold(true),
		Header:         lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Normal:         lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Normal)),
		Weekend:        lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Weekend)),
		Holiday:        lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Holiday)),
		HolidayWeekend: lipgloss.NewStyle().Foreground(lipgloss.Color(colors.HolidayWeekend)),
		Personal:       lipgloss.NewStyle().Foreground(lipgloss.Color(colors.PersonalHoliday)).Bold(true),
		Event:          lipgloss.NewStyle().Foreground(lipgloss.Color(colors.ICalEvents)),
		Muted:          lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	}}
}

// Year renders the full year: twelve month grids in rows of three, with
// event overlays below the months that have them.
func (r *Renderer) Year(data *yearmodel.YearData, set *personal.Set, overlays map[time.Month]overlay.MonthOverlay) string {
	var rows []string
	for start := 0; start < len(data.Months); start += monthsPerRow {
		end := start + monthsPerRow
		if end > len(data.Months) {
			end = len(data.Months)
		}

		var blocks []string
		for _, month := range data.Months[start:end] {
			var ov overlay.MonthOverlay
			if overlays != nil {
				ov = overlays[time.Month(month.Number)]
			}
			blocks = append(blocks, r.Month(month, set, ov))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}

	title := r.styles.Title.Render(fmt.Sprintf("%d", data.Year))
	return title + "\n\n" + strings.Join(rows, "\n\n")
}

// Month renders one month grid with its event bars.
func (r *Renderer) Month(month yearmodel.Month, set *personal.Set, ov overlay.MonthOverlay) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(month.Name))
	b.WriteString("\n")
	b.WriteString(r.styles.Header.Render("Mo Tu We Th Fr Sa Su"))
	b.WriteString("\n")

	lead := dateutil.MondayFirstIndex(month.FirstDayOfWeek)
	col := 0
	for ; col < lead; col++ {
		b.WriteString("   ")
	}

	for _, day := range month.Days {
		cell := fmt.Sprintf("%2d", day.DayOfMonth)
		b.WriteString(r.dayStyle(day, set).Render(cell))
		col++
		if col%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	if col%7 != 0 {
		b.WriteString("\n")
	}

	for _, p := range ov.Placements {
		label := p.Event.Summary
		if p.Span > 1 {
			label = fmt.Sprintf("%s (%dd)", label, p.Span)
		}
		b.WriteString(r.styles.Event.Render("* " + label))
		b.WriteString("\n")
	}
	if ov.MoreCount > 0 {
		b.WriteString(r.styles.Muted.Render(fmt.Sprintf("+%d more", ov.MoreCount)))
		b.WriteString("\n")
	}

	// Pad to a fixed width so months align when joined horizontally.
	return lipgloss.NewStyle().Width(22).Render(b.String())
}

func (r *Renderer) dayStyle(day yearmodel.Day, set *personal.Set) lipgloss.Style {
	switch {
	case set != nil && set.Has(day.Key()):
		return r.styles.Personal
	case day.IsBankHoliday && day.IsWeekend:
		return r.styles.HolidayWeekend
	case day.IsBankHoliday:
		return r.styles.Holiday
	case day.IsWeekend:
		return r.styles.Weekend
	default:
		return r.styles.Normal
	}
}

// Breakdown renders the entitlement calculation line by line.
func (r *Renderer) Breakdown(res entitlement.Result) string {
	var b strings.Builder

	line := func(label string, value string) {
		b.WriteString(fmt.Sprintf("%-28s %8s\n", label, value))
	}

	line("Days in year", fmt.Sprintf("%d", res.TotalDaysInYear))
	line("Weekend days", fmt.Sprintf("-%d", res.WeekendDays))
	line("Bank holidays on weekdays", fmt.Sprintf("-%d", res.BankHolidaysOnWeekdays))
	line("Work days", fmt.Sprintf("-%d", res.WorkDays))
	if res.CarryoverHolidays != 0 {
		line("Carried over", fmt.Sprintf("+%d", res.CarryoverHolidays))
	}
	line("Available", fmt.Sprintf("%d", res.AvailablePersonalHolidays))
	line("Used", fmt.Sprintf("%d", res.UsedPersonalHolidays))

	b.WriteString(strings.Repeat("-", 37))
	b.WriteString("\n")
	remaining := r.styles.Title.Render(fmt.Sprintf("%d", res.Remaining))
	b.WriteString(fmt.Sprintf("%-28s %8s\n", "Remaining", remaining))

	if res.Estimated {
		b.WriteString(r.styles.Muted.Render("Holiday data unavailable, weekend and holiday counts are estimates."))
		b.WriteString("\n")
	}

	return b.String()
}

// Legend renders the color legend.
func (r *Renderer) Legend() string {
	entries := []struct {
		style lipgloss.Style
		label string
	}{
		{r.styles.Normal, "work day"},
		{r.styles.Weekend, "weekend"},
		{r.styles.Holiday, "bank holiday"},
		{r.styles.HolidayWeekend, "holiday on weekend"},
		{r.styles.Personal, "personal holiday"},
		{r.styles.Event, "calendar event"},
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.style.Render("#")+" "+e.label)
	}
	return strings.Join(parts, "   ")
}
