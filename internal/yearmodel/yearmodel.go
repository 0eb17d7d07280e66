// Package yearmodel builds the immutable calendar model for one year: twelve
// months of days annotated with weekends and resolved public holidays.
package yearmodel

import (
	"sort"
	"strings"
	"time"

	"github.com/username/timeoff-tracker/internal/holidays"
	"github.com/username/timeoff-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthNamesShort = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Day represents one calendar date. Days are values; they are never mutated
// after the year is built.
type Day struct {
	Date            time.Time
	Year            int
	Month           int // 1-12
	DayOfMonth      int
	DayOfWeek       int // 0 = Sunday .. 6 = Saturday
	IsWeekend       bool
	IsBankHoliday   bool
	BankHolidayName string
}

// Key returns the day's YYYY-MM-DD date key.
func (d Day) Key() string {
	return dateutil.DateKey(d.Date)
}

// Month is one calendar month of one year.
type Month struct {
	Number         int // 1-12
	Name           string
	ShortName      string
	DaysInMonth    int
	FirstDayOfWeek int // weekday index of day 1, Sunday = 0
	Days           []Day
}

// BankHoliday is one resolved public holiday (deduplicated by date).
type BankHoliday struct {
	Date time.Time
	Name string
}

// YearData is the complete calendar model for a (year, country, subdivision)
// triple. Treated as a value object: any input change produces a fresh
// instance.
type YearData struct {
	Year         int
	IsLeapYear   bool
	TotalDays    int
	Months       []Month
	BankHolidays []BankHoliday
}

// Builder produces YearData from a holiday provider.
type Builder struct {
	provider holidays.Provider
	logger   *zap.Logger
}

// NewBuilder creates a calendar model builder.
func NewBuilder(provider holidays.Provider, logger *zap.Logger) *Builder {
	return &Builder{provider: provider, logger: logger}
}

// BuildYear generates the full calendar model. A provider failure degrades to
// an empty holiday list rather than failing the build; the calendar itself
// must always render.
func (b *Builder) BuildYear(year int, countryCode, subdivisionCode string) *YearData {
	bankHolidays := b.resolveHolidays(year, countryCode, subdivisionCode)

	holidayNames := make(map[string]string, len(bankHolidays))
	for _, bh := range bankHolidays {
		holidayNames[dateutil.DateKey(bh.Date)] = bh.Name
	}

	months := make([]Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		daysInMonth := dateutil.DaysInMonth(year, m)
		first := time.Date(year, m, 1, 0, 0, 0, 0, time.Local)

		days := make([]Day, 0, daysInMonth)
		for dom := 1; dom <= daysInMonth; dom++ {
			date := time.Date(year, m, dom, 0, 0, 0, 0, time.Local)
			dow := int(date.Weekday())
			name, isHoliday := holidayNames[dateutil.DateKey(date)]

			days = append(days, Day{
				Date:            date,
				Year:            year,
				Month:           int(m),
				DayOfMonth:      dom,
				DayOfWeek:       dow,
				IsWeekend:       dow == 0 || dow == 6,
				IsBankHoliday:   isHoliday,
				BankHolidayName: name,
			})
		}

		months = append(months, Month{
			Number:         int(m),
			Name:           monthNames[m-1],
			ShortName:      monthNamesShort[m-1],
			DaysInMonth:    daysInMonth,
			FirstDayOfWeek: int(first.Weekday()),
			Days:           days,
		})
	}

	return &YearData{
		Year:         year,
		IsLeapYear:   dateutil.IsLeapYear(year),
		TotalDays:    dateutil.DaysInYear(year),
		Months:       months,
		BankHolidays: bankHolidays,
	}
}

// resolveHolidays queries the provider and keeps only bank/public/national
// entries, deduplicated by date and sorted ascending.
func (b *Builder) resolveHolidays(year int, countryCode, subdivisionCode string) []BankHoliday {
	resolved, err := b.provider.Lookup(year, countryCode, subdivisionCode)
	if err != nil {
		b.logger.Warn("Holiday lookup failed, rendering year without holidays",
			zap.Int("year", year),
			zap.String("country", countryCode),
			zap.String("subdivision", subdivisionCode),
			zap.Error(err))
		return nil
	}

	seen := make(map[string]bool, len(resolved))
	out := make([]BankHoliday, 0, len(resolved))
	for _, h := range resolved {
		if !isBankCategory(h.Category) {
			continue
		}
		key := dateutil.DateKey(h.Date)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, BankHoliday{Date: dateutil.StartOfDay(h.Date), Name: h.Name})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

// isBankCategory trusts the provider's classification and accepts anything
// it labels a bank, public or national holiday.
func isBankCategory(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "bank") ||
		strings.Contains(c, "public") ||
		strings.Contains(c, "national")
}

// GetDay returns a specific day from the model, or nil when out of range.
func (yd *YearData) GetDay(month, dayOfMonth int) *Day {
	if month < 1 || month > 12 {
		return nil
	}
	days := yd.Months[month-1].Days
	if dayOfMonth < 1 || dayOfMonth > len(days) {
		return nil
	}
	return &days[dayOfMonth-1]
}

// WeekendDayCount returns the number of weekend days in the year.
func (yd *YearData) WeekendDayCount() int {
	count := 0
	for _, m := range yd.Months {
		for _, d := range m.Days {
			if d.IsWeekend {
				count++
			}
		}
	}
	return count
}

// WeekdayHolidayCount returns the number of bank holidays that fall on a
// non-weekend day. Holidays landing on a weekend do not consume entitlement.
func (yd *YearData) WeekdayHolidayCount() int {
	count := 0
	for _, bh := range yd.BankHolidays {
		if !dateutil.IsWeekend(bh.Date) {
			count++
		}
	}
	return count
}
