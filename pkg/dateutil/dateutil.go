package dateutil

import (
	"fmt"
	"strconv"
	"time"
)

// DateKeyLayout is the canonical key format used for personal holiday dates.
const DateKeyLayout = "2006-01-02"

var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(date time.Time) string {
	return date.Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key into a date (midnight, local time).
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// YearOfKey extracts the year from a YYYY-MM-DD key without fully parsing it.
// Returns 0 for keys that do not start with a 4-digit year.
func YearOfKey(key string) int {
	if len(key) < 5 || key[4] != '-' {
		return 0
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0
	}
	return year
}

// IsLeapYear reports whether the year is a leap year in the proleptic
// Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in the given month, accounting for
// leap-year February.
func DaysInMonth(year int, month time.Month) int {
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return daysPerMonth[month-1]
}

// StartOfDay returns the start of the day (00:00:00) for the given date.
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// IsWeekend returns true if the date is Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day.
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// CountWeekendDays returns the exact number of Saturdays and Sundays in the
// year.
func CountWeekendDays(year int) int {
	count := 0
	for month := time.January; month <= time.December; month++ {
		for day := 1; day <= DaysInMonth(year, month); day++ {
			if IsWeekend(time.Date(year, month, day, 0, 0, 0, 0, time.Local)) {
				count++
			}
		}
	}
	return count
}

// MondayFirstIndex converts a Sunday=0 weekday index to a Monday=0 index,
// as used by the month grid layout.
func MondayFirstIndex(dayOfWeek int) int {
	return (dayOfWeek + 6) % 7
}

// ParseDate parses a date string in a handful of accepted formats.
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// Today returns today's date (start of day).
func Today() time.Time {
	return StartOfDay(time.Now())
}
