package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	input := time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local)

	key := DateKey(input)
	if key != "2025-03-07" {
		t.Errorf("DateKey(%v) = %q, want %q", input, key, "2025-03-07")
	}

	parsed, err := ParseDateKey(key)
	if err != nil {
		t.Fatalf("ParseDateKey(%q) error = %v", key, err)
	}
	if !parsed.Equal(input) {
		t.Errorf("ParseDateKey(%q) = %v, want %v", key, parsed, input)
	}
}

func TestParseDateKey_Invalid(t *testing.T) {
	if _, err := ParseDateKey("not-a-date"); err == nil {
		t.Error("ParseDateKey(\"not-a-date\") expected error, got nil")
	}
}

func TestYearOfKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want int
	}{
		{"normal key", "2024-06-15", 2024},
		{"other year", "2023-12-31", 2023},
		{"garbage", "abcd-01-01", 0},
		{"too short", "24", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearOfKey(tt.key); got != tt.want {
				t.Errorf("YearOfKey(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2025, false},
		{2000, true},  // divisible by 400
		{1900, false}, // divisible by 100 but not 400
		{2100, false},
		{2400, true},
	}

	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"February leap", 2024, time.February, 29},
		{"February non-leap", 2025, time.February, 28},
		{"January", 2025, time.January, 31},
		{"April", 2025, time.April, 30},
		{"December", 2024, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestCountWeekendDays(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2024, 104}, // leap year starting on Monday
		{2025, 104},
		{2022, 105}, // starts on Saturday
	}

	for _, tt := range tests {
		if got := CountWeekendDays(tt.year); got != tt.want {
			t.Errorf("CountWeekendDays(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  bool
	}{
		{"Saturday is weekend", time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), true},
		{"Sunday is weekend", time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), true},
		{"Monday is not weekend", time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"Friday is not weekend", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWeekend(tt.input)

			if result != tt.want {
				t.Errorf("IsWeekend(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), result, tt.want)
			}
		})
	}
}

func TestMondayFirstIndex(t *testing.T) {
	tests := []struct {
		name      string
		dayOfWeek int // Sunday=0
		want      int // Monday=0
	}{
		{"Sunday", 0, 6},
		{"Monday", 1, 0},
		{"Wednesday", 3, 2},
		{"Saturday", 6, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MondayFirstIndex(tt.dayOfWeek); got != tt.want {
				t.Errorf("MondayFirstIndex(%d) = %d, want %d", tt.dayOfWeek, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			"ISO format YYYY-MM-DD",
			"2025-01-15",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local),
			false,
		},
		{
			"dotted format DD.MM.YYYY",
			"15.01.2025",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local),
			false,
		},
		{
			"ISO with time",
			"2025-01-15T10:30:00",
			time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local),
			false,
		},
		{
			"garbage",
			"yesterday",
			time.Time{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}
