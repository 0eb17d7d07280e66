// Package entitlement computes remaining personal holiday days for a year
// from the calendar model, the entitlement policy and the user's chosen
// dates.
package entitlement

import (
	"fmt"

	"github.com/username/timeoff-tracker/internal/holidays"
	"github.com/username/timeoff-tracker/internal/personal"
	"github.com/username/timeoff-tracker/internal/yearmodel"
	"github.com/username/timeoff-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

// Policy defaults when a year has no stored record.
const (
	DefaultWorkDaysPerYear   = 216
	DefaultCarryoverHolidays = 0
)

// Estimates used when the calendar model is unavailable. Degraded accuracy,
// not an error.
const (
	estimatedWeekendDays     = 104
	estimatedWeekdayHolidays = 8
)

// Policy is the per-year entitlement configuration.
type Policy struct {
	WorkDaysPerYear   int
	CarryoverHolidays int
}

// DefaultPolicy returns the policy applied when a year has no stored record.
func DefaultPolicy() Policy {
	return Policy{
		WorkDaysPerYear:   DefaultWorkDaysPerYear,
		CarryoverHolidays: DefaultCarryoverHolidays,
	}
}

// Result is the remaining-entitlement breakdown. Remaining is clamped to
// zero; the other fields stay unclamped for diagnostic display.
type Result struct {
	Remaining                 int
	TotalDaysInYear           int
	WeekendDays               int
	BankHolidaysOnWeekdays    int
	WorkDays                  int
	CarryoverHolidays         int
	AvailablePersonalHolidays int
	UsedPersonalHolidays      int
	Estimated                 bool // true when the fallback estimates were used
}

// buildFunc produces the calendar model for a triple. It is a seam so the
// degraded path can be tested independently of the builder.
type buildFunc func(year int, countryCode, subdivisionCode string) (*yearmodel.YearData, error)

// Calculator computes remaining entitlement.
type Calculator struct {
	build  buildFunc
	logger *zap.Logger
}

// NewCalculator creates a calculator backed by the given holiday provider.
func NewCalculator(provider holidays.Provider, logger *zap.Logger) *Calculator {
	builder := yearmodel.NewBuilder(provider, logger)
	return &Calculator{
		build: func(year int, country, subdivision string) (*yearmodel.YearData, error) {
			if country == "" {
				return nil, fmt.Errorf("country code is required")
			}
			return builder.BuildYear(year, country, subdivision), nil
		},
		logger: logger,
	}
}

// ComputeRemaining evaluates
//
//	available = totalDays - weekendDays - weekdayHolidays - workDays + carryover
//	remaining = max(0, available - used)
//
// where used counts only personal holiday keys belonging to the requested
// year. Out-of-range policy values are the caller's concern; the result is
// always mathematically consistent.
func (c *Calculator) ComputeRemaining(year int, countryCode, subdivisionCode string, policy Policy, set *personal.Set) Result {
	yd, err := c.build(year, countryCode, subdivisionCode)
	if err != nil {
		c.logger.Warn("Calendar model unavailable, using fixed estimates",
			zap.Int("year", year),
			zap.String("country", countryCode),
			zap.Error(err))
		return c.estimate(year, policy, set)
	}

	used := set.CountForYear(year)
	available := yd.TotalDays - yd.WeekendDayCount() - yd.WeekdayHolidayCount() -
		policy.WorkDaysPerYear + policy.CarryoverHolidays

	return Result{
		Remaining:                 clampZero(available - used),
		TotalDaysInYear:           yd.TotalDays,
		WeekendDays:               yd.WeekendDayCount(),
		BankHolidaysOnWeekdays:    yd.WeekdayHolidayCount(),
		WorkDays:                  policy.WorkDaysPerYear,
		CarryoverHolidays:         policy.CarryoverHolidays,
		AvailablePersonalHolidays: available,
		UsedPersonalHolidays:      used,
	}
}

// estimate is the degraded path: fixed approximations instead of the exact
// calendar counts.
func (c *Calculator) estimate(year int, policy Policy, set *personal.Set) Result {
	totalDays := dateutil.DaysInYear(year)
	used := set.CountForYear(year)
	available := totalDays - estimatedWeekendDays - estimatedWeekdayHolidays -
		policy.WorkDaysPerYear + policy.CarryoverHolidays

	return Result{
		Remaining:                 clampZero(available - used),
		TotalDaysInYear:           totalDays,
		WeekendDays:               estimatedWeekendDays,
		BankHolidaysOnWeekdays:    estimatedWeekdayHolidays,
		WorkDays:                  policy.WorkDaysPerYear,
		CarryoverHolidays:         policy.CarryoverHolidays,
		AvailablePersonalHolidays: available,
		UsedPersonalHolidays:      used,
		Estimated:                 true,
	}
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
