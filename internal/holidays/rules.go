package holidays

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Rule tables per country. The US set comes straight from the library; the
// European sets are defined here because the library's country packages do
// not expose the regional splits we need in one place.

func dayOfMonth(name, category string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{
		Name:  name,
		Type:  observanceType(category),
		Month: month,
		Day:   day,
		Func:  cal.CalcDayOfMonth,
	}
}

func easterOffset(name, category string, offset int) *cal.Holiday {
	return &cal.Holiday{
		Name:   name,
		Type:   observanceType(category),
		Offset: offset,
		Func:   cal.CalcEasterOffset,
	}
}

// weekdayOfMonth describes holidays like "first Monday of May". offset < 0
// counts from the end of the month.
func weekdayOfMonth(name, category string, month time.Month, weekday time.Weekday, offset int) *cal.Holiday {
	return &cal.Holiday{
		Name:    name,
		Type:    observanceType(category),
		Month:   month,
		Weekday: weekday,
		Offset:  offset,
		Func:    cal.CalcWeekdayOffset,
	}
}

func observanceType(category string) cal.ObservanceType {
	switch category {
	case CategoryBank:
		return cal.ObservanceBank
	case CategoryReligious:
		return cal.ObservanceReligious
	case CategoryObservance:
		return cal.ObservanceOther
	default:
		return cal.ObservancePublic
	}
}

var countryRules = map[string][]*cal.Holiday{
	"US": {
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ColumbusDay,
		us.VeteransDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	},
	"FR": {
		dayOfMonth("Jour de l'an", CategoryPublic, time.January, 1),
		easterOffset("Lundi de Pâques", CategoryPublic, 1),
		dayOfMonth("Fête du Travail", CategoryPublic, time.May, 1),
		dayOfMonth("Victoire 1945", CategoryPublic, time.May, 8),
		easterOffset("Ascension", CategoryPublic, 39),
		easterOffset("Lundi de Pentecôte", CategoryPublic, 50),
		dayOfMonth("Fête nationale", CategoryPublic, time.July, 14),
		dayOfMonth("Assomption", CategoryPublic, time.August, 15),
		dayOfMonth("Toussaint", CategoryPublic, time.November, 1),
		dayOfMonth("Armistice 1918", CategoryPublic, time.November, 11),
		dayOfMonth("Noël", CategoryPublic, time.December, 25),
	},
	"DE": {
		dayOfMonth("Neujahr", CategoryPublic, time.January, 1),
		easterOffset("Karfreitag", CategoryPublic, -2),
		easterOffset("Ostermontag", CategoryPublic, 1),
		dayOfMonth("Tag der Arbeit", CategoryPublic, time.May, 1),
		easterOffset("Christi Himmelfahrt", CategoryPublic, 39),
		easterOffset("Pfingstmontag", CategoryPublic, 50),
		dayOfMonth("Tag der Deutschen Einheit", CategoryPublic, time.October, 3),
		dayOfMonth("Erster Weihnachtstag", CategoryPublic, time.December, 25),
		dayOfMonth("Zweiter Weihnachtstag", CategoryPublic, time.December, 26),
	},
	"GB": {
		dayOfMonth("New Year's Day", CategoryBank, time.January, 1),
		easterOffset("Good Friday", CategoryBank, -2),
		easterOffset("Easter Monday", CategoryBank, 1),
		weekdayOfMonth("Early May bank holiday", CategoryBank, time.May, time.Monday, 1),
		weekdayOfMonth("Spring bank holiday", CategoryBank, time.May, time.Monday, -1),
		weekdayOfMonth("Summer bank holiday", CategoryBank, time.August, time.Monday, -1),
		dayOfMonth("Christmas Day", CategoryBank, time.December, 25),
		dayOfMonth("Boxing Day", CategoryBank, time.December, 26),
	},
}

// subdivisionRules adds holidays observed only in a subdivision, keyed by
// "CC-SS". They are layered on top of the country set.
var subdivisionRules = map[string][]*cal.Holiday{
	"US-MA": {
		weekdayOfMonth("Patriots' Day", CategoryPublic, time.April, time.Monday, 3),
	},
	"US-TX": {
		dayOfMonth("Texas Independence Day", CategoryPublic, time.March, 2),
	},
	"DE-BY": {
		dayOfMonth("Heilige Drei Könige", CategoryPublic, time.January, 6),
		easterOffset("Fronleichnam", CategoryPublic, 60),
		dayOfMonth("Mariä Himmelfahrt", CategoryPublic, time.August, 15),
		dayOfMonth("Allerheiligen", CategoryPublic, time.November, 1),
	},
	"DE-BW": {
		dayOfMonth("Heilige Drei Könige", CategoryPublic, time.January, 6),
		easterOffset("Fronleichnam", CategoryPublic, 60),
		dayOfMonth("Allerheiligen", CategoryPublic, time.November, 1),
	},
	"FR-57": {
		easterOffset("Vendredi saint", CategoryPublic, -2),
		dayOfMonth("Saint Étienne", CategoryPublic, time.December, 26),
	},
}
