package gist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ConfigurationKey is the reserved top-level key holding cross-year
// configuration. Every other top-level key must parse as a year number.
const ConfigurationKey = "configuration"

// YearRecord is the per-year payload stored in the document.
type YearRecord struct {
	Holidays          []string `json:"holidays"`
	WorkDaysPerYear   int      `json:"workDaysPerYear"`
	CarryoverHolidays int      `json:"carryoverHolidays"`
}

// LegendColors mirrors the stored legend palette.
type LegendColors struct {
	Normal          string `json:"normal,omitempty"`
	Weekend         string `json:"weekend,omitempty"`
	Holiday         string `json:"holiday,omitempty"`
	HolidayWeekend  string `json:"holidayWeekend,omitempty"`
	PersonalHoliday string `json:"personalHoliday,omitempty"`
	ICalEvents      string `json:"icalEvents,omitempty"`
}

// Configuration is the cross-year settings section of the document.
type Configuration struct {
	Country     string        `json:"country,omitempty"`
	Subdivision string        `json:"state,omitempty"`
	Language    string        `json:"language,omitempty"`
	Colors      *LegendColors `json:"colors,omitempty"`
	ICalURL     string        `json:"icalUrl,omitempty"`
}

// Document is the decoded remote store: one record per year plus an optional
// configuration section.
type Document struct {
	Years         map[int]YearRecord
	Configuration *Configuration
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Years: make(map[int]YearRecord)}
}

// yearRecordWire tolerates records written by older versions, which carried
// per-year country, state, savedAt and note fields. Those are dropped on the
// next write.
type yearRecordWire struct {
	Holidays          []string `json:"holidays"`
	WorkDaysPerYear   *int     `json:"workDaysPerYear"`
	CarryoverHolidays *int     `json:"carryoverHolidays"`
}

// ParseDocument decodes the raw document content. Top-level keys are routed
// by shape: the configuration key feeds the configuration section, numeric
// keys become year records, anything else is ignored. Year records missing
// the numeric fields get zero values; callers apply their own defaults.
func ParseDocument(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return NewDocument(), nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := NewDocument()
	for key, value := range top {
		if key == ConfigurationKey {
			var cfg Configuration
			if err := json.Unmarshal(value, &cfg); err != nil {
				return nil, fmt.Errorf("%w: bad configuration section: %v", ErrMalformed, err)
			}
			doc.Configuration = &cfg
			continue
		}

		year, err := strconv.Atoi(key)
		if err != nil {
			continue
		}

		var wire yearRecordWire
		if err := json.Unmarshal(value, &wire); err != nil {
			return nil, fmt.Errorf("%w: bad record for year %d: %v", ErrMalformed, year, err)
		}

		record := YearRecord{Holidays: wire.Holidays}
		if record.Holidays == nil {
			record.Holidays = []string{}
		}
		if wire.WorkDaysPerYear != nil {
			record.WorkDaysPerYear = *wire.WorkDaysPerYear
		}
		if wire.CarryoverHolidays != nil {
			record.CarryoverHolidays = *wire.CarryoverHolidays
		}
		doc.Years[year] = record
	}

	return doc, nil
}

// Encode serializes the document. Only the known fields are written, so
// legacy per-year fields tolerated by ParseDocument disappear here.
func (d *Document) Encode() ([]byte, error) {
	top := make(map[string]interface{}, len(d.Years)+1)
	for year, record := range d.Years {
		if record.Holidays == nil {
			record.Holidays = []string{}
		}
		top[strconv.Itoa(year)] = record
	}
	if d.Configuration != nil {
		top[ConfigurationKey] = d.Configuration
	}
	return json.MarshalIndent(top, "", "  ")
}

// Years lists the stored years in ascending order.
func (d *Document) YearList() []int {
	years := make([]int, 0, len(d.Years))
	for year := range d.Years {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// MostRecentYear returns the numerically largest stored year, or false when
// the document holds no years.
func (d *Document) MostRecentYear() (int, bool) {
	if len(d.Years) == 0 {
		return 0, false
	}
	years := d.YearList()
	return years[len(years)-1], true
}
