// Package icalfeed fetches and parses an iCalendar feed so external events
// can be shown on the calendar. Only the properties the overlay needs are
// kept; recurring events are expanded into concrete occurrences.
package icalfeed

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
)

// Event is a single calendar occurrence from the feed.
type Event struct {
	UID      string
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
	AllDay   bool
}

// Days lists the date keys the event touches, end exclusive for timed events
// and for the iCalendar all-day convention where DTEND is the day after.
func (e Event) Days() []string {
	start := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day(), 0, 0, 0, 0, time.Local)
	end := e.End
	if !end.After(e.Start) {
		end = e.Start.Add(time.Second)
	}
	var days []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// InYear reports whether the event touches any day of the given year. End is
// exclusive, so an event ending at midnight on January 1 does not reach into
// the new year.
func (e Event) InYear(year int) bool {
	end := e.End
	if !end.After(e.Start) {
		end = e.Start.Add(time.Second)
	}
	last := end.Add(-time.Nanosecond)
	return e.Start.Year() <= year && last.Year() >= year
}

// Client downloads iCalendar feeds.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a feed client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Fetch downloads and parses the feed for one year. webcal URLs are
// rewritten to https, and a cache-busting parameter defeats stale
// intermediary caches.
func (c *Client) Fetch(feedURL string, year int) ([]Event, error) {
	normalized, err := normalizeURL(feedURL)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		data, err := c.fetchOnce(normalized)
		if err == nil {
			events, err := Parse(data, year, c.logger)
			if err != nil {
				return nil, err
			}
			c.logger.Info("Calendar feed loaded",
				zap.String("url", normalized),
				zap.Int("events", len(events)))
			return events, nil
		}

		lastErr = err
		c.logger.Warn("Feed request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", defaultRetries),
			zap.Error(err))

		if attempt < defaultRetries {
			// Exponential backoff: 1s, 2s, 4s, ...
			time.Sleep(time.Second << (attempt - 1))
		}
	}

	return nil, fmt.Errorf("feed request failed after %d attempts: %w", defaultRetries, lastErr)
}

func (c *Client) fetchOnce(feedURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func normalizeURL(feedURL string) (string, error) {
	if strings.HasPrefix(feedURL, "webcal://") {
		feedURL = "https://" + strings.TrimPrefix(feedURL, "webcal://")
	}

	parsed, err := url.Parse(feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported feed URL scheme %q", parsed.Scheme)
	}

	query := parsed.Query()
	query.Set("nocache", fmt.Sprintf("%d", time.Now().UnixNano()))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Parse decodes iCalendar data into events. Events with an RRULE are
// expanded into their occurrences within the given year; events without a
// UID get a generated one.
func Parse(data []byte, year int, logger *zap.Logger) ([]Event, error) {
	lines := unfold(string(data))

	var events []Event
	var current map[string]property
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			current = make(map[string]property)
		case line == "END:VEVENT":
			if current != nil {
				events = append(events, buildEvents(current, year, logger)...)
				current = nil
			}
		case current != nil:
			name, prop, ok := parseProperty(line)
			if ok {
				current[name] = prop
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

type property struct {
	params map[string]string
	value  string
}

// unfold joins folded lines. A line starting with a space or tab continues
// the previous one.
func unfold(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string
	for _, line := range raw {
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseProperty(line string) (string, property, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", property{}, false
	}

	head := line[:idx]
	value := line[idx+1:]

	parts := strings.Split(head, ";")
	name := strings.ToUpper(parts[0])
	params := make(map[string]string)
	for _, part := range parts[1:] {
		if eq := strings.Index(part, "="); eq > 0 {
			params[strings.ToUpper(part[:eq])] = part[eq+1:]
		}
	}

	return name, property{params: params, value: unescapeText(value)}, true
}

func unescapeText(value string) string {
	r := strings.NewReplacer(`\n`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(value)
}

func buildEvents(props map[string]property, year int, logger *zap.Logger) []Event {
	startProp, ok := props["DTSTART"]
	if !ok {
		return nil
	}
	start, allDay, err := parseDateTime(startProp)
	if err != nil {
		logger.Warn("Skipping event with bad DTSTART", zap.Error(err))
		return nil
	}

	end := start
	if endProp, ok := props["DTEND"]; ok {
		if parsed, _, err := parseDateTime(endProp); err == nil {
			end = parsed
		}
	} else if allDay {
		end = start.AddDate(0, 0, 1)
	}

	event := Event{
		UID:      props["UID"].value,
		Summary:  props["SUMMARY"].value,
		Location: props["LOCATION"].value,
		Start:    start,
		End:      end,
		AllDay:   allDay,
	}
	if event.UID == "" {
		event.UID = uuid.NewString()
	}

	ruleProp, ok := props["RRULE"]
	if !ok {
		return []Event{event}
	}

	rule, err := rrule.StrToRRule(ruleProp.value)
	if err != nil {
		logger.Warn("Skipping unparseable RRULE, keeping base event",
			zap.String("rrule", ruleProp.value),
			zap.Error(err))
		return []Event{event}
	}
	rule.DTStart(start)

	// Expansion is bounded to the requested year; rules anchored in earlier
	// years still contribute the occurrences that land inside it.
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.Local).Add(-time.Nanosecond)
	duration := end.Sub(start)

	var occurrences []Event
	for _, occStart := range rule.Between(from, to, true) {
		occ := event
		occ.Start = occStart
		occ.End = occStart.Add(duration)
		occ.UID = fmt.Sprintf("%s/%s", event.UID, occStart.Format("20060102T150405"))
		occurrences = append(occurrences, occ)
	}
	return occurrences
}

// parseDateTime handles the DATE and DATE-TIME forms. The second return
// value reports an all-day (date only) value.
func parseDateTime(prop property) (time.Time, bool, error) {
	value := prop.value

	if prop.params["VALUE"] == "DATE" || len(value) == 8 {
		t, err := time.ParseInLocation("20060102", value, time.Local)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("bad date %q: %w", value, err)
		}
		return t, true, nil
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse("20060102T150405Z", value)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("bad UTC date-time %q: %w", value, err)
		}
		return t, false, nil
	}

	loc := time.Local
	if tzid := prop.params["TZID"]; tzid != "" {
		if parsed, err := time.LoadLocation(tzid); err == nil {
			loc = parsed
		}
	}
	t, err := time.ParseInLocation("20060102T150405", value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad date-time %q: %w", value, err)
	}
	return t, false, nil
}
