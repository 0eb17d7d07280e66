package holidays

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rickar/cal/v2"
	"go.uber.org/zap"
)

// Library resolves holidays from the built-in rule tables. Resolved years are
// cached per (year, country, subdivision) triple since the rules never change
// at runtime.
type Library struct {
	logger  *zap.Logger
	cacheMu sync.RWMutex
	cache   map[string][]Holiday
}

// NewLibrary creates a rule-table backed holiday provider.
func NewLibrary(logger *zap.Logger) *Library {
	return &Library{
		logger: logger,
		cache:  make(map[string][]Holiday),
	}
}

// Countries returns the supported country codes, sorted.
func (l *Library) Countries() []string {
	codes := make([]string, 0, len(countryRules))
	for code := range countryRules {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Subdivisions returns the supported subdivision codes for a country, sorted.
func (l *Library) Subdivisions(countryCode string) []string {
	prefix := strings.ToUpper(countryCode) + "-"
	var codes []string
	for key := range subdivisionRules {
		if strings.HasPrefix(key, prefix) {
			codes = append(codes, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(codes)
	return codes
}

// Lookup implements Provider.
func (l *Library) Lookup(year int, countryCode, subdivisionCode string) ([]Holiday, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	subdivisionCode = strings.ToUpper(strings.TrimSpace(subdivisionCode))

	if countryCode == "" {
		return nil, fmt.Errorf("country code is required")
	}

	rules, ok := countryRules[countryCode]
	if !ok {
		return nil, fmt.Errorf("no holiday rules for country %q", countryCode)
	}

	cacheKey := fmt.Sprintf("%d/%s/%s", year, countryCode, subdivisionCode)
	l.cacheMu.RLock()
	if cached, ok := l.cache[cacheKey]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	all := rules
	if subdivisionCode != "" {
		extra, ok := subdivisionRules[countryCode+"-"+subdivisionCode]
		if !ok {
			return nil, fmt.Errorf("no holiday rules for subdivision %q of %q", subdivisionCode, countryCode)
		}
		all = append(append([]*cal.Holiday{}, rules...), extra...)
	}

	resolved := make([]Holiday, 0, len(all))
	for _, rule := range all {
		actual, _ := rule.Calc(year)
		if actual.IsZero() {
			continue
		}
		resolved = append(resolved, Holiday{
			Date:     actual,
			Name:     rule.Name,
			Category: categoryOf(rule.Type),
		})
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].Date.Before(resolved[j].Date)
	})

	l.logger.Debug("Holidays resolved",
		zap.Int("year", year),
		zap.String("country", countryCode),
		zap.String("subdivision", subdivisionCode),
		zap.Int("count", len(resolved)))

	l.cacheMu.Lock()
	l.cache[cacheKey] = resolved
	l.cacheMu.Unlock()

	return resolved, nil
}

func categoryOf(t cal.ObservanceType) string {
	switch t {
	case cal.ObservanceBank:
		return CategoryBank
	case cal.ObservancePublic:
		return CategoryPublic
	case cal.ObservanceReligious:
		return CategoryReligious
	default:
		return CategoryObservance
	}
}
