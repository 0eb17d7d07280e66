// Package personal holds the user's chosen holiday dates as a flat set of
// YYYY-MM-DD keys spanning every year the user has ever touched.
package personal

import (
	"sort"

	"github.com/username/timeoff-tracker/pkg/dateutil"
)

// Set is the personal holiday date-key set. The only mutation paths are
// Toggle and the year-granular replace/remove used by synchronization.
// Guarding against weekend/bank-holiday keys is the entry point's job, not
// the set's.
type Set struct {
	keys map[string]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// Has reports whether the date key is in the set.
func (s *Set) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Toggle adds the key if absent and removes it if present. Returns true if
// the key is in the set afterwards.
func (s *Set) Toggle(key string) bool {
	if s.Has(key) {
		delete(s.keys, key)
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the total number of keys across all years.
func (s *Set) Len() int {
	return len(s.keys)
}

// ForYear returns the keys belonging to the given year, sorted ascending.
func (s *Set) ForYear(year int) []string {
	var out []string
	for key := range s.keys {
		if dateutil.YearOfKey(key) == year {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// CountForYear returns the number of keys belonging to the given year.
func (s *Set) CountForYear(year int) int {
	count := 0
	for key := range s.keys {
		if dateutil.YearOfKey(key) == year {
			count++
		}
	}
	return count
}

// ReplaceYear removes every key belonging to the year, then adds the given
// keys. Keys for other years are untouched. This is the replace-for-year
// merge primitive used when adopting remote state.
func (s *Set) ReplaceYear(year int, keys []string) {
	s.RemoveYear(year)
	for _, key := range keys {
		if dateutil.YearOfKey(key) == year {
			s.keys[key] = struct{}{}
		}
	}
}

// RemoveYear removes every key belonging to the year.
func (s *Set) RemoveYear(year int) {
	for key := range s.keys {
		if dateutil.YearOfKey(key) == year {
			delete(s.keys, key)
		}
	}
}

// All returns every key in the set, sorted ascending.
func (s *Set) All() []string {
	out := make([]string, 0, len(s.keys))
	for key := range s.keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
