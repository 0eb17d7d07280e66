// Package syncer keeps the in-memory personal holiday set and entitlement
// policy in step with a remote year document. Loads replace the state for one
// year at a time; saves are debounced, idempotent against the last written
// snapshot, and merge into the freshest remote copy so other years survive.
package syncer

import (
	"fmt"
	"sync"
	"time"

	"github.com/username/timeoff-tracker/internal/entitlement"
	"github.com/username/timeoff-tracker/internal/gist"
	"github.com/username/timeoff-tracker/internal/personal"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a scheduled save waits for further changes.
const DefaultDebounce = 2 * time.Second

// Store reads and writes the year document. The gist client and the local
// fallback store both satisfy it.
type Store interface {
	ReadDocument() (*gist.Document, error)
	WriteDocument(doc *gist.Document) error
}

// configurationStore is implemented by stores that keep the configuration
// section across writes. Stores that strip it (the local fallback) opt out of
// configuration healing.
type configurationStore interface {
	PersistsConfiguration() bool
}

func persistsConfiguration(store Store) bool {
	cs, ok := store.(configurationStore)
	return !ok || cs.PersistsConfiguration()
}

// LoadResult describes what a load did.
type LoadResult struct {
	Year int

	// Found reports whether the document already had a record for the year.
	Found bool

	// AdoptedFromYear is set when the year was missing and the policy
	// numbers were taken over from the most recent stored year. Zero when no
	// adoption happened.
	AdoptedFromYear int

	// ConfigApplied reports whether a remote configuration section was
	// handed to the configuration hook.
	ConfigApplied bool
}

// snapshot captures the writable state for one year. Saves compare against
// the last written snapshot and skip when nothing changed.
type snapshot struct {
	year      int
	holidays  []string
	workDays  int
	carryover int
}

func (s snapshot) equal(o snapshot) bool {
	if s.year != o.year || s.workDays != o.workDays || s.carryover != o.carryover {
		return false
	}
	if len(s.holidays) != len(o.holidays) {
		return false
	}
	for i := range s.holidays {
		if s.holidays[i] != o.holidays[i] {
			return false
		}
	}
	return true
}

// Syncer coordinates loads and saves for the personal holiday set.
type Syncer struct {
	store  Store
	set    *personal.Set
	logger *zap.Logger

	mu              sync.Mutex
	policy          entitlement.Policy
	loading         bool
	initialLoadDone bool
	lastSaved       *snapshot

	debounce time.Duration
	timer    *time.Timer

	applyConfig   func(*gist.Configuration)
	currentConfig func() *gist.Configuration
}

// New creates a syncer over the given store and holiday set.
func New(store Store, set *personal.Set, logger *zap.Logger) *Syncer {
	return &Syncer{
		store:    store,
		set:      set,
		logger:   logger,
		policy:   entitlement.DefaultPolicy(),
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the save debounce interval.
func (s *Syncer) SetDebounce(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.debounce = d
	}
}

// SetConfigHooks wires the configuration handling. apply receives the remote
// configuration section when a load finds one; current supplies the local
// configuration used to heal a document that lacks the section.
func (s *Syncer) SetConfigHooks(apply func(*gist.Configuration), current func() *gist.Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyConfig = apply
	s.currentConfig = current
}

// Policy returns the current entitlement policy.
func (s *Syncer) Policy() entitlement.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetPolicy replaces the entitlement policy. The change reaches the store on
// the next save.
func (s *Syncer) SetPolicy(p entitlement.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// Load fetches the document and replaces the in-memory state for the year.
// When the year is missing, the policy falls back to defaults; on the first
// load of a session a missing year instead adopts the policy numbers of the
// most recent stored year. Saves triggered while the load is in flight are
// skipped.
func (s *Syncer) Load(year int) (*LoadResult, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	doc, err := s.store.ReadDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to load year %d: %w", year, err)
	}

	s.mu.Lock()
	result := &LoadResult{Year: year}
	firstLoad := !s.initialLoadDone
	s.initialLoadDone = true

	record, found := doc.Years[year]
	result.Found = found
	switch {
	case found:
		s.set.ReplaceYear(year, record.Holidays)
		s.policy = policyFromRecord(record)
	case firstLoad:
		s.set.ReplaceYear(year, nil)
		if recent, ok := doc.MostRecentYear(); ok {
			s.policy = policyFromRecord(doc.Years[recent])
			result.AdoptedFromYear = recent
		} else {
			s.policy = entitlement.DefaultPolicy()
		}
	default:
		s.set.ReplaceYear(year, nil)
		s.policy = entitlement.DefaultPolicy()
	}

	snap := s.snapshotLocked(year)
	s.lastSaved = &snap

	applyConfig := s.applyConfig
	currentConfig := s.currentConfig
	s.mu.Unlock()

	if doc.Configuration != nil {
		if applyConfig != nil {
			applyConfig(doc.Configuration)
			result.ConfigApplied = true
		}
	} else if currentConfig != nil && persistsConfiguration(s.store) {
		if cfg := currentConfig(); cfg != nil {
			doc.Configuration = cfg
			if err := s.store.WriteDocument(doc); err != nil {
				s.logger.Warn("Failed to heal missing configuration section",
					zap.Int("year", year),
					zap.Error(err))
			} else {
				s.logger.Info("Added configuration section to stored document")
			}
		}
	}

	if result.AdoptedFromYear != 0 {
		s.logger.Info("Adopted policy from most recent stored year",
			zap.Int("year", year),
			zap.Int("from", result.AdoptedFromYear))
	}

	return result, nil
}

// Save writes the state for the year. It merges into a fresh read of the
// document, skips when a load is in flight, and skips when nothing changed
// since the last successful write.
func (s *Syncer) Save(year int) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.logger.Debug("Save skipped, load in progress", zap.Int("year", year))
		return nil
	}
	snap := s.snapshotLocked(year)
	if s.lastSaved != nil && snap.equal(*s.lastSaved) {
		s.mu.Unlock()
		s.logger.Debug("Save skipped, nothing changed", zap.Int("year", year))
		return nil
	}
	s.mu.Unlock()

	doc, err := s.store.ReadDocument()
	if err != nil {
		return fmt.Errorf("failed to read before save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A load may have started while the read above was in flight. Its replace
	// wins; writing now would race the merge.
	if s.loading {
		s.logger.Debug("Save skipped, load in progress", zap.Int("year", year))
		return nil
	}

	snap = s.snapshotLocked(year)
	doc.Years[year] = gist.YearRecord{
		Holidays:          snap.holidays,
		WorkDaysPerYear:   snap.workDays,
		CarryoverHolidays: snap.carryover,
	}
	if doc.Configuration == nil && s.currentConfig != nil && persistsConfiguration(s.store) {
		doc.Configuration = s.currentConfig()
	}

	if err := s.store.WriteDocument(doc); err != nil {
		return fmt.Errorf("failed to save year %d: %w", year, err)
	}

	s.lastSaved = &snap
	s.logger.Info("Year saved",
		zap.Int("year", year),
		zap.Int("holidays", len(snap.holidays)))
	return nil
}

// ScheduleSave queues a debounced save for the year. Rapid successive calls
// collapse into a single write.
func (s *Syncer) ScheduleSave(year int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Save(year); err != nil {
			s.logger.Error("Scheduled save failed",
				zap.Int("year", year),
				zap.Error(err))
		}
	})
}

// Flush cancels any pending scheduled save and writes immediately.
func (s *Syncer) Flush(year int) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Save(year)
}

// ResetSession clears the session state. The next load of a missing year may
// adopt policy numbers again, and the next save writes unconditionally.
func (s *Syncer) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialLoadDone = false
	s.lastSaved = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Close cancels any pending scheduled save.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Syncer) snapshotLocked(year int) snapshot {
	return snapshot{
		year:      year,
		holidays:  s.set.ForYear(year),
		workDays:  s.policy.WorkDaysPerYear,
		carryover: s.policy.CarryoverHolidays,
	}
}

func policyFromRecord(record gist.YearRecord) entitlement.Policy {
	p := entitlement.Policy{
		WorkDaysPerYear:   record.WorkDaysPerYear,
		CarryoverHolidays: record.CarryoverHolidays,
	}
	if p.WorkDaysPerYear <= 0 {
		p.WorkDaysPerYear = entitlement.DefaultWorkDaysPerYear
	}
	return p
}
