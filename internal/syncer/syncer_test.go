package syncer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/timeoff-tracker/internal/entitlement"
	"github.com/username/timeoff-tracker/internal/gist"
	"github.com/username/timeoff-tracker/internal/personal"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	doc      *gist.Document
	readErr  error
	writeErr error
	reads    int
	writes   int
	onRead   func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{doc: gist.NewDocument()}
}

func (f *fakeStore) ReadDocument() (*gist.Document, error) {
	f.mu.Lock()
	f.reads++
	hook := f.onRead
	err := f.readErr
	var copied *gist.Document
	if err == nil {
		raw, encErr := f.doc.Encode()
		f.mu.Unlock()
		if encErr != nil {
			return nil, encErr
		}
		copied, encErr = gist.ParseDocument(raw)
		if encErr != nil {
			return nil, encErr
		}
	} else {
		f.mu.Unlock()
	}
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return copied, nil
}

func (f *fakeStore) WriteDocument(doc *gist.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	raw, err := doc.Encode()
	if err != nil {
		return err
	}
	f.doc, err = gist.ParseDocument(raw)
	return err
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func newSyncer(store Store) (*Syncer, *personal.Set) {
	set := personal.NewSet()
	return New(store, set, zap.NewNop()), set
}

func TestLoad_ReplacesOnlyRequestedYear(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2025] = gist.YearRecord{
		Holidays:          []string{"2025-06-02", "2025-03-10"},
		WorkDaysPerYear:   210,
		CarryoverHolidays: 3,
	}
	s, set := newSyncer(store)
	set.Toggle("2023-08-14")
	set.Toggle("2025-12-31")

	result, err := s.Load(2025)
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, []string{"2025-03-10", "2025-06-02"}, set.ForYear(2025))
	assert.True(t, set.Has("2023-08-14"), "other years must survive a load")
	assert.Equal(t, entitlement.Policy{WorkDaysPerYear: 210, CarryoverHolidays: 3}, s.Policy())
}

func TestLoad_MissingYearFirstLoadAdoptsPolicy(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2023] = gist.YearRecord{WorkDaysPerYear: 200, CarryoverHolidays: 1}
	store.doc.Years[2024] = gist.YearRecord{WorkDaysPerYear: 205, CarryoverHolidays: 4}
	s, set := newSyncer(store)

	result, err := s.Load(2025)
	require.NoError(t, err)

	assert.False(t, result.Found)
	assert.Equal(t, 2024, result.AdoptedFromYear)
	assert.Empty(t, set.ForYear(2025))
	assert.Equal(t, entitlement.Policy{WorkDaysPerYear: 205, CarryoverHolidays: 4}, s.Policy())
}

func TestLoad_MissingYearLaterLoadsUseDefaults(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2024] = gist.YearRecord{WorkDaysPerYear: 205, CarryoverHolidays: 4}
	s, _ := newSyncer(store)

	_, err := s.Load(2024)
	require.NoError(t, err)

	result, err := s.Load(2026)
	require.NoError(t, err)

	assert.Zero(t, result.AdoptedFromYear)
	assert.Equal(t, entitlement.DefaultPolicy(), s.Policy())
}

func TestLoad_BackfillAgainAfterReset(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2024] = gist.YearRecord{WorkDaysPerYear: 205, CarryoverHolidays: 4}
	s, _ := newSyncer(store)

	_, err := s.Load(2024)
	require.NoError(t, err)

	result, err := s.Load(2026)
	require.NoError(t, err)
	assert.Zero(t, result.AdoptedFromYear)

	s.ResetSession()

	result, err = s.Load(2026)
	require.NoError(t, err)
	assert.Equal(t, 2024, result.AdoptedFromYear)
}

func TestLoad_AppliesRemoteConfiguration(t *testing.T) {
	store := newFakeStore()
	store.doc.Configuration = &gist.Configuration{Country: "FR", Language: "fr"}
	s, _ := newSyncer(store)

	var applied *gist.Configuration
	s.SetConfigHooks(func(cfg *gist.Configuration) { applied = cfg }, nil)

	result, err := s.Load(2025)
	require.NoError(t, err)

	assert.True(t, result.ConfigApplied)
	require.NotNil(t, applied)
	assert.Equal(t, "FR", applied.Country)
}

func TestLoad_HealsMissingConfiguration(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2025] = gist.YearRecord{Holidays: []string{"2025-06-02"}}
	s, _ := newSyncer(store)
	s.SetConfigHooks(nil, func() *gist.Configuration {
		return &gist.Configuration{Country: "DE", Language: "de"}
	})

	_, err := s.Load(2025)
	require.NoError(t, err)

	require.NotNil(t, store.doc.Configuration)
	assert.Equal(t, "DE", store.doc.Configuration.Country)
	record := store.doc.Years[2025]
	assert.Equal(t, []string{"2025-06-02"}, record.Holidays, "healing must not disturb year records")
}

func TestSave_MergesIntoFreshRead(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2024] = gist.YearRecord{Holidays: []string{"2024-05-06"}, WorkDaysPerYear: 216}
	s, set := newSyncer(store)

	set.Toggle("2025-06-02")
	require.NoError(t, s.Save(2025))

	assert.Equal(t, []string{"2024-05-06"}, store.doc.Years[2024].Holidays)
	assert.Equal(t, []string{"2025-06-02"}, store.doc.Years[2025].Holidays)
}

func TestSave_SkipsWhenNothingChanged(t *testing.T) {
	store := newFakeStore()
	store.doc.Years[2025] = gist.YearRecord{Holidays: []string{"2025-06-02"}, WorkDaysPerYear: 216}
	s, set := newSyncer(store)

	_, err := s.Load(2025)
	require.NoError(t, err)
	require.NoError(t, s.Save(2025))
	assert.Equal(t, 0, store.writeCount(), "save right after load must be a no-op")

	set.Toggle("2025-07-01")
	require.NoError(t, s.Save(2025))
	assert.Equal(t, 1, store.writeCount())

	require.NoError(t, s.Save(2025))
	assert.Equal(t, 1, store.writeCount(), "repeat save of the same state must be skipped")
}

func TestSave_SkippedWhileLoadInFlight(t *testing.T) {
	store := newFakeStore()
	s, set := newSyncer(store)
	set.Toggle("2025-06-02")

	var saveErr error
	store.onRead = func() {
		// Runs inside Load's document fetch.
		store.onRead = nil
		saveErr = s.Save(2025)
	}

	_, err := s.Load(2025)
	require.NoError(t, err)
	require.NoError(t, saveErr)
	assert.Equal(t, 0, store.writeCount())
}

func TestSave_AbortsWhenLoadStartsMidSave(t *testing.T) {
	store := newFakeStore()
	s, set := newSyncer(store)
	set.Toggle("2025-06-02")

	store.onRead = func() {
		// A load begins while the save is still reading the document.
		store.onRead = nil
		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()
	}

	require.NoError(t, s.Save(2025))
	assert.Equal(t, 0, store.writeCount(), "save must yield to the load that overtook it")
}

func TestSave_PropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.writeErr = gist.ErrRateLimited
	s, set := newSyncer(store)
	set.Toggle("2025-06-02")

	err := s.Save(2025)
	assert.ErrorIs(t, err, gist.ErrRateLimited)

	store.writeErr = nil
	store.readErr = gist.ErrUnauthorized
	err = s.Save(2025)
	assert.ErrorIs(t, err, gist.ErrUnauthorized)
}

func TestScheduleSave_Debounces(t *testing.T) {
	store := newFakeStore()
	s, set := newSyncer(store)
	s.SetDebounce(20 * time.Millisecond)

	set.Toggle("2025-06-02")
	s.ScheduleSave(2025)
	s.ScheduleSave(2025)
	s.ScheduleSave(2025)

	assert.Equal(t, 0, store.writeCount())

	require.Eventually(t, func() bool { return store.writeCount() == 1 },
		time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.writeCount(), "collapsed schedules must save once")
}

func TestFlush_SavesImmediately(t *testing.T) {
	store := newFakeStore()
	s, set := newSyncer(store)
	s.SetDebounce(time.Hour)

	set.Toggle("2025-06-02")
	s.ScheduleSave(2025)
	require.NoError(t, s.Flush(2025))

	assert.Equal(t, 1, store.writeCount())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, store.writeCount(), "pending timer must be cancelled by flush")
}

func TestLoad_ErrorLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	store.readErr = errors.New("network down")
	s, set := newSyncer(store)
	set.Toggle("2025-06-02")

	_, err := s.Load(2025)
	require.Error(t, err)
	assert.True(t, set.Has("2025-06-02"))
}
