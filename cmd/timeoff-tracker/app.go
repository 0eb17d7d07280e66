package main

import (
	"context"
	"fmt"

	"github.com/username/timeoff-tracker/internal/config"
	"github.com/username/timeoff-tracker/internal/entitlement"
	"github.com/username/timeoff-tracker/internal/gist"
	"github.com/username/timeoff-tracker/internal/holidays"
	"github.com/username/timeoff-tracker/internal/kvstore"
	"github.com/username/timeoff-tracker/internal/personal"
	"github.com/username/timeoff-tracker/internal/render"
	"github.com/username/timeoff-tracker/internal/settings"
	"github.com/username/timeoff-tracker/internal/syncer"
	"github.com/username/timeoff-tracker/internal/yearmodel"
	"go.uber.org/zap"
)

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      *config.Config
	kv       kvstore.Store
	settings *settings.Manager
	current  settings.Settings
	builder  *yearmodel.Builder
	calc     *entitlement.Calculator
	set      *personal.Set
	syncer   *syncer.Syncer
	renderer *render.Renderer

	// remote is true when a gist is configured; otherwise the local
	// key-value store holds the document.
	remote bool
}

func initializeApp(cfg *config.Config) (*app, error) {
	kv, err := kvstore.OpenSQLite(cfg.State.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	settingsManager := settings.NewManager(kv, logger)
	current := settingsManager.Load(context.Background())
	if current.Country == "" {
		current.Country = cfg.Calendar.Country
	}

	library := holidays.NewLibrary(logger)
	builder := yearmodel.NewBuilder(library, logger)
	calc := entitlement.NewCalculator(library, logger)
	set := personal.NewSet()

	store, remote, err := documentStore(cfg, settingsManager, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}

	s := syncer.New(store, set, logger)
	s.SetDebounce(cfg.Sync.GetDebounceInterval())
	s.SetPolicy(entitlement.Policy{
		WorkDaysPerYear:   cfg.Calendar.WorkDaysPerYear,
		CarryoverHolidays: cfg.Calendar.CarryoverHolidays,
	})

	a := &app{
		cfg:      cfg,
		kv:       kv,
		settings: settingsManager,
		current:  current,
		builder:  builder,
		calc:     calc,
		set:      set,
		syncer:   s,
		renderer: render.New(current.Colors),
		remote:   remote,
	}

	s.SetConfigHooks(a.applyRemoteConfig, a.exportConfig)
	return a, nil
}

// documentStore picks the gist store when credentials exist, the local store
// otherwise. Config values win over stored credentials.
func documentStore(cfg *config.Config, manager *settings.Manager, kv kvstore.Store) (syncer.Store, bool, error) {
	token, gistID, err := manager.Credentials(context.Background())
	if err != nil {
		return nil, false, fmt.Errorf("failed to read credentials: %w", err)
	}
	if cfg.Gist.Token != "" {
		token = cfg.Gist.Token
	}
	if cfg.Gist.GistID != "" {
		gistID = cfg.Gist.GistID
	}

	if token != "" && gistID != "" {
		return gist.NewClient(cfg.Gist.APIEndpoint, token, gistID, logger), true, nil
	}

	logger.Info("No gist configured, using local document store")
	return syncer.NewLocalDocumentStore(kv), false, nil
}

// applyRemoteConfig folds the remote configuration section into the local
// settings.
func (a *app) applyRemoteConfig(cfg *gist.Configuration) {
	if cfg.Country != "" {
		a.current.Country = cfg.Country
	}
	a.current.Subdivision = cfg.Subdivision
	if cfg.Language != "" {
		a.current.Language = cfg.Language
	}
	if cfg.ICalURL != "" {
		a.current.ICalURL = cfg.ICalURL
	}
	if cfg.Colors != nil {
		applyColors(&a.current.Colors, cfg.Colors)
		a.renderer = render.New(a.current.Colors)
	}

	if err := a.settings.Save(context.Background(), a.current); err != nil {
		logger.Warn("Failed to persist remote configuration", zap.Error(err))
	}
}

// exportConfig produces the configuration section written into documents
// that lack one.
func (a *app) exportConfig() *gist.Configuration {
	colors := a.current.Colors
	return &gist.Configuration{
		Country:     a.current.Country,
		Subdivision: a.current.Subdivision,
		Language:    a.current.Language,
		ICalURL:     a.current.ICalURL,
		Colors: &gist.LegendColors{
			Normal:          colors.Normal,
			Weekend:         colors.Weekend,
			Holiday:         colors.Holiday,
			HolidayWeekend:  colors.HolidayWeekend,
			PersonalHoliday: colors.PersonalHoliday,
			ICalEvents:      colors.ICalEvents,
		},
	}
}

func applyColors(dst *settings.LegendColors, src *gist.LegendColors) {
	if src.Normal != "" {
		dst.Normal = src.Normal
	}
	if src.Weekend != "" {
		dst.Weekend = src.Weekend
	}
	if src.Holiday != "" {
		dst.Holiday = src.Holiday
	}
	if src.HolidayWeekend != "" {
		dst.HolidayWeekend = src.HolidayWeekend
	}
	if src.PersonalHoliday != "" {
		dst.PersonalHoliday = src.PersonalHoliday
	}
	if src.ICalEvents != "" {
		dst.ICalEvents = src.ICalEvents
	}
}

// icalURL resolves the feed URL, config first, stored settings second.
func (a *app) icalURL() string {
	if a.cfg.ICal.URL != "" {
		return a.cfg.ICal.URL
	}
	return a.current.ICalURL
}

func (a *app) close() {
	a.syncer.Close()
	if err := a.kv.Close(); err != nil {
		logger.Warn("Failed to close state database", zap.Error(err))
	}
}
