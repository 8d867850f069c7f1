package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/backend"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/agentops-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/services"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// app owns the long-lived adapters behind the CLI services and rebuilds
// them when the configuration changes.
type app struct {
	store    *file.ConfigStore
	settings *services.SettingsService
	backend  *backend.Reloadable
	contexts *services.ContextService
	history  *services.HistoryService

	baseURL   string
	dataDir   string
	noHistory bool

	mu  sync.Mutex
	db  *sqlite.Store
	mem *memory.HistoryStore
}

// bootstrap wires config, backend, history and core services.
// A missing or invalid backend configuration is not fatal: fetches fail
// with domain.ErrBackendNotConfigured until settings are fixed.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	a, svc, err := newApp(opts)
	if err != nil {
		return nil, nil, err
	}
	return svc, a.close, nil
}

func newApp(opts cli.Options) (*app, *cli.Services, error) {
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}

	a := &app{
		store:     store,
		settings:  services.NewSettingsService(store),
		backend:   backend.NewReloadable(nil),
		history:   services.NewHistoryService(nil),
		baseURL:   strings.TrimSpace(opts.BaseURL),
		dataDir:   filepath.Join(filepath.Dir(store.Path()), "data"),
		noHistory: opts.NoHistory,
	}

	settings, err := a.settings.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("read settings: %w", err)
	}

	a.contexts = services.NewContextService(a.backend, services.ComparatorFor(settings.Contexts.VersionOrder))
	if err := a.apply(settings); err != nil {
		logger.Warn("Backend not ready: %v", err)
	}

	logs := services.NewLogService(a.backend)
	logs.SetHistory(a.history)
	inference := services.NewInferenceService(a.backend)
	inference.SetHistory(a.history)
	a.contexts.SetHistory(a.history)
	audit := services.NewAuditService(a.backend)
	audit.SetHistory(a.history)
	costs := services.NewCostService(a.backend)
	costs.SetHistory(a.history)

	return a, &cli.Services{
		Logs:        logs,
		Inference:   inference,
		Contexts:    a.contexts,
		Audit:       audit,
		Costs:       costs,
		History:     a.history,
		Settings:    a.settings,
		WatchConfig: a.watch,
	}, nil
}

// apply rebuilds the backend client, version ordering and history store
// from settings. The history and ordering changes apply even when the
// client cannot be built.
func (a *app) apply(settings *domain.AppSettings) error {
	a.contexts.SetComparator(services.ComparatorFor(settings.Contexts.VersionOrder))

	if err := a.applyHistory(settings.History.Enabled); err != nil {
		logger.Warn("History unavailable: %v", err)
	}

	client, err := a.newClient(settings)
	if err != nil {
		a.backend.Swap(nil)
		return err
	}
	a.backend.Swap(client)
	logger.Debug("Backend client targets %s", client.BaseURL())
	return nil
}

func (a *app) newClient(settings *domain.AppSettings) (*backend.Client, error) {
	baseURL := settings.Backend.BaseURL
	if a.baseURL != "" {
		baseURL = a.baseURL
	}

	provider, err := auth.NewTokenProvider(settings.Auth, settings.Backend.Timeout)
	if err != nil {
		return nil, err
	}

	return backend.New(backend.Options{
		BaseURL:       baseURL,
		Timeout:       settings.Backend.Timeout,
		RateLimit:     settings.Backend.RateLimit,
		TokenProvider: provider,
	})
}

// applyHistory opens the SQLite history database on first enable and
// detaches it when history is turned off. With --no-history entries are
// kept in memory instead.
func (a *app) applyHistory(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !enabled {
		a.history.SetStore(nil)
		return nil
	}
	if a.noHistory {
		if a.mem == nil {
			a.mem = memory.NewHistoryStore()
		}
		a.history.SetStore(a.mem)
		return nil
	}
	if a.db == nil {
		db, err := sqlite.NewStore(a.dataDir)
		if err != nil {
			a.history.SetStore(nil)
			return err
		}
		a.db = db
	}
	a.history.SetStore(a.db.HistoryStore())
	return nil
}

// watch reloads settings whenever the config file changes, until ctx is done.
func (a *app) watch(ctx context.Context, onReload func(error)) error {
	w := file.NewWatcher(a.store)
	reloads, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for r := range reloads {
		err := r.Err
		if err == nil {
			err = a.reload()
		}
		if onReload != nil {
			onReload(err)
		}
	}
	return nil
}

func (a *app) reload() error {
	settings, err := a.settings.Get()
	if err != nil {
		return err
	}
	return a.apply(settings)
}

func (a *app) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		logger.Warn("Failed to close history database: %v", err)
	}
	a.db = nil
}
