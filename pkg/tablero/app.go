// Package tablero wires the task-board application together: configuration,
// store selection, the entity repository, notification sinks, and the HTTP
// server exposing the board API.
package tablero

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tablerohq/tablero/pkg/notify"
	"github.com/tablerohq/tablero/pkg/repository"
	"github.com/tablerohq/tablero/pkg/store"
	"github.com/tablerohq/tablero/pkg/store/file"
	"github.com/tablerohq/tablero/pkg/store/memory"
	"github.com/tablerohq/tablero/pkg/store/sqlite"
)

// Store kinds selectable via the -store flag.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds application configuration shared across commands.
type Config struct {
	// ServerPort is the TCP port the HTTP server listens on.
	ServerPort string

	// StoreKind selects the persistence backend: file, sqlite, or memory.
	StoreKind string

	// DataPath is the location of the backing document: a JSON file for the
	// file store, a database file for the sqlite store. Ignored by the
	// memory store.
	DataPath string

	// WebhookURL, when non-empty, receives every board event as a JSON
	// POST. Delivery is best-effort with a short timeout.
	WebhookURL string
}

// App holds the application state.
type App struct {
	config *Config
	store  store.Store
	repo   *repository.Repository
	hub    *notify.Hub
	logger zerolog.Logger
}

// New creates an application instance: it opens the configured store and
// builds the repository with the webhook and websocket sinks attached. The
// store is not initialized; run the init command (or App.Init) first, which
// Run also does on startup.
func New(config *Config, logger zerolog.Logger) (*App, error) {
	var st store.Store
	switch config.StoreKind {
	case StoreFile, "":
		st = file.New(config.DataPath)
	case StoreSQLite:
		s, err := sqlite.Open(config.DataPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		st = s
	case StoreMemory:
		st = memory.New()
	default:
		return nil, fmt.Errorf("unknown store kind %q", config.StoreKind)
	}

	hub := notify.NewHub(logger)
	sink := notify.Multi{
		notify.NewWebhook(config.WebhookURL, logger),
		hub,
	}

	return &App{
		config: config,
		store:  st,
		repo:   repository.New(st, sink),
		hub:    hub,
		logger: logger,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	a.hub.Close()
	return a.store.Close()
}

// Repository returns the underlying repository (useful for testing).
func (a *App) Repository() *repository.Repository { return a.repo }

// Store returns the underlying store (useful for testing).
func (a *App) Store() store.Store { return a.store }
