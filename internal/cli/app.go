// Package cli implements ledgerctl, a local single-user host over the ledger.
// The persisted current-user slot acts as the session between invocations.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"ledger_system/internal/auth"
	"ledger_system/internal/config"
	"ledger_system/internal/ledger"
	"ledger_system/internal/store"
)

// App is what every command works against
type App struct {
	Users  *auth.Service
	Ledger *ledger.Ledger
	Close  func() error
}

// Options are the persistent flags that select the store
type Options struct {
	Backend  string // Overrides STORE_BACKEND when set
	DataFile string // Overrides STORE_FILE and implies the file backend
}

// Opener builds an App for one invocation
type Opener func(ctx context.Context, opts Options) (*App, error)

// NewApp wires the services over an opened store
func NewApp(s store.Store, log logrus.FieldLogger, closeFn func() error) *App {
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return &App{
		Users:  auth.NewService(s, log),
		Ledger: ledger.New(s, log, nil),
		Close:  closeFn,
	}
}

// DefaultOpener reads the environment like the server does, except that the
// file backend is the default when STORE_BACKEND is unset.
func DefaultOpener(ctx context.Context, opts Options) (*App, error) {
	cfg := config.LoadConfig()
	if os.Getenv("STORE_BACKEND") == "" {
		cfg.StoreBackend = config.BackendFile
	}
	if opts.Backend != "" {
		cfg.StoreBackend = opts.Backend
	}
	if opts.DataFile != "" {
		cfg.StoreBackend = config.BackendFile
		cfg.StoreFile = opts.DataFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := store.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	return NewApp(backend.Store, logrus.StandardLogger(), backend.Close), nil
}
