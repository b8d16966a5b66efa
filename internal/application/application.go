package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/packing-tracker/internal/api"
	"github.com/eugenenazirov/packing-tracker/internal/config"
	"github.com/eugenenazirov/packing-tracker/internal/record"
	"github.com/eugenenazirov/packing-tracker/internal/sheet"
	"github.com/eugenenazirov/packing-tracker/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	store   storage.Store
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided
// configuration. With a remote store URL the sheet endpoint is the source of
// truth; without one the service runs on an in-memory store seeded with
// generated sample data.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	var store storage.Store
	if cfg.RemoteStoreURL != "" {
		store = sheet.NewClient(cfg.RemoteStoreURL, logger)
		logger.Info("using remote sheet store", zap.String("endpoint", cfg.RemoteStoreURL))
	} else {
		store = storage.NewMemoryStore(record.Sample(cfg.SampleSize))
		logger.Info("using in-memory store with sample data", zap.Int("sample_size", cfg.SampleSize))
	}

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, router)

	return &App{
		store:   store,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  server,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
