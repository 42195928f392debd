package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ecobot/internal/config"
	"ecobot/internal/handler"
	"ecobot/internal/logger"
	"ecobot/internal/metrics"
	"ecobot/internal/repository"
	"ecobot/internal/route"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  *logger.Logger
	store   repository.KeyValueStore
	manager *service.Manager
	server  *http.Server
}

func NewApp(ctx context.Context) (*App, error) {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	records := repository.NewRecordStore(store, log)
	mng := service.NewManager(records, service.NewDetector(cfg), service.NewCoordinateSource(), metrics.New(), cfg, log)

	pages, err := handler.NewPages()
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	return &App{
		config:  cfg,
		logger:  log,
		store:   store,
		manager: mng,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           route.SetupRoutes(mng, pages, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	bg, stop := context.WithCancel(ctx)
	defer stop()

	// Start background services
	done := make(chan struct{})
	go func() {
		a.manager.Run(bg)
		close(done)
	}()

	a.logger.Info("EcoBot server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Detector: %s (%s)", a.manager.GetDetector().Mode(), a.config.APIURL)
	a.logger.Info("Store: %s, map provider: %s", a.config.StoreDriver, mapview.DefaultProvider())

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = a.server.Shutdown(shutdownCtx)
	}

	stop()
	<-done

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Error closing store: %v", err)
	}
	a.logger.Close()
}
