// Package server wires configuration, storage, the object service and its
// gRPC and metrics endpoints into a runnable application.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fragkeeper/internal/logging"
	"github.com/dmitrijs2005/fragkeeper/internal/object"
	"github.com/dmitrijs2005/fragkeeper/internal/server/config"
	"github.com/dmitrijs2005/fragkeeper/internal/server/keys"
	"github.com/dmitrijs2005/fragkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fragkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/fragkeeper/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

var openStore = repomanager.Open

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *repomanager.Store
	objects  *services.ObjectService
	registry *prometheus.Registry
}

// NewLogger builds the JSON logger for the configured level.
func NewLogger(w io.Writer, level string) (logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewJSONLogger(w, lvl), nil
}

// NewApp validates c, opens the object store and builds the service graph.
// Call Close to release the store.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	scheme, err := cryptox.ParseScheme(c.Scheme)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	pipeline, err := object.NewPipeline(
		object.WithFragmentSize(c.FragmentSize),
		object.WithEngineOptions(cryptox.WithScheme(scheme), cryptox.WithMaxTokenAge(c.MaxTokenAge)),
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline init error: %w", err)
	}

	master := cryptox.DeriveMasterKey([]byte(c.MasterPassphrase), []byte(c.MasterSalt))
	policy, err := keys.New(c.KeyMode, master)
	master.Wipe()
	if err != nil {
		return nil, fmt.Errorf("key policy init error: %w", err)
	}

	store, err := openStore(ctx, c.StoreOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	registry := metrics.NewRegistry()
	objects := services.NewObjectService(store, pipeline, policy, metrics.NewMetrics(registry), logger, c.IOConcurrency)

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		objects:  objects,
		registry: registry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (app *App) runGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.objects, app.config.SecretKey, app.config.MaxMessageSize)
	return s.Run(ctx)
}

func (app *App) runMetricsServer(ctx context.Context) error {
	if app.config.MetricsAddr == "" {
		return nil
	}

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           metrics.Handler(app.registry),
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves gRPC and metrics until ctx is canceled, a termination signal
// arrives, or either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.runGRPCServer(ctx) })
	g.Go(func() error { return app.runMetricsServer(ctx) })

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases the object store.
func (app *App) Close() error {
	return app.store.Close()
}
