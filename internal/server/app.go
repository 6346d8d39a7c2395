// Package server wires the notekeeper backend together: storage, services,
// the JSON API with its event stream and the gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/events"
	"github.com/dmitrijs2005/notekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.API
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := events.NewHub(logger)
	us := services.NewUserService(db, m, c)
	ns := services.NewNoteService(db, m, us, hub)
	es := services.NewExportService(db, m, c)

	analyzer := ai.NewClient(ai.Config{
		APIKey:    c.OpenAIAPIKey,
		Model:     c.OpenAIModel,
		BaseURL:   c.OpenAIBaseURL,
		Timeout:   c.AITimeout,
		RateLimit: c.AIRateLimit,
		Burst:     c.AIBurst,
	}, logger, ai.WithMetrics(ai.NewMetrics(reg)))

	api := httpapi.New(httpapi.Deps{
		Users:      us,
		Notes:      ns,
		Exporter:   es,
		Analyzer:   analyzer,
		Events:     hub,
		Logger:     logger,
		Registerer: reg,
		Gatherer:   reg,
	})

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

// run starts one server and cancels the whole app when it fails.
func (app *App) run(ctx context.Context, cancel context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancel()
	}
}

// Run blocks until ctx is cancelled or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := httpapi.NewServer(app.config.HTTPAddr, app.api.Routes(), app.logger)
		app.run(ctx, cancel, "http", s.Run)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db)
			app.run(ctx, cancel, "grpc", s.Run)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
