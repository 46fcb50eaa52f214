// Package billing собирает HTTP-приложение администрирования клиентов:
// хранилище, миграции, кэш, публикацию событий, метрики и маршруты.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/billing-admin/internal/cache"
	"github.com/magabrotheeeer/billing-admin/internal/config"
	"github.com/magabrotheeeer/billing-admin/internal/lib/jwt"
	"github.com/magabrotheeeer/billing-admin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	"github.com/magabrotheeeer/billing-admin/internal/migrations"
	clientservice "github.com/magabrotheeeer/billing-admin/internal/services/client"
	referenceservice "github.com/magabrotheeeer/billing-admin/internal/services/reference"
	reportservice "github.com/magabrotheeeer/billing-admin/internal/services/report"
	"github.com/magabrotheeeer/billing-admin/internal/storage/repository"
)

const (
	rabbitRetries    = 5
	rabbitRetryDelay = 2 * time.Second
	shutdownTimeout  = 15 * time.Second
)

// App: HTTP-сервис биллинга.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	conn      *amqp.Connection
	publisher *rabbitmq.Publisher
}

// New поднимает все зависимости сервиса. Пустой rabbitmq.url отключает публикацию событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.billing.New"

	db, err := repository.New(cfg.StorageConnectionString, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.DB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.DB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.DB.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	var publisher clientservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, rabbitRetries, rabbitRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.BillingQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.publisher = rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange)
		publisher = app.publisher
	} else {
		logger.Warn("rabbitmq url is empty, events are not published")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	services := Services{
		Clients: clientservice.NewClientService(db, cacheRedis, publisher, logger,
			clientservice.WithMetrics(m)),
		Reports:   reportservice.NewReportService(db, cacheRedis, cfg.Reports.CacheTTL, m, logger),
		Reference: referenceservice.NewReferenceService(db, cacheRedis, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, services,
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), m, reg)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
