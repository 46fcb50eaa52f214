// Package reminder собирает воркер напоминаний о приближающейся дате оплаты.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/billing-admin/internal/config"
	"github.com/magabrotheeeer/billing-admin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	reminderservice "github.com/magabrotheeeer/billing-admin/internal/services/reminder"
	"github.com/magabrotheeeer/billing-admin/internal/storage/repository"
)

const (
	rabbitRetries    = 5
	rabbitRetryDelay = 2 * time.Second
	dbReadyAttempts  = 10
	dbReadyDelay     = 3 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// App представляет приложение воркера напоминаний.
type App struct {
	reminderService *reminderservice.ReminderService
	db              *repository.Storage
	conn            *amqp.Connection
	publisher       *rabbitmq.Publisher
	metricsServer   *http.Server
	logger          *slog.Logger
}

// waitForDB ждёт, пока HTTP-сервис применит миграции.
func waitForDB(ctx context.Context, db *repository.Storage) error {
	var err error
	for range dbReadyAttempts {
		if err = repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр воркера напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, errors.New("rabbitmq url is required for the reminder worker")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, rabbitRetries, rabbitRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.BillingQueues())
	if err != nil {
		closeResources(nil, conn, nil, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange)

	db, err := repository.New(cfg.StorageConnectionString, logger)
	if err != nil {
		closeResources(publisher, conn, nil, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(publisher, conn, db, logger)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var metricsServer *http.Server
	if cfg.Reminder.MetricsAddress != "" {
		router := chi.NewRouter()
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              cfg.Reminder.MetricsAddress,
			Handler:           router,
			ReadHeaderTimeout: cfg.TimeoutHTTP,
		}
	}

	return &App{
		reminderService: reminderservice.NewReminderService(db, publisher, cfg.Reminder.Interval, m, logger),
		db:              db,
		conn:            conn,
		publisher:       publisher,
		metricsServer:   metricsServer,
		logger:          logger,
	}, nil
}

func closeResources(publisher *rabbitmq.Publisher, conn *amqp.Connection, db *repository.Storage, logger *slog.Logger) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.DB.Close(); err != nil {
			logger.Error("failed to close database", sl.Err(err))
		}
	}
}

// Run запускает воркер и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if a.metricsServer != nil {
		go func() {
			a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", sl.Err(err))
			}
		}()
	}

	a.reminderService.Run(ctx)

	a.logger.Info("shutting down reminder worker")
	if a.metricsServer != nil {
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.metricsServer.Shutdown(timeoutCtx); err != nil {
			a.logger.Error("failed to stop metrics server", sl.Err(err))
		}
	}
	closeResources(a.publisher, a.conn, a.db, a.logger)
	return nil
}
