// Package services строит месячные финансовые отчёты по историям платежей клиентов.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/cache"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Repository определяет методы хранилища, которые нужны для отчёта.
type Repository interface {
	ListAllClients(ctx context.Context) ([]*models.Client, error)
	ListPaymentMethods(ctx context.Context) ([]*models.PaymentMethod, error)
}

// Cache описывает методы для кэширования отчётов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// ReportService строит отчёты и кэширует их на короткое время.
type ReportService struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	rules    billing.Rules
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewReportService создает новый экземпляр ReportService.
// При nil cache или нулевом cacheTTL отчёт всегда строится заново.
func NewReportService(repo Repository, cache Cache, cacheTTL time.Duration, m *metrics.Metrics, log *slog.Logger) *ReportService {
	return &ReportService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		rules:    billing.DefaultRules(),
		metrics:  m,
		log:      log,
	}
}

// Build возвращает отчёт за месяц. Неверный период отклоняется до чтения хранилища.
func (s *ReportService) Build(ctx context.Context, month, year int) (*models.Report, error) {
	const op = "services.ReportService.Build"

	if err := billing.ValidatePeriod(month, year); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := cache.ReportKey(year, month)
	if s.cacheEnabled() {
		var cached models.Report
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("failed to read report from cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			s.metrics.ReportBuilt(metrics.SourceCache)
			return &cached, nil
		}
	}

	clients, err := s.repo.ListAllClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	names := make(map[int]string, len(methods))
	for _, m := range methods {
		names[m.ID] = m.Name
	}

	report, err := s.rules.BuildReport(month, year, clients, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.ReportBuilt(metrics.SourceStore)
	s.log.Debug("report built",
		slog.Int("month", month), slog.Int("year", year),
		slog.Int("clients", len(clients)), slog.Int("payments", report.TotalPayments))

	if s.cacheEnabled() {
		if err := s.cache.Set(key, report, s.cacheTTL); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
		}
	}
	return report, nil
}

func (s *ReportService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
