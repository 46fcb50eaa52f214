// Package services отдаёт справочные данные и управляет таблицей скидок.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/cache"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Repository определяет методы хранилища справочных данных.
type Repository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	ListPaymentMethods(ctx context.Context) ([]*models.PaymentMethod, error)
	ListDiscounts(ctx context.Context) ([]*models.Discount, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	GetPaymentMethod(ctx context.Context, id int) (*models.PaymentMethod, error)
	UpsertDiscount(ctx context.Context, d models.Discount) error
}

// Cache сбрасывает кэшированные отчёты. Может быть nil.
type Cache interface {
	InvalidatePrefix(prefix string) error
}

// ReferenceService реализует операции над планами, способами оплаты и скидками.
type ReferenceService struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewReferenceService создает новый экземпляр ReferenceService.
func NewReferenceService(repo Repository, cache Cache, log *slog.Logger) *ReferenceService {
	return &ReferenceService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает планы, способы оплаты и строки скидок.
func (s *ReferenceService) List(ctx context.Context) (*models.Reference, error) {
	const op = "services.ReferenceService.List"

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	discounts, err := s.repo.ListDiscounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Reference{
		Plans:          plans,
		PaymentMethods: methods,
		Discounts:      discounts,
	}, nil
}

// SetDiscount создаёт или заменяет скидку пары (план, способ оплаты).
// Доля должна лежать в [0, 1]; план и способ оплаты должны существовать.
// Сохранённые netAmount клиентов не пересчитываются до их следующего изменения.
func (s *ReferenceService) SetDiscount(ctx context.Context, req models.DummyDiscount) (*models.Discount, error) {
	const op = "services.ReferenceService.SetDiscount"

	if req.Discount.IsNegative() || req.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%s: discount %s outside [0, 1]: %w", op, req.Discount, billing.ErrInvalidArgument)
	}
	if _, err := s.repo.GetPlan(ctx, req.PlanID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.GetPaymentMethod(ctx, req.PaymentMethodID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := models.Discount{
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		Discount:        req.Discount,
	}
	if err := s.repo.UpsertDiscount(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("discount updated",
		slog.Int("plan_id", d.PlanID),
		slog.Int("payment_method_id", d.PaymentMethodID),
		slog.String("discount", d.Discount.String()))

	if s.cache != nil {
		if err := s.cache.InvalidatePrefix(cache.ReportPrefix); err != nil {
			s.log.Warn("failed to invalidate reports", sl.Err(err))
		}
	}
	return &d, nil
}
