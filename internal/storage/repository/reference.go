package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// GetPlan возвращает план по ID или billing.ErrNotFound.
func (s *Storage) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.GetPlan"

	var p models.Plan
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, is_active FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: plan %d: %w", op, id, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// GetPaymentMethod возвращает способ оплаты по ID или billing.ErrNotFound.
func (s *Storage) GetPaymentMethod(ctx context.Context, id int) (*models.PaymentMethod, error) {
	const op = "storage.GetPaymentMethod"

	var m models.PaymentMethod
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, is_active FROM payment_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: payment method %d: %w", op, id, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// GetDiscount возвращает скидку пары (план, способ оплаты) или billing.ErrNotFound.
func (s *Storage) GetDiscount(ctx context.Context, planID, paymentMethodID int) (*models.Discount, error) {
	const op = "storage.GetDiscount"

	d := models.Discount{PlanID: planID, PaymentMethodID: paymentMethodID}
	err := s.DB.QueryRowContext(ctx, `SELECT discount FROM plan_payment_method_discounts
			  WHERE plan_id = $1 AND payment_method_id = $2`, planID, paymentMethodID).
		Scan(&d.Discount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: discount %d/%d: %w", op, planID, paymentMethodID, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// ListPlans возвращает все планы.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, is_active FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer s.closeRows(op, rows)

	result := make([]*models.Plan, 0)
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPaymentMethods возвращает все способы оплаты.
func (s *Storage) ListPaymentMethods(ctx context.Context) ([]*models.PaymentMethod, error) {
	const op = "storage.ListPaymentMethods"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, is_active FROM payment_methods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer s.closeRows(op, rows)

	result := make([]*models.PaymentMethod, 0)
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListDiscounts возвращает все строки таблицы скидок.
func (s *Storage) ListDiscounts(ctx context.Context) ([]*models.Discount, error) {
	const op = "storage.ListDiscounts"

	rows, err := s.DB.QueryContext(ctx, `SELECT plan_id, payment_method_id, discount
			  FROM plan_payment_method_discounts ORDER BY plan_id, payment_method_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer s.closeRows(op, rows)

	result := make([]*models.Discount, 0)
	for rows.Next() {
		var d models.Discount
		if err := rows.Scan(&d.PlanID, &d.PaymentMethodID, &d.Discount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertDiscount создаёт или заменяет строку скидки для пары (план, способ оплаты).
func (s *Storage) UpsertDiscount(ctx context.Context, d models.Discount) error {
	const op = "storage.UpsertDiscount"

	_, err := s.DB.ExecContext(ctx, `INSERT INTO plan_payment_method_discounts (plan_id, payment_method_id, discount)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (plan_id, payment_method_id) DO UPDATE SET discount = EXCLUDED.discount`,
		d.PlanID, d.PaymentMethodID, d.Discount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) closeRows(op string, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		s.log.Warn("failed to close rows", slog.String("op", op), sl.Err(err))
	}
}
