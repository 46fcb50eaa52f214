package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

const (
	defaultListLimit = 50

	clientColumns = `id, full_name, email, phone, plan_id, payment_method_id, due_date,
		due_date_string, gross_amount, net_amount, is_active, observations, payment_history,
		next_payment_seq, visual_payment_confirmed, user_id, version, created_at, updated_at`

	// клиент активен, если флаг выставлен и с даты оплаты не прошёл льготный период
	activeCondition = `(is_active AND (due_date::timestamp AT TIME ZONE 'UTC') >= %s)`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var history []byte
	if err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.PlanID, &c.PaymentMethodID,
		&c.DueDate, &c.DueDateString, &c.GrossAmount, &c.NetAmount, &c.IsActive, &c.Observations,
		&history, &c.NextPaymentSeq, &c.VisualPaymentConfirmed, &c.UserID, &c.Version,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	decoded := DecodeHistory(history)
	if decoded.Degraded() {
		s.log.Warn("malformed payment history coerced on read",
			slog.String("client_id", c.ID),
			slog.Bool("not_array", decoded.NotArray),
			slog.Int("dropped", decoded.Dropped),
		)
	}
	c.PaymentHistory = decoded.Entries
	if c.NextPaymentSeq < decoded.NextSeq {
		c.NextPaymentSeq = decoded.NextSeq
	}
	c.DueDate = c.DueDate.UTC()
	return &c, nil
}

// GetClient возвращает клиента по ID или billing.ErrNotFound.
func (s *Storage) GetClient(ctx context.Context, id string) (*models.Client, error) {
	const op = "storage.GetClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: client %q: %w", op, id, billing.ErrNotFound)
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := s.scanClient(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: client %s: %w", op, id, billing.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListClients возвращает клиентов по фильтру с пагинацией.
func (s *Storage) ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error) {
	const op = "storage.ListClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Active != nil {
		cond := fmt.Sprintf(activeCondition, arg(filter.GraceCutoff))
		if !*filter.Active {
			cond = "NOT " + cond
		}
		conds = append(conds, cond)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf("(full_name ILIKE %s OR email ILIKE %s OR phone ILIKE %s)", p, p, p))
	}
	if filter.UserID != "" {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if filter.DueOn != nil {
		conds = append(conds, "due_date = "+arg(filter.DueOn.UTC().Format(billing.DateLayout))+"::date")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY full_name, id LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	return s.queryClients(ctx, op, query, args...)
}

// ListAllClients возвращает всех клиентов; используется при построении отчёта.
func (s *Storage) ListAllClients(ctx context.Context) ([]*models.Client, error) {
	const op = "storage.ListAllClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at, id`
	return s.queryClients(ctx, op, query)
}

func (s *Storage) queryClients(ctx context.Context, op, query string, args ...any) ([]*models.Client, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer s.closeRows(op, rows)

	result := make([]*models.Client, 0)
	for rows.Next() {
		c, err := s.scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SaveClient вставляет нового клиента (Version == 0) или обновляет существующего.
// Обновление проходит только при совпадении версии, иначе возвращается billing.ErrConflict.
// Возвращает сохранённую копию с новой версией и метками времени.
func (s *Storage) SaveClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	const op = "storage.SaveClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	history, err := EncodeHistory(c.PaymentHistory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved := *c
	saved.PaymentHistory = append([]models.PaymentEntry(nil), c.PaymentHistory...)
	dueDate := c.DueDate.UTC().Format(billing.DateLayout)

	if c.Version == 0 {
		if saved.ID == "" {
			saved.ID = uuid.NewString()
		}
		query := `INSERT INTO clients (id, full_name, email, phone, plan_id, payment_method_id, due_date,
				      due_date_string, gross_amount, net_amount, is_active, observations, payment_history,
				      next_payment_seq, visual_payment_confirmed, user_id, version)
				  VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10, $11, $12, $13::jsonb, $14, $15, $16, 1)
				  RETURNING version, created_at, updated_at`
		err = s.DB.QueryRowContext(ctx, query,
			saved.ID, c.FullName, c.Email, c.Phone, c.PlanID, c.PaymentMethodID, dueDate,
			c.DueDateString, c.GrossAmount, c.NetAmount, c.IsActive, c.Observations, string(history),
			c.NextPaymentSeq, c.VisualPaymentConfirmed, c.UserID,
		).Scan(&saved.Version, &saved.CreatedAt, &saved.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &saved, nil
	}

	query := `UPDATE clients
			  SET full_name = $2, email = $3, phone = $4, plan_id = $5, payment_method_id = $6,
			      due_date = $7::date, due_date_string = $8, gross_amount = $9, net_amount = $10,
			      is_active = $11, observations = $12, payment_history = $13::jsonb,
			      next_payment_seq = $14, visual_payment_confirmed = $15, user_id = $16,
			      version = version + 1, updated_at = NOW()
			  WHERE id = $1 AND version = $17
			  RETURNING version, created_at, updated_at`
	err = s.DB.QueryRowContext(ctx, query,
		c.ID, c.FullName, c.Email, c.Phone, c.PlanID, c.PaymentMethodID, dueDate,
		c.DueDateString, c.GrossAmount, c.NetAmount, c.IsActive, c.Observations, string(history),
		c.NextPaymentSeq, c.VisualPaymentConfirmed, c.UserID, c.Version,
	).Scan(&saved.Version, &saved.CreatedAt, &saved.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, c.ID).
			Scan(&exists); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, fmt.Errorf("%s: client %s: %w", op, c.ID, billing.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: client %s version %d: %w", op, c.ID, c.Version, billing.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &saved, nil
}

// DeleteClient удаляет клиента вместе с историей платежей.
func (s *Storage) DeleteClient(ctx context.Context, id string) error {
	const op = "storage.DeleteClient"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s: client %q: %w", op, id, billing.ErrNotFound)
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: client %s: %w", op, id, billing.ErrNotFound)
	}
	return nil
}
