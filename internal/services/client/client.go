// Package services содержит бизнес-логику клиентов: жизненный цикл подписки,
// историю платежей, кэширование и публикацию событий.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/cache"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

const (
	maxSaveAttempts = 3
	clientCacheTTL  = 10 * time.Minute
)

// Repository определяет методы хранилища, которые нужны сервису клиентов.
type Repository interface {
	GetClient(ctx context.Context, id string) (*models.Client, error)
	ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error)
	// SaveClient вставляет клиента при Version == 0, иначе обновляет с проверкой версии.
	SaveClient(ctx context.Context, c *models.Client) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	GetPaymentMethod(ctx context.Context, id int) (*models.PaymentMethod, error)
	GetDiscount(ctx context.Context, planID, paymentMethodID int) (*models.Discount, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
	InvalidatePrefix(prefix string) error
}

// Publisher отправляет события об изменениях в брокер сообщений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// ClientService реализует операции над клиентами и их историей платежей.
type ClientService struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	metrics   *metrics.Metrics
	rules     billing.Rules
	now       func() time.Time
	log       *slog.Logger

	// invalidations растёт при каждом сбросе кэша; load не кэширует чтение,
	// во время которого произошёл сброс.
	invalidations atomic.Uint64
}

// Option настраивает ClientService.
type Option func(*ClientService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *ClientService) { s.now = now }
}

// WithRules подменяет бизнес-правила.
func WithRules(rules billing.Rules) Option {
	return func(s *ClientService) { s.rules = rules }
}

// WithMetrics включает учёт операций в Prometheus.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ClientService) { s.metrics = m }
}

// NewClientService создает новый экземпляр ClientService.
// cache и publisher могут быть nil: тогда кэширование и события отключены.
func NewClientService(repo Repository, cache Cache, publisher Publisher, log *slog.Logger, opts ...Option) *ClientService {
	s := &ClientService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		rules:     billing.DefaultRules(),
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create проверяет справочные данные, вычисляет чистую сумму и сохраняет нового активного клиента.
func (s *ClientService) Create(ctx context.Context, actor models.Actor, req models.DummyClient) (*models.Client, error) {
	const op = "services.ClientService.Create"

	c := &models.Client{
		IsActive:       true,
		PaymentHistory: []models.PaymentEntry{},
		NextPaymentSeq: 1,
		UserID:         actor.UserID,
	}
	err := s.applyFields(ctx, c, req)
	if err == nil {
		c, err = s.repo.SaveClient(ctx, c)
	}
	s.metrics.Mutation(models.EventClientCreated, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("client created", slog.String("id", c.ID), slog.String("user_id", actor.UserID))
	s.invalidate(c.ID)
	s.rules.Refresh(c, s.now())
	s.publish(ctx, models.EventClientCreated, c.ID, c)
	return c, nil
}

// Get возвращает клиента с вычисленным на текущий момент состоянием.
func (s *ClientService) Get(ctx context.Context, actor models.Actor, id string) (*models.Client, error) {
	const op = "services.ClientService.Get"

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.CanAccess(c) {
		return nil, fmt.Errorf("%s: client %s: %w", op, id, billing.ErrNotFound)
	}
	s.rules.Refresh(c, s.now())
	return c, nil
}

// List возвращает клиентов по запросу. Не администратор видит только своих клиентов.
func (s *ClientService) List(ctx context.Context, actor models.Actor, q models.ClientQuery) ([]*models.Client, error) {
	const op = "services.ClientService.List"

	now := s.now()
	filter := models.ClientFilter{
		Active:      q.Active,
		GraceCutoff: now.Add(-s.rules.GracePeriod),
		Search:      q.Search,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}

	clients, err := s.repo.ListClients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, c := range clients {
		s.rules.Refresh(c, now)
	}
	return clients, nil
}

// Update заменяет редактируемые поля клиента и пересчитывает чистую сумму.
// История платежей и состояние не меняются.
func (s *ClientService) Update(ctx context.Context, actor models.Actor, id string, req models.DummyClient) (*models.Client, error) {
	const op = "services.ClientService.Update"

	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		return s.applyFields(ctx, c, req)
	})
	s.metrics.Mutation(models.EventClientUpdated, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventClientUpdated, c.ID, c)
	return c, nil
}

// Delete удаляет клиента без каких-либо условий на состояние.
func (s *ClientService) Delete(ctx context.Context, actor models.Actor, id string) error {
	const op = "services.ClientService.Delete"

	err := s.remove(ctx, actor, id)
	s.metrics.Mutation(models.EventClientDeleted, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("client deleted", slog.String("id", id))
	s.publish(ctx, models.EventClientDeleted, id, nil)
	return nil
}

func (s *ClientService) remove(ctx context.Context, actor models.Actor, id string) error {
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(c) {
		return fmt.Errorf("client %s: %w", id, billing.ErrNotFound)
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// Renew меняет дату оплаты. Состояние клиента не форсируется, история не меняется.
func (s *ClientService) Renew(ctx context.Context, actor models.Actor, id string, req models.DummyDueDate) (*models.Client, error) {
	const op = "services.ClientService.Renew"

	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		return billing.Renew(c, req.DueDate)
	})
	s.metrics.Mutation(models.EventClientRenewed, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.Transition(metrics.TransitionRenewed)
	s.publish(ctx, models.EventClientRenewed, c.ID, c)
	return c, nil
}

// Reactivate возвращает просроченного клиента в активное состояние с новой датой оплаты.
func (s *ClientService) Reactivate(ctx context.Context, actor models.Actor, id string, req models.DummyDueDate) (*models.Client, error) {
	const op = "services.ClientService.Reactivate"

	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		return s.rules.Reactivate(c, req.DueDate, s.now())
	})
	s.metrics.Mutation(models.EventClientReactivated, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.Transition(metrics.TransitionReactivated)
	s.log.Info("client reactivated", slog.String("id", c.ID), slog.String("due_date", c.DueDateString))
	s.publish(ctx, models.EventClientReactivated, c.ID, c)
	return c, nil
}

// AppendPayment добавляет запись в конец истории платежей.
func (s *ClientService) AppendPayment(ctx context.Context, actor models.Actor, id string, req models.DummyPayment) (*models.Client, error) {
	const op = "services.ClientService.AppendPayment"

	var change models.PaymentChange
	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		in, err := s.paymentInput(ctx, req)
		if err != nil {
			return err
		}
		entry, err := billing.AppendPayment(c, in)
		if err != nil {
			return err
		}
		change = models.PaymentChange{Index: len(c.PaymentHistory) - 1, Entry: entry}
		return nil
	})
	s.metrics.Mutation(models.EventPaymentAppended, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventPaymentAppended, c.ID, change)
	return c, nil
}

// EditPayment заменяет запись на позиции index.
// Если в запросе задан expected_seq, он должен совпасть с seq записи.
func (s *ClientService) EditPayment(ctx context.Context, actor models.Actor, id string, index int, req models.DummyPayment) (*models.Client, error) {
	const op = "services.ClientService.EditPayment"

	var change models.PaymentChange
	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		in, err := s.paymentInput(ctx, req)
		if err != nil {
			return err
		}
		entry, err := billing.EditPaymentAt(c, index, req.ExpectedSeq, in)
		if err != nil {
			return err
		}
		change = models.PaymentChange{Index: index, Entry: entry}
		return nil
	})
	s.metrics.Mutation(models.EventPaymentEdited, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventPaymentEdited, c.ID, change)
	return c, nil
}

// DeletePayment удаляет запись на позиции index, последующие записи сдвигаются.
func (s *ClientService) DeletePayment(ctx context.Context, actor models.Actor, id string, index int, expectedSeq *int64) (*models.Client, error) {
	const op = "services.ClientService.DeletePayment"

	var change models.PaymentChange
	c, err := s.mutate(ctx, actor, id, func(c *models.Client) error {
		entry, err := billing.DeletePaymentAt(c, index, expectedSeq)
		if err != nil {
			return err
		}
		change = models.PaymentChange{Index: index, Entry: entry}
		return nil
	})
	s.metrics.Mutation(models.EventPaymentDeleted, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventPaymentDeleted, c.ID, change)
	return c, nil
}

// mutate читает клиента, применяет apply и сохраняет результат с проверкой версии.
// При конфликте версий цикл повторяется со свежей копией.
// Ошибки apply не повторяются: проверка выполняется до любой записи.
func (s *ClientService) mutate(ctx context.Context, actor models.Actor, id string, apply func(c *models.Client) error) (*models.Client, error) {
	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		var c *models.Client
		c, err = s.repo.GetClient(ctx, id)
		if err != nil {
			return nil, err
		}
		if !actor.CanAccess(c) {
			return nil, fmt.Errorf("client %s: %w", id, billing.ErrNotFound)
		}

		now := s.now()
		if s.rules.Refresh(c, now) {
			s.metrics.Transition(metrics.TransitionExpired)
			s.log.Debug("client expired on write", slog.String("id", id))
		}
		if err = apply(c); err != nil {
			return nil, err
		}

		var saved *models.Client
		saved, err = s.repo.SaveClient(ctx, c)
		if errors.Is(err, billing.ErrConflict) {
			s.log.Debug("version conflict, retrying",
				slog.String("id", id), slog.Int("attempt", attempt), sl.Err(err))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidate(saved.ID)
		s.rules.Refresh(saved, now)
		return saved, nil
	}
	return nil, err
}

// applyFields переносит поля запроса в клиента и пересчитывает чистую сумму.
func (s *ClientService) applyFields(ctx context.Context, c *models.Client, req models.DummyClient) error {
	const op = "services.ClientService.applyFields"

	if req.FullName == "" {
		return fmt.Errorf("%s: full_name is required: %w", op, billing.ErrMissingRequiredField)
	}
	if req.GrossAmount.IsNegative() {
		return fmt.Errorf("%s: gross_amount must not be negative: %w", op, billing.ErrInvalidArgument)
	}
	dueDate, err := billing.ParseDueDate(req.DueDate)
	if err != nil {
		return err
	}
	if err := s.checkPlan(ctx, req.PlanID); err != nil {
		return err
	}
	if err := s.checkPaymentMethod(ctx, req.PaymentMethodID); err != nil {
		return err
	}
	net, err := s.netAmount(ctx, req.GrossAmount, req.PlanID, req.PaymentMethodID)
	if err != nil {
		return err
	}

	c.FullName = req.FullName
	c.Email = req.Email
	c.Phone = req.Phone
	c.PlanID = req.PlanID
	c.PaymentMethodID = req.PaymentMethodID
	c.GrossAmount = req.GrossAmount
	c.NetAmount = net
	c.Observations = req.Observations
	c.VisualPaymentConfirmed = req.VisualPaymentConfirmed
	billing.SetDueDate(c, dueDate)
	return nil
}

func (s *ClientService) netAmount(ctx context.Context, gross decimal.Decimal, planID, paymentMethodID int) (decimal.Decimal, error) {
	factor, err := billing.ResolveDiscount(ctx, s.repo, planID, paymentMethodID)
	if err != nil {
		return decimal.Zero, err
	}
	return billing.ComputeNet(gross, factor)
}

func (s *ClientService) checkPlan(ctx context.Context, id int) error {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if !plan.IsActive {
		return fmt.Errorf("plan %d is inactive: %w", id, billing.ErrInvalidReference)
	}
	return nil
}

func (s *ClientService) checkPaymentMethod(ctx context.Context, id int) error {
	method, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return err
	}
	if !method.IsActive {
		return fmt.Errorf("payment method %d is inactive: %w", id, billing.ErrInvalidReference)
	}
	return nil
}

func (s *ClientService) paymentInput(ctx context.Context, req models.DummyPayment) (billing.PaymentInput, error) {
	in, err := billing.NewPaymentInput(req)
	if err != nil {
		return billing.PaymentInput{}, err
	}
	if in.PaymentMethodID != nil {
		if err := s.checkPaymentMethod(ctx, *in.PaymentMethodID); err != nil {
			return billing.PaymentInput{}, err
		}
	}
	return in, nil
}

// load читает клиента из кэша или из хранилища.
func (s *ClientService) load(ctx context.Context, id string) (*models.Client, error) {
	key := cache.ClientKey(id)
	if s.cache != nil {
		var cached models.Client
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("failed to read client from cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	gen := s.invalidations.Load()
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if s.invalidations.Load() != gen {
			s.log.Debug("client changed during read, skipping cache", slog.String("key", key))
			return c, nil
		}
		if err := s.cache.Set(key, c, clientCacheTTL); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
		}
		// сброс мог пройти между проверкой и Set
		if s.invalidations.Load() != gen {
			if err := s.cache.Invalidate(key); err != nil {
				s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
			}
		}
	}
	return c, nil
}

// invalidate сбрасывает снимок клиента и все отчёты.
func (s *ClientService) invalidate(id string) {
	if s.cache == nil {
		return
	}
	s.invalidations.Add(1)
	key := cache.ClientKey(id)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
	if err := s.cache.InvalidatePrefix(cache.ReportPrefix); err != nil {
		s.log.Warn("failed to invalidate reports", sl.Err(err))
	}
}

func (s *ClientService) publish(ctx context.Context, eventType, clientID string, payload any) {
	if s.publisher == nil {
		return
	}
	event := models.Event{
		Type:       eventType,
		ClientID:   clientID,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.log.Warn("failed to publish event",
			slog.String("type", eventType), slog.String("client_id", clientID), sl.Err(err))
	}
}
