// Package services содержит воркер напоминаний о приближающейся дате оплаты.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/lib/month"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

const pageSize = 100

// ClientRepository возвращает клиентов по фильтру.
type ClientRepository interface {
	ListClients(ctx context.Context, filter models.ClientFilter) ([]*models.Client, error)
}

// Publisher отправляет напоминания в брокер сообщений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// ReminderService периодически ищет активных клиентов с оплатой завтра
// и публикует для каждого событие client.due_soon. Состояние клиентов не меняется.
type ReminderService struct {
	repo      ClientRepository
	publisher Publisher
	interval  time.Duration
	rules     billing.Rules
	metrics   *metrics.Metrics
	now       func() time.Time
	log       *slog.Logger
}

// NewReminderService создает новый экземпляр ReminderService.
func NewReminderService(repo ClientRepository, publisher Publisher, interval time.Duration, m *metrics.Metrics, log *slog.Logger) *ReminderService {
	return &ReminderService{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		rules:     billing.DefaultRules(),
		metrics:   m,
		now:       time.Now,
		log:       log,
	}
}

// Run выполняет проверку сразу и затем каждые interval до отмены ctx.
func (s *ReminderService) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder worker stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ReminderService) runOnce(ctx context.Context) {
	s.log.Info("starting search for clients due tomorrow")
	sent, err := s.RemindDueTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to send reminders", sl.Err(err))
		return
	}
	s.log.Info("reminders sent", slog.Int("count", sent))
}

// RemindDueTomorrow публикует напоминания и возвращает число отправленных.
// Ошибка публикации одного напоминания логируется и не прерывает обход.
func (s *ReminderService) RemindDueTomorrow(ctx context.Context) (int, error) {
	const op = "services.ReminderService.RemindDueTomorrow"

	now := s.now().UTC()
	tomorrow := month.Day(now).AddDate(0, 0, 1)
	active := true
	filter := models.ClientFilter{
		Active:      &active,
		GraceCutoff: now.Add(-s.rules.GracePeriod),
		DueOn:       &tomorrow,
		Limit:       pageSize,
	}

	sent := 0
	for {
		clients, err := s.repo.ListClients(ctx, filter)
		if err != nil {
			return sent, fmt.Errorf("%s: %w", op, err)
		}
		for _, c := range clients {
			if err := s.publish(ctx, c, now); err != nil {
				s.log.Error("failed to publish message", slog.String("client_id", c.ID), sl.Err(err))
				continue
			}
			sent++
		}
		if len(clients) < pageSize {
			return sent, nil
		}
		filter.Offset += pageSize
	}
}

func (s *ReminderService) publish(ctx context.Context, c *models.Client, now time.Time) error {
	event := models.Event{
		Type:       models.EventClientDueSoon,
		ClientID:   c.ID,
		OccurredAt: now,
		Payload: models.DueReminder{
			ClientID:    c.ID,
			FullName:    c.FullName,
			Email:       c.Email,
			Phone:       c.Phone,
			DueDate:     c.DueDateString,
			GrossAmount: c.GrossAmount,
		},
	}
	err := s.publisher.Publish(ctx, models.EventClientDueSoon, event)
	s.metrics.ReminderPublished(err)
	return err
}
