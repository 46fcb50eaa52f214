// Package metrics содержит счётчики Prometheus для операций биллинга.
//
// Все методы безопасны для вызова на nil *Metrics, поэтому сервисы
// в тестах создаются без регистрации метрик.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
)

const namespace = "billing"

// Значения метки result.
const (
	ResultOK                   = "ok"
	ResultNotFound             = "not_found"
	ResultInvalidReference     = "invalid_reference"
	ResultInvalidArgument      = "invalid_argument"
	ResultOutOfRange           = "out_of_range"
	ResultInvalidState         = "invalid_state"
	ResultMissingRequiredField = "missing_required_field"
	ResultConflict             = "conflict"
	ResultCanceled             = "canceled"
	ResultInternal             = "internal"
)

// Значения метки transition.
const (
	TransitionRenewed     = "renewed"
	TransitionReactivated = "reactivated"
	TransitionExpired     = "expired"
)

// Значения метки source для отчётов.
const (
	SourceCache = "cache"
	SourceStore = "store"
)

// Metrics группирует все счётчики сервиса.
type Metrics struct {
	ledgerMutations      *prometheus.CounterVec
	lifecycleTransitions *prometheus.CounterVec
	reportsBuilt         *prometheus.CounterVec
	remindersPublished   *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ledgerMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Client and payment ledger mutations by operation and result.",
		}, []string{"operation", "result"}),
		lifecycleTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Client lifecycle transitions.",
		}, []string{"transition"}),
		reportsBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_built_total",
			Help:      "Monthly reports served by source.",
		}, []string{"source"}),
		remindersPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_published_total",
			Help:      "Due date reminders published by result.",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Result сводит ошибку операции к значению метки result.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, billing.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, billing.ErrInvalidReference):
		return ResultInvalidReference
	case errors.Is(err, billing.ErrInvalidArgument):
		return ResultInvalidArgument
	case errors.Is(err, billing.ErrOutOfRange):
		return ResultOutOfRange
	case errors.Is(err, billing.ErrInvalidState):
		return ResultInvalidState
	case errors.Is(err, billing.ErrMissingRequiredField):
		return ResultMissingRequiredField
	case errors.Is(err, billing.ErrConflict):
		return ResultConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultInternal
	}
}

// Mutation учитывает изменение клиента или его истории платежей.
func (m *Metrics) Mutation(operation string, err error) {
	if m == nil {
		return
	}
	m.ledgerMutations.WithLabelValues(operation, Result(err)).Inc()
}

// Transition учитывает переход жизненного цикла клиента.
func (m *Metrics) Transition(transition string) {
	if m == nil {
		return
	}
	m.lifecycleTransitions.WithLabelValues(transition).Inc()
}

// ReportBuilt учитывает выдачу отчёта.
func (m *Metrics) ReportBuilt(source string) {
	if m == nil {
		return
	}
	m.reportsBuilt.WithLabelValues(source).Inc()
}

// ReminderPublished учитывает отправку напоминания.
func (m *Metrics) ReminderPublished(err error) {
	if m == nil {
		return
	}
	m.remindersPublished.WithLabelValues(Result(err)).Inc()
}

// HTTPRequest учитывает обработанный HTTP-запрос.
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
