package billing

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/billing-admin/internal/config"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/create"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/list"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/reactivate"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/read"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/remove"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/renew"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/client/update"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/health"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/payment/paymentappend"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/payment/paymentedit"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/payment/paymentremove"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/reference/discount"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/reference/referencelist"
	"github.com/magabrotheeeer/billing-admin/internal/http/handlers/report/build"
	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
	clientservice "github.com/magabrotheeeer/billing-admin/internal/services/client"
	referenceservice "github.com/magabrotheeeer/billing-admin/internal/services/reference"
	reportservice "github.com/magabrotheeeer/billing-admin/internal/services/report"
)

// Services объединяет сервисы, которые обслуживают маршруты API.
type Services struct {
	Clients   *clientservice.ClientService
	Reports   *reportservice.ReportService
	Reference *referenceservice.ReferenceService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg config.HTTPServer,
	services Services,
	tokens middlewarectx.TokenParser,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(m),
	)

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

			r.Post("/clients", create.New(logger, services.Clients).ServeHTTP)
			r.Get("/clients", list.New(logger, services.Clients).ServeHTTP)
			r.Get("/clients/{id}", read.New(logger, services.Clients).ServeHTTP)
			r.Put("/clients/{id}", update.New(logger, services.Clients).ServeHTTP)
			r.Delete("/clients/{id}", remove.New(logger, services.Clients).ServeHTTP)
			r.Post("/clients/{id}/renew", renew.New(logger, services.Clients).ServeHTTP)
			r.Post("/clients/{id}/reactivate", reactivate.New(logger, services.Clients).ServeHTTP)

			r.Post("/clients/{id}/payments", paymentappend.New(logger, services.Clients).ServeHTTP)
			r.Put("/clients/{id}/payments/{index}", paymentedit.New(logger, services.Clients).ServeHTTP)
			r.Delete("/clients/{id}/payments/{index}", paymentremove.New(logger, services.Clients).ServeHTTP)

			r.Get("/reports/{year}/{month}", build.New(logger, services.Reports).ServeHTTP)

			r.Get("/reference", referencelist.New(logger, services.Reference).ServeHTTP)
			r.Put("/reference/discounts", discount.New(logger, services.Reference).ServeHTTP)
		})
	})
}
