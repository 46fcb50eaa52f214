// Package build реализует HTTP-обработчик месячного финансового отчёта.
package build

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает запросы отчёта за месяц.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает построение отчёта.
type Service interface {
	Build(ctx context.Context, month, year int) (*models.Report, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отчёт за месяц
// @Description Суммы по способам оплаты, дневная чистая прибыль и итоги за месяц. Суммы округлены до двух знаков.
// @Tags Reports
// @Produce  json
// @Security BearerAuth
// @Param year path int true "Год"
// @Param month path int true "Месяц (1-12)"
// @Success 200 {object} response.Response{data=models.ReportView} "Отчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный год или месяц"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reports/{year}/{month} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.build"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, errYear := strconv.Atoi(chi.URLParam(r, "year"))
	month, errMonth := strconv.Atoi(chi.URLParam(r, "month"))
	if errYear != nil || errMonth != nil {
		log.Error("failed to decode period from url",
			slog.String("year", chi.URLParam(r, "year")),
			slog.String("month", chi.URLParam(r, "month")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode period from url"))
		return
	}

	report, err := h.service.Build(r.Context(), month, year)
	if err != nil {
		log.Error("failed to build report", slog.Int("year", year), slog.Int("month", month), sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("report built", slog.Int("year", year), slog.Int("month", month), slog.Int("payments", report.TotalPayments))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(report.View()))
}
