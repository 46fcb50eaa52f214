// Package referencelist реализует HTTP-обработчик справочника планов,
// способов оплаты и скидок.
package referencelist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает запросы справочника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение справочных данных.
type Service interface {
	List(ctx context.Context) (*models.Reference, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Справочник
// @Description Планы, способы оплаты и таблица скидок.
// @Tags Reference
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Reference} "Справочные данные"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reference [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reference.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ref, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list reference data", sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(ref))
}
