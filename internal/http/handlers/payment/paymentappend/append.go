// Package paymentappend реализует HTTP-обработчик добавления платежа в историю клиента.
package paymentappend

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает запросы на добавление платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории платежей.
type Service interface {
	AppendPayment(ctx context.Context, actor models.Actor, id string, req models.DummyPayment) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Добавить платеж
// @Description Добавляет запись в конец истории платежей клиента.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID клиента"
// @Param request body models.DummyPayment true "Платеж"
// @Success 201 {object} response.Response "Клиент с обновлённой историей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, нет даты или отрицательная сумма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент или способ оплаты не найден"
// @Failure 409 {object} response.ErrorResponse "Конкурентное изменение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id}/payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.append"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyPayment
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	id := chi.URLParam(r, "id")
	client, err := h.service.AppendPayment(r.Context(), actor, id, req)
	if err != nil {
		log.Error("failed to append payment", slog.String("id", id), sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("payment appended", slog.String("id", id), slog.Int("history_len", len(client.PaymentHistory)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(client))
}
