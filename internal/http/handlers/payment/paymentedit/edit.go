// Package paymentedit реализует HTTP-обработчик замены платежа по позиции в истории.
//
// Необязательное поле expected_seq в теле защищает от правки записи,
// которая сместилась после конкурентного удаления.
package paymentedit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает запросы на изменение платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории платежей.
type Service interface {
	EditPayment(ctx context.Context, actor models.Actor, id string, index int, req models.DummyPayment) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить платеж
// @Description Заменяет запись истории платежей по позиции. Seq записи сохраняется.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID клиента"
// @Param index path int true "Позиция записи в истории (с нуля)"
// @Param request body models.DummyPayment true "Новые данные платежа"
// @Success 200 {object} response.Response "Клиент с обновлённой историей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или индекс"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "Запись сместилась или конкурентное изменение"
// @Failure 422 {object} response.ErrorResponse "Индекс вне истории"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id}/payments/{index} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.edit"
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

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		log.Error("failed to decode index from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode index from url"))
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
	client, err := h.service.EditPayment(r.Context(), actor, id, index, req)
	if err != nil {
		log.Error("failed to edit payment", slog.String("id", id), slog.Int("index", index), sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("payment edited", slog.String("id", id), slog.Int("index", index))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(client))
}
