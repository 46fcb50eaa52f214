// Package paymentremove реализует HTTP-обработчик удаления платежа из истории клиента.
package paymentremove

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

// Handler обрабатывает запросы на удаление платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории платежей.
type Service interface {
	DeletePayment(ctx context.Context, actor models.Actor, id string, index int, expectedSeq *int64) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить платеж
// @Description Удаляет запись истории по позиции, последующие записи сдвигаются на одну позицию.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID клиента"
// @Param index path int true "Позиция записи в истории (с нуля)"
// @Param expected_seq query int false "Ожидаемый seq записи"
// @Success 200 {object} response.Response "Клиент с обновлённой историей"
// @Failure 400 {object} response.ErrorResponse "Некорректный индекс или expected_seq"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "Запись сместилась или конкурентное изменение"
// @Failure 422 {object} response.ErrorResponse "Индекс вне истории"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id}/payments/{index} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.remove"
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

	var expectedSeq *int64
	if v := r.URL.Query().Get("expected_seq"); v != "" {
		seq, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Error("failed to decode expected_seq", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode expected_seq"))
			return
		}
		expectedSeq = &seq
	}

	id := chi.URLParam(r, "id")
	client, err := h.service.DeletePayment(r.Context(), actor, id, index, expectedSeq)
	if err != nil {
		log.Error("failed to delete payment", slog.String("id", id), slog.Int("index", index), sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("payment deleted", slog.String("id", id), slog.Int("index", index))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(client))
}
