// Package reactivate реализует HTTP-обработчик реактивации неактивного клиента.
package reactivate

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

// Handler обрабатывает запросы на реактивацию клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает переход жизненного цикла клиента.
type Service interface {
	Reactivate(ctx context.Context, actor models.Actor, id string, req models.DummyDueDate) (*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Реактивировать клиента
// @Description Возвращает неактивного клиента в активное состояние с новой датой оплаты. Для активного клиента возвращает 409.
// @Tags Clients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID клиента"
// @Param request body models.DummyDueDate true "Новая дата оплаты (YYYY-MM-DD)"
// @Success 200 {object} response.Response "Обновлённый клиент"
// @Failure 400 {object} response.ErrorResponse "Нет или некорректна дата оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "Недопустимое состояние или конкурентное изменение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{id}/reactivate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.reactivate"
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

	var req models.DummyDueDate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	id := chi.URLParam(r, "id")
	client, err := h.service.Reactivate(r.Context(), actor, id, req)
	if err != nil {
		log.Error("failed to reactivate client", slog.String("id", id), sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("client reactivated", slog.String("id", id), slog.String("due_date", client.DueDateString))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(client))
}
