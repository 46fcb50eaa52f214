// Package list реализует HTTP-обработчик для получения списка клиентов
// с фильтром по состоянию, поиском и пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает HTTP-запросы списка клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка клиентов.
type Service interface {
	List(ctx context.Context, actor models.Actor, q models.ClientQuery) ([]*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Description Возвращает клиентов текущего пользователя (администратор видит всех).
// @Tags Clients
// @Produce  json
// @Security BearerAuth
// @Param active query bool false "Только активные (true) или только неактивные (false)"
// @Param q query string false "Поиск по имени, email и телефону"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список клиентов"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры запроса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.list"
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

	q, err := parseQuery(r)
	if err != nil {
		log.Error("failed to parse query", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid query parameters"))
		return
	}

	clients, err := h.service.List(r.Context(), actor, q)
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("clients listed", slog.Int("count", len(clients)))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"clients": clients,
	}))
}

func parseQuery(r *http.Request) (models.ClientQuery, error) {
	values := r.URL.Query()
	var q models.ClientQuery
	if v := values.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return q, err
		}
		q.Active = &active
	}
	q.Search = values.Get("q")
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		v := values.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		if n < 0 {
			return q, strconv.ErrRange
		}
		*dst = n
	}
	return q, nil
}
