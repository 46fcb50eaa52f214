// Package discount реализует HTTP-обработчик записи скидки для пары (план, способ оплаты).
package discount

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/http/response"
	"github.com/magabrotheeeer/billing-admin/internal/lib/sl"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// Handler обрабатывает запросы на запись скидки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает запись строки таблицы скидок.
type Service interface {
	SetDiscount(ctx context.Context, req models.DummyDiscount) (*models.Discount, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записать скидку
// @Description Создаёт или заменяет скидку (доля от 0 до 1) для пары план и способ оплаты. Доступно только администратору.
// @Tags Reference
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyDiscount true "Скидка"
// @Success 200 {object} response.Response{data=models.Discount} "Записанная скидка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или скидка вне [0, 1]"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "План или способ оплаты не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /reference/discounts [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reference.discount"
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
	if !actor.IsAdmin() {
		log.Warn("discount change denied", slog.String("user_id", actor.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	}

	var req models.DummyDiscount
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request"))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	d, err := h.service.SetDiscount(r.Context(), req)
	if err != nil {
		log.Error("failed to set discount", sl.Err(err))
		status, resp := response.ServiceError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("discount set",
		slog.Int("plan_id", d.PlanID),
		slog.Int("payment_method_id", d.PaymentMethodID),
		slog.String("discount", d.Discount.String()))
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.StatusOKWithData(d))
}
