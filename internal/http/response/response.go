// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status: статус запроса ("OK" или "Error").
// Поле Error: текст ошибки (опционально, при неуспехе).
// Поле Data: данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse: структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"not found"`
}

const (
	// StatusOK: значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError: значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Стабильные тексты ошибок, которые видит клиент API.
const (
	MsgNotFound             = "not found"
	MsgInvalidReference     = "invalid reference"
	MsgInvalidArgument      = "invalid argument"
	MsgOutOfRange           = "payment index out of range"
	MsgInvalidState         = "invalid lifecycle state"
	MsgMissingRequiredField = "missing required field"
	MsgConflict             = "concurrent modification"
	MsgInternal             = "internal error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ServiceError сопоставляет ошибку сервиса с HTTP-статусом и стабильным сообщением.
// Неизвестные ошибки отдаются как 500 без подробностей.
func ServiceError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, billing.ErrNotFound):
		return http.StatusNotFound, Error(MsgNotFound)
	case errors.Is(err, billing.ErrInvalidReference):
		return http.StatusUnprocessableEntity, Error(MsgInvalidReference)
	case errors.Is(err, billing.ErrInvalidArgument):
		return http.StatusBadRequest, Error(MsgInvalidArgument)
	case errors.Is(err, billing.ErrOutOfRange):
		return http.StatusUnprocessableEntity, Error(MsgOutOfRange)
	case errors.Is(err, billing.ErrInvalidState):
		return http.StatusConflict, Error(MsgInvalidState)
	case errors.Is(err, billing.ErrMissingRequiredField):
		return http.StatusBadRequest, Error(MsgMissingRequiredField)
	case errors.Is(err, billing.ErrConflict):
		return http.StatusConflict, Error(MsgConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Error(MsgInternal)
	default:
		return http.StatusInternalServerError, Error(MsgInternal)
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
