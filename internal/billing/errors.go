// Package billing содержит бизнес-правила клиента: вычисление сумм со скидкой,
// историю платежей, жизненный цикл подписки и построение финансового отчёта.
// Пакет не обращается к хранилищу напрямую, кроме поиска скидки через DiscountSource.
package billing

import (
	"errors"
	"fmt"
)

// Виды ошибок. Сообщения стабильны, вызывающий слой сопоставляет их через errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidReference     = errors.New("invalid reference")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrOutOfRange           = errors.New("payment index out of range")
	ErrInvalidState         = errors.New("invalid lifecycle state")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrConflict             = errors.New("concurrent modification")
)

func fail(op string, kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
}
