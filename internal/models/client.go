// Package models содержит доменные структуры клиента, его истории платежей
// и справочных данных, а также структуры для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client представляет клиента с подпиской, способом оплаты и встроенной историей платежей.
// NetAmount всегда вычисляется из GrossAmount и скидки пары (план, способ оплаты).
// DueDateString: кэш DueDate в формате dd/mm/yyyy, обновляется вместе с DueDate.
type Client struct {
	ID                     string          `json:"id"`
	FullName               string          `json:"full_name"`
	Email                  string          `json:"email"`
	Phone                  string          `json:"phone"`
	PlanID                 int             `json:"plan_id"`
	PaymentMethodID        int             `json:"payment_method_id"`
	DueDate                time.Time       `json:"due_date"`
	DueDateString          string          `json:"due_date_string"`
	GrossAmount            decimal.Decimal `json:"gross_amount"`
	NetAmount              decimal.Decimal `json:"net_amount"`
	IsActive               bool            `json:"is_active"`
	Observations           string          `json:"observations"`
	PaymentHistory         []PaymentEntry  `json:"payment_history"`
	VisualPaymentConfirmed bool            `json:"visual_payment_confirmed"`
	UserID                 string          `json:"user_id"`
	Version                int             `json:"version"`
	NextPaymentSeq         int64           `json:"next_payment_seq"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// PaymentEntry: одна запись в истории платежей клиента.
// Позиция в списке используется как адрес для редактирования и удаления,
// Seq: стабильный идентификатор записи внутри клиента.
type PaymentEntry struct {
	Seq             int64           `json:"seq"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentBruto    decimal.Decimal `json:"payment_bruto"`
	PaymentLiquido  decimal.Decimal `json:"payment_liquido"`
	PaymentMethodID *int            `json:"payment_method_id,omitempty"`
}

// ClientFilter: параметры выборки клиентов для хранилища.
type ClientFilter struct {
	Active      *bool     // nil: без фильтра по состоянию
	GraceCutoff time.Time // клиент активен, если is_active и due_date >= GraceCutoff
	Search      string    // поиск по имени, email и телефону
	UserID      string    // пустая строка: клиенты всех пользователей
	DueOn       *time.Time
	Limit       int
	Offset      int
}

// DummyClient используется для приёма данных клиента из JSON-запроса
// при создании и обновлении.
type DummyClient struct {
	FullName               string          `json:"full_name" validate:"required"`
	Email                  string          `json:"email" validate:"omitempty,email"`
	Phone                  string          `json:"phone"`
	PlanID                 int             `json:"plan_id" validate:"required,gt=0"`
	PaymentMethodID        int             `json:"payment_method_id" validate:"required,gt=0"`
	DueDate                string          `json:"due_date" validate:"required"` // 2006-01-02
	GrossAmount            decimal.Decimal `json:"gross_amount"`
	Observations           string          `json:"observations"`
	VisualPaymentConfirmed bool            `json:"visual_payment_confirmed"`
}

// DummyPayment используется для приёма записи платежа из JSON-запроса.
// ExpectedSeq опционален: при редактировании он защищает от устаревшего индекса.
type DummyPayment struct {
	PaymentDate     string          `json:"payment_date"`
	PaymentBruto    decimal.Decimal `json:"payment_bruto"`
	PaymentLiquido  decimal.Decimal `json:"payment_liquido"`
	PaymentMethodID *int            `json:"payment_method_id,omitempty"`
	ExpectedSeq     *int64          `json:"expected_seq,omitempty"`
}

// DummyDueDate используется для продления и реактивации.
// Поле не помечено как required: его отсутствие даёт отдельный вид ошибки.
type DummyDueDate struct {
	DueDate string `json:"due_date"`
}
