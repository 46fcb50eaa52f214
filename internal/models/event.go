package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ключи маршрутизации событий в обменнике billing.
const (
	EventClientCreated     = "client.created"
	EventClientUpdated     = "client.updated"
	EventClientDeleted     = "client.deleted"
	EventClientRenewed     = "client.renewed"
	EventClientReactivated = "client.reactivated"
	EventPaymentAppended   = "payment.appended"
	EventPaymentEdited     = "payment.edited"
	EventPaymentDeleted    = "payment.deleted"
	EventClientDueSoon     = "client.due_soon"
)

// Event: сообщение о изменении клиента или его истории платежей,
// публикуемое в брокер сообщений.
type Event struct {
	Type       string    `json:"type"`
	ClientID   string    `json:"client_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// PaymentChange: полезная нагрузка событий payment.*.
type PaymentChange struct {
	Index int          `json:"index"`
	Entry PaymentEntry `json:"entry"`
}

// DueReminder: напоминание о приближающейся дате оплаты.
type DueReminder struct {
	ClientID    string          `json:"client_id"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	DueDate     string          `json:"due_date"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}
