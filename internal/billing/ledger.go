package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// PaymentInput: проверенные данные новой или изменённой записи платежа.
type PaymentInput struct {
	PaymentDate     time.Time
	PaymentBruto    decimal.Decimal
	PaymentLiquido  decimal.Decimal
	PaymentMethodID *int
}

// ParsePaymentDate разбирает дату платежа в формате RFC 3339 или 2006-01-02 (полночь UTC).
func ParsePaymentDate(s string) (time.Time, error) {
	const op = "billing.ParsePaymentDate"
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fail(op, ErrInvalidArgument, "payment date is empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fail(op, ErrInvalidArgument, "payment date %q is not a valid date", s)
}

// NewPaymentInput проверяет поля запроса и собирает PaymentInput.
func NewPaymentInput(req models.DummyPayment) (PaymentInput, error) {
	date, err := ParsePaymentDate(req.PaymentDate)
	if err != nil {
		return PaymentInput{}, err
	}
	in := PaymentInput{
		PaymentDate:     date,
		PaymentBruto:    req.PaymentBruto,
		PaymentLiquido:  req.PaymentLiquido,
		PaymentMethodID: req.PaymentMethodID,
	}
	if err := in.Validate(); err != nil {
		return PaymentInput{}, err
	}
	return in, nil
}

// Validate проверяет, что дата задана, а суммы положительны.
func (in PaymentInput) Validate() error {
	const op = "billing.PaymentInput.Validate"
	if in.PaymentDate.IsZero() {
		return fail(op, ErrInvalidArgument, "payment date is required")
	}
	if !in.PaymentBruto.IsPositive() {
		return fail(op, ErrInvalidArgument, "payment_bruto must be positive, got %s", in.PaymentBruto)
	}
	if !in.PaymentLiquido.IsPositive() {
		return fail(op, ErrInvalidArgument, "payment_liquido must be positive, got %s", in.PaymentLiquido)
	}
	if in.PaymentMethodID != nil && *in.PaymentMethodID <= 0 {
		return fail(op, ErrInvalidArgument, "payment_method_id must be positive")
	}
	return nil
}

// AppendPayment добавляет запись в конец истории и выдаёт ей следующий seq.
func AppendPayment(c *models.Client, in PaymentInput) (models.PaymentEntry, error) {
	if err := in.Validate(); err != nil {
		return models.PaymentEntry{}, err
	}
	if c.NextPaymentSeq < 1 {
		c.NextPaymentSeq = nextSeq(c.PaymentHistory)
	}
	entry := models.PaymentEntry{
		Seq:             c.NextPaymentSeq,
		PaymentDate:     in.PaymentDate,
		PaymentBruto:    in.PaymentBruto,
		PaymentLiquido:  in.PaymentLiquido,
		PaymentMethodID: in.PaymentMethodID,
	}
	c.PaymentHistory = append(c.PaymentHistory, entry)
	c.NextPaymentSeq++
	return entry, nil
}

// EditPaymentAt заменяет запись на позиции index, сохраняя её seq и порядок остальных записей.
// Если expectedSeq задан и не совпадает с seq записи, возвращается ErrConflict.
func EditPaymentAt(c *models.Client, index int, expectedSeq *int64, in PaymentInput) (models.PaymentEntry, error) {
	const op = "billing.EditPaymentAt"
	if err := checkIndex(op, c.PaymentHistory, index, expectedSeq); err != nil {
		return models.PaymentEntry{}, err
	}
	if err := in.Validate(); err != nil {
		return models.PaymentEntry{}, err
	}
	entry := models.PaymentEntry{
		Seq:             c.PaymentHistory[index].Seq,
		PaymentDate:     in.PaymentDate,
		PaymentBruto:    in.PaymentBruto,
		PaymentLiquido:  in.PaymentLiquido,
		PaymentMethodID: in.PaymentMethodID,
	}
	history := make([]models.PaymentEntry, len(c.PaymentHistory))
	copy(history, c.PaymentHistory)
	history[index] = entry
	c.PaymentHistory = history
	return entry, nil
}

// DeletePaymentAt удаляет запись на позиции index, последующие записи сдвигаются на одну позицию.
func DeletePaymentAt(c *models.Client, index int, expectedSeq *int64) (models.PaymentEntry, error) {
	const op = "billing.DeletePaymentAt"
	if err := checkIndex(op, c.PaymentHistory, index, expectedSeq); err != nil {
		return models.PaymentEntry{}, err
	}
	removed := c.PaymentHistory[index]
	history := make([]models.PaymentEntry, 0, len(c.PaymentHistory)-1)
	history = append(history, c.PaymentHistory[:index]...)
	history = append(history, c.PaymentHistory[index+1:]...)
	c.PaymentHistory = history
	return removed, nil
}

func checkIndex(op string, history []models.PaymentEntry, index int, expectedSeq *int64) error {
	if index < 0 || index >= len(history) {
		return fail(op, ErrOutOfRange, "index %d, history length %d", index, len(history))
	}
	if expectedSeq != nil && history[index].Seq != *expectedSeq {
		return fail(op, ErrConflict, "entry at index %d has seq %d, expected %d", index, history[index].Seq, *expectedSeq)
	}
	return nil
}

func nextSeq(history []models.PaymentEntry) int64 {
	var last int64
	for _, e := range history {
		if e.Seq > last {
			last = e.Seq
		}
	}
	return last + 1
}
