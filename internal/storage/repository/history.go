package repository

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/billing"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// storedPayment: формат записи в колонке payment_history.
// Ключи совпадают с историческими данными, поэтому указатели отличают отсутствующее поле от нуля.
type storedPayment struct {
	Seq             int64            `json:"seq,omitempty"`
	PaymentDate     *string          `json:"paymentDate"`
	PaymentBruto    *decimal.Decimal `json:"paymentBruto"`
	PaymentLiquido  *decimal.Decimal `json:"paymentLiquido"`
	PaymentMethodID *int             `json:"paymentMethodId,omitempty"`
}

// DecodedHistory: результат чтения истории платежей.
// NotArray и Dropped сообщают о деградации: вызывающий логирует их, но не возвращает ошибку.
type DecodedHistory struct {
	Entries  []models.PaymentEntry
	NotArray bool
	Dropped  int
	NextSeq  int64
}

// Degraded сообщает, была ли часть истории отброшена.
func (d DecodedHistory) Degraded() bool {
	return d.NotArray || d.Dropped > 0
}

// DecodeHistory разбирает сохранённую историю с подстановкой значений по умолчанию.
// Не массив превращается в пустой список, элементы без даты или сумм отбрасываются.
// Записям без seq выдаются номера после максимального существующего.
func DecodeHistory(raw []byte) DecodedHistory {
	result := DecodedHistory{Entries: []models.PaymentEntry{}, NextSeq: 1}
	if len(raw) == 0 {
		return result
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		result.NotArray = true
		return result
	}

	var maxSeq int64
	missingSeq := make([]int, 0)
	for _, el := range elements {
		var sp storedPayment
		if err := json.Unmarshal(el, &sp); err != nil {
			result.Dropped++
			continue
		}
		if sp.PaymentDate == nil || sp.PaymentBruto == nil || sp.PaymentLiquido == nil {
			result.Dropped++
			continue
		}
		date, err := billing.ParsePaymentDate(*sp.PaymentDate)
		if err != nil {
			result.Dropped++
			continue
		}
		if sp.Seq > maxSeq {
			maxSeq = sp.Seq
		}
		if sp.Seq <= 0 {
			missingSeq = append(missingSeq, len(result.Entries))
		}
		result.Entries = append(result.Entries, models.PaymentEntry{
			Seq:             sp.Seq,
			PaymentDate:     date,
			PaymentBruto:    *sp.PaymentBruto,
			PaymentLiquido:  *sp.PaymentLiquido,
			PaymentMethodID: sp.PaymentMethodID,
		})
	}
	for _, i := range missingSeq {
		maxSeq++
		result.Entries[i].Seq = maxSeq
	}
	result.NextSeq = maxSeq + 1
	return result
}

// encodedPayment: запись, которую пишет EncodeHistory. Суммы хранятся строками
// с исходной точностью, дата сохраняет смещение часового пояса.
type encodedPayment struct {
	Seq             int64  `json:"seq,omitempty"`
	PaymentDate     string `json:"paymentDate"`
	PaymentBruto    string `json:"paymentBruto"`
	PaymentLiquido  string `json:"paymentLiquido"`
	PaymentMethodID *int   `json:"paymentMethodId,omitempty"`
}

// EncodeHistory сериализует историю в формат колонки payment_history.
func EncodeHistory(entries []models.PaymentEntry) ([]byte, error) {
	stored := make([]encodedPayment, 0, len(entries))
	for _, e := range entries {
		stored = append(stored, encodedPayment{
			Seq:             e.Seq,
			PaymentDate:     e.PaymentDate.Format(time.RFC3339Nano),
			PaymentBruto:    models.FormatAmount(e.PaymentBruto),
			PaymentLiquido:  models.FormatAmount(e.PaymentLiquido),
			PaymentMethodID: e.PaymentMethodID,
		})
	}
	return json.Marshal(stored)
}
