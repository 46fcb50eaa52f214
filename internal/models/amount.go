package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount возвращает сумму с тем же числом знаков после запятой,
// с которым она была получена: "35.00" остаётся "35.00".
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// MarshalJSON сохраняет дату платежа с исходным смещением и суммы без усечения нулей.
func (e PaymentEntry) MarshalJSON() ([]byte, error) {
	type wire struct {
		Seq             int64  `json:"seq"`
		PaymentDate     string `json:"payment_date"`
		PaymentBruto    string `json:"payment_bruto"`
		PaymentLiquido  string `json:"payment_liquido"`
		PaymentMethodID *int   `json:"payment_method_id,omitempty"`
	}
	return json.Marshal(wire{
		Seq:             e.Seq,
		PaymentDate:     e.PaymentDate.Format(time.RFC3339Nano),
		PaymentBruto:    FormatAmount(e.PaymentBruto),
		PaymentLiquido:  FormatAmount(e.PaymentLiquido),
		PaymentMethodID: e.PaymentMethodID,
	})
}
