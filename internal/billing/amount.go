package billing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/models"
)

var one = decimal.NewFromInt(1)

// DiscountSource возвращает строку скидки для пары (план, способ оплаты)
// или ошибку ErrNotFound, если строки нет.
type DiscountSource interface {
	GetDiscount(ctx context.Context, planID, paymentMethodID int) (*models.Discount, error)
}

// ResolveDiscount возвращает долю скидки для пары (план, способ оплаты).
// Отсутствие строки означает скидку 0.
func ResolveDiscount(ctx context.Context, src DiscountSource, planID, paymentMethodID int) (decimal.Decimal, error) {
	d, err := src.GetDiscount(ctx, planID, paymentMethodID)
	if errors.Is(err, ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, nil
	}
	return d.Discount, nil
}

// ComputeNet вычисляет чистую сумму: gross * (1 - factor).
// Скидка хранится долей, значение вне [0, 1] считается повреждённой строкой справочника.
func ComputeNet(gross, factor decimal.Decimal) (decimal.Decimal, error) {
	const op = "billing.ComputeNet"
	if factor.IsNegative() || factor.GreaterThan(one) {
		return decimal.Zero, fail(op, ErrInvalidReference, "discount factor %s outside [0, 1]", factor)
	}
	return gross.Mul(one.Sub(factor)), nil
}

// GrossOverride подменяет номинальную сумму фактической суммой расчёта
// для конкретного способа оплаты и конкретной цены.
type GrossOverride struct {
	PaymentMethod string
	Gross         decimal.Decimal
	Substitute    decimal.Decimal
}

// GrossOverrides: таблица подмен. Применяется только при построении отчёта.
type GrossOverrides []GrossOverride

// DefaultGrossOverrides: суммы, которые PagSeguro фактически перечисляет за две цены.
func DefaultGrossOverrides() GrossOverrides {
	return GrossOverrides{
		{PaymentMethod: "PagSeguro", Gross: decimal.RequireFromString("35.00"), Substitute: decimal.RequireFromString("32.85")},
		{PaymentMethod: "PagSeguro", Gross: decimal.RequireFromString("70.00"), Substitute: decimal.RequireFromString("66.11")},
	}
}

// Apply возвращает подменённую сумму или исходную, если строки в таблице нет.
func (o GrossOverrides) Apply(paymentMethod string, gross decimal.Decimal) decimal.Decimal {
	for _, row := range o {
		if row.PaymentMethod == paymentMethod && row.Gross.Equal(gross) {
			return row.Substitute
		}
	}
	return gross
}
