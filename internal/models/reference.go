package models

import "github.com/shopspring/decimal"

// Plan: тарифный план.
type Plan struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// PaymentMethod: способ оплаты.
type PaymentMethod struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Discount: строка разреженной таблицы скидок, не более одной на пару (план, способ оплаты).
// Discount хранится долей в диапазоне [0, 1].
type Discount struct {
	PlanID          int             `json:"plan_id"`
	PaymentMethodID int             `json:"payment_method_id"`
	Discount        decimal.Decimal `json:"discount"`
}

// Reference объединяет справочные данные для ответа API.
type Reference struct {
	Plans          []*Plan          `json:"plans"`
	PaymentMethods []*PaymentMethod `json:"payment_methods"`
	Discounts      []*Discount      `json:"discounts"`
}

// DummyDiscount используется для приёма строки скидки из JSON-запроса.
type DummyDiscount struct {
	PlanID          int             `json:"plan_id" validate:"required,gt=0"`
	PaymentMethodID int             `json:"payment_method_id" validate:"required,gt=0"`
	Discount        decimal.Decimal `json:"discount"`
}
