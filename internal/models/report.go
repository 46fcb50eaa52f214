package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report: агрегированный финансовый отчёт за месяц.
// Значения не округляются, округление выполняется в View.
type Report struct {
	Month                int                        `json:"month"`
	Year                 int                        `json:"year"`
	GrossByPaymentMethod map[string]decimal.Decimal `json:"gross_by_payment_method"`
	DailyNetProfit       []DailyProfit              `json:"daily_net_profit"`
	TotalNetAmount8      decimal.Decimal            `json:"total_net_amount_8"`
	TotalNetAmount15     decimal.Decimal            `json:"total_net_amount_15"`
	TotalGrossAmount     decimal.Decimal            `json:"total_gross_amount"`
	TotalPayments        int                        `json:"total_payments"`
}

// DailyProfit: чистая прибыль за один календарный день (UTC).
type DailyProfit struct {
	Date time.Time       `json:"date"`
	Net  decimal.Decimal `json:"net"`
}

// ReportView: отчёт в виде, отдаваемом клиенту API: суммы округлены до двух знаков.
type ReportView struct {
	Month                int               `json:"month"`
	Year                 int               `json:"year"`
	GrossByPaymentMethod map[string]string `json:"gross_by_payment_method"`
	DailyNetProfit       []DailyProfitView `json:"daily_net_profit"`
	TotalNetAmount8      string            `json:"total_net_amount_8"`
	TotalNetAmount15     string            `json:"total_net_amount_15"`
	TotalGrossAmount     string            `json:"total_gross_amount"`
	TotalPayments        int               `json:"total_payments"`
}

// DailyProfitView: точка дневного ряда в ответе API.
type DailyProfitView struct {
	Date string `json:"date"`
	Net  string `json:"net"`
}

// View округляет все суммы отчёта до двух знаков.
func (r *Report) View() ReportView {
	gross := make(map[string]string, len(r.GrossByPaymentMethod))
	for name, amount := range r.GrossByPaymentMethod {
		gross[name] = amount.StringFixed(2)
	}
	daily := make([]DailyProfitView, 0, len(r.DailyNetProfit))
	for _, p := range r.DailyNetProfit {
		daily = append(daily, DailyProfitView{
			Date: p.Date.UTC().Format("2006-01-02"),
			Net:  p.Net.StringFixed(2),
		})
	}
	return ReportView{
		Month:                r.Month,
		Year:                 r.Year,
		GrossByPaymentMethod: gross,
		DailyNetProfit:       daily,
		TotalNetAmount8:      r.TotalNetAmount8.StringFixed(2),
		TotalNetAmount15:     r.TotalNetAmount15.StringFixed(2),
		TotalGrossAmount:     r.TotalGrossAmount.StringFixed(2),
		TotalPayments:        r.TotalPayments,
	}
}
