package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/billing-admin/internal/lib/month"
	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// UnknownPaymentMethod: ключ для сумм клиентов, чей способ оплаты не найден в справочнике.
const UnknownPaymentMethod = "unknown"

// ValidatePeriod проверяет месяц и год отчёта.
func ValidatePeriod(m, year int) error {
	const op = "billing.ValidatePeriod"
	if m < 1 || m > 12 {
		return fail(op, ErrInvalidArgument, "month %d outside 1-12", m)
	}
	if year < MinReportYear || year > MaxReportYear {
		return fail(op, ErrInvalidArgument, "year %d outside %d-%d", year, MinReportYear, MaxReportYear)
	}
	return nil
}

// BuildReport агрегирует истории платежей всех клиентов за месяц (UTC).
// methodNames сопоставляет id способа оплаты клиента с его названием.
func (r Rules) BuildReport(m, year int, clients []*models.Client, methodNames map[int]string) (*models.Report, error) {
	if err := ValidatePeriod(m, year); err != nil {
		return nil, err
	}
	from, to := month.Bounds(year, time.Month(m))

	report := &models.Report{
		Month:                m,
		Year:                 year,
		GrossByPaymentMethod: make(map[string]decimal.Decimal),
		DailyNetProfit:       []models.DailyProfit{},
		TotalNetAmount8:      decimal.Zero,
		TotalNetAmount15:     decimal.Zero,
		TotalGrossAmount:     decimal.Zero,
	}
	daily := make(map[time.Time]decimal.Decimal)

	for _, c := range clients {
		if c == nil {
			continue
		}
		method, ok := methodNames[c.PaymentMethodID]
		if !ok {
			method = UnknownPaymentMethod
		}
		for _, e := range c.PaymentHistory {
			if !month.Contains(from, to, e.PaymentDate) {
				continue
			}
			gross := r.Overrides.Apply(method, e.PaymentBruto)
			report.GrossByPaymentMethod[method] = report.GrossByPaymentMethod[method].Add(gross)
			report.TotalGrossAmount = report.TotalGrossAmount.Add(gross)
			report.TotalPayments++

			day := month.Day(e.PaymentDate)
			daily[day] = daily[day].Add(e.PaymentLiquido)
		}
	}

	count := decimal.NewFromInt(int64(report.TotalPayments))
	report.TotalNetAmount8 = report.TotalGrossAmount.Sub(count.Mul(r.ActivationCostLow))
	report.TotalNetAmount15 = report.TotalGrossAmount.Sub(count.Mul(r.ActivationCostHigh))

	for day, net := range daily {
		report.DailyNetProfit = append(report.DailyNetProfit, models.DailyProfit{Date: day, Net: net})
	}
	sort.Slice(report.DailyNetProfit, func(i, j int) bool {
		return report.DailyNetProfit[i].Date.Before(report.DailyNetProfit[j].Date)
	})
	return report, nil
}
