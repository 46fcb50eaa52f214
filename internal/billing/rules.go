package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// GracePeriod: сколько времени после даты оплаты клиент остаётся активным.
	GracePeriod = 30 * 24 * time.Hour

	// DueDateLayout: формат кэшированной строки даты оплаты (dd/mm/yyyy).
	DueDateLayout = "02/01/2006"
	// DateLayout: формат дат во входящих запросах.
	DateLayout = "2006-01-02"

	MinReportYear = 2000
	MaxReportYear = 2100
)

// Фиксированные затраты на одну активацию для двух сценариев прибыли.
var (
	ActivationCostLow  = decimal.NewFromInt(8)
	ActivationCostHigh = decimal.NewFromInt(15)
)

// Rules собирает константы бизнес-правил, чтобы их можно было подменить в тестах.
type Rules struct {
	GracePeriod        time.Duration
	ActivationCostLow  decimal.Decimal
	ActivationCostHigh decimal.Decimal
	Overrides          GrossOverrides
}

// DefaultRules возвращает правила, действующие в продакшене.
func DefaultRules() Rules {
	return Rules{
		GracePeriod:        GracePeriod,
		ActivationCostLow:  ActivationCostLow,
		ActivationCostHigh: ActivationCostHigh,
		Overrides:          DefaultGrossOverrides(),
	}
}
