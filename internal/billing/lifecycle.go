package billing

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/billing-admin/internal/models"
)

// State: состояние подписки клиента.
type State string

const (
	StateActive  State = "active"
	StateExpired State = "expired"
)

// Overdue сообщает, прошло ли с даты оплаты больше grace.
func Overdue(dueDate, now time.Time, grace time.Duration) bool {
	return now.Sub(dueDate) > grace
}

// State вычисляет текущее состояние клиента. Сохранённый флаг IsActive
// учитывается вместе с просрочкой, поэтому результат зависит от now.
func (r Rules) State(c *models.Client, now time.Time) State {
	if c.IsActive && !Overdue(c.DueDate, now, r.GracePeriod) {
		return StateActive
	}
	return StateExpired
}

// Refresh приводит IsActive к вычисленному состоянию и сообщает, изменился ли флаг.
func (r Rules) Refresh(c *models.Client, now time.Time) bool {
	active := r.State(c, now) == StateActive
	changed := c.IsActive != active
	c.IsActive = active
	return changed
}

// ParseDueDate разбирает дату оплаты в формате 2006-01-02.
// Пустая строка даёт ErrMissingRequiredField, неверный формат даёт ErrInvalidArgument.
func ParseDueDate(s string) (time.Time, error) {
	const op = "billing.ParseDueDate"
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fail(op, ErrMissingRequiredField, "due_date is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fail(op, ErrInvalidArgument, "due_date %q must be in format %s", s, DateLayout)
	}
	return t, nil
}

// SetDueDate меняет дату оплаты и кэшированную строку вместе.
func SetDueDate(c *models.Client, dueDate time.Time) {
	c.DueDate = dueDate
	c.DueDateString = FormatDueDate(dueDate)
}

// FormatDueDate форматирует дату оплаты как dd/mm/yyyy.
func FormatDueDate(t time.Time) string {
	return t.UTC().Format(DueDateLayout)
}

// Renew продлевает подписку: меняет только дату оплаты, состояние не трогает.
func Renew(c *models.Client, dueDate string) error {
	d, err := ParseDueDate(dueDate)
	if err != nil {
		return err
	}
	SetDueDate(c, d)
	return nil
}

// Reactivate переводит просроченного клиента в активное состояние с новой датой оплаты.
// Состояние проверяется раньше даты: активного клиента нельзя реактивировать ни с какой датой.
func (r Rules) Reactivate(c *models.Client, dueDate string, now time.Time) error {
	const op = "billing.Reactivate"
	if r.State(c, now) == StateActive {
		return fail(op, ErrInvalidState, "client %s is already active", c.ID)
	}
	d, err := ParseDueDate(dueDate)
	if err != nil {
		return err
	}
	SetDueDate(c, d)
	c.IsActive = true
	return nil
}
