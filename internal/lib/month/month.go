// Package month содержит вспомогательные функции для работы с календарными
// периодами в UTC: границы месяца и усечение момента до дня.
package month

import (
	"time"
)

// Bounds возвращает полуинтервал [from, to) календарного месяца в UTC.
func Bounds(year int, m time.Month) (from, to time.Time) {
	from = time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	return from, to
}

// Contains сообщает, попадает ли момент t в [from, to).
func Contains(from, to, t time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// Day усекает момент до начала календарного дня в UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
