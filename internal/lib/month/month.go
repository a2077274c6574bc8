// Package month содержит календарную арифметику по месяцам для сроков подписки.
package month

import (
	"time"
)

// AddMonths прибавляет к t указанное число календарных месяцев.
// Если в целевом месяце нет такого дня, дата прижимается к последнему дню месяца:
// 31 января + 1 месяц = 28 (29) февраля. Время суток и локация сохраняются.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	// первое число целевого месяца, затем ограничиваем день
	first := time.Date(y, m+time.Month(months), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthsBetween считает количество полных календарных месяцев между from и to.
// Для to раньше from возвращает 0.
func MonthsBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	// месяц не закончился, если дата не достигла сдвинутой на n месяцев даты начала
	if AddMonths(from, n).After(to) {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}
