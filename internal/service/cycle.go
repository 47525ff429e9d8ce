package service

import (
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// CashbackMonth buckets a purchase into the card's cashback month. Cards that
// track payments by statement month earn by calendar month; all others roll
// into the next month from the statement day onwards.
func CashbackMonth(card model.Card, date time.Time) string {
	if card.UseStatementMonthForPayments {
		return model.MonthOf(date)
	}
	return StatementMonth(card, date)
}

// StatementMonth is the billing cycle a purchase is charged on.
func StatementMonth(card model.Card, date time.Time) string {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	if card.StatementDay > 0 && date.Day() >= card.StatementDay {
		first = first.AddDate(0, 1, 0)
	}
	return model.MonthOf(first)
}

// CurrentStatementMonth is the statement still open on today; it only moves on
// once the statement day has passed.
func CurrentStatementMonth(card model.Card, today time.Time) string {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	if today.Day() > card.StatementDay {
		first = first.AddDate(0, 1, 0)
	}
	return model.MonthOf(first)
}

// Clock returns "now" in the configured location.
type Clock func() time.Time

func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}
