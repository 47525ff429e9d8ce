package engine

import (
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type StatementDates struct {
	StatementDate time.Time `json:"statement_date"`
	PaymentDate   time.Time `json:"payment_date"`
}

// ComputeStatementDates derives a month's statement and payment due dates.
// When the due day falls before the statement day the due date rolls into
// the following month. Day overflow (e.g. 31 in a 30-day month) is left to
// calendar normalisation.
func ComputeStatementDates(month string, statementDay, paymentDueDay int, loc *time.Location) (StatementDates, error) {
	year, mon, err := model.ParseMonth(month)
	if err != nil {
		return StatementDates{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	paymentMonth := mon
	if paymentDueDay < statementDay {
		paymentMonth++
	}

	return StatementDates{
		StatementDate: time.Date(year, time.Month(mon), statementDay, 0, 0, 0, 0, loc),
		PaymentDate:   time.Date(year, time.Month(paymentMonth), paymentDueDay, 0, 0, 0, 0, loc),
	}, nil
}

const (
	CycleUpcoming  = "Upcoming"
	CycleCompleted = "Completed"
	CycleUnknown   = "N/A"
)

// CycleCountdown reports how many days remain in card's cashback cycle for
// month. Cards paid by statement month run to the last calendar day of the
// month. Others close on their statement day. A finished cycle has no day
// count.
func CycleCountdown(card model.Card, month string, today time.Time) (*int, string) {
	year, mon, err := model.ParseMonth(month)
	if err != nil {
		return nil, CycleUnknown
	}

	var end time.Time
	if card.UseStatementMonthForPayments {
		end = time.Date(year, time.Month(mon)+1, 0, 0, 0, 0, 0, time.UTC)
	} else {
		if card.StatementDay < 1 {
			return nil, CycleUnknown
		}
		end = time.Date(year, time.Month(mon), card.StatementDay, 0, 0, 0, 0, time.UTC)
	}

	days := DaysLeft(end, today)
	if days == nil {
		return nil, CycleCompleted
	}
	return days, CycleUpcoming
}

// DaysLeft is the whole number of days from today until due, or nil once
// due has passed.
func DaysLeft(due, today time.Time) *int {
	d := civilDays(due) - civilDays(today)
	if d < 0 {
		return nil
	}
	n := int(d)
	return &n
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func civilDays(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
