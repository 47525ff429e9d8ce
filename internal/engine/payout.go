package engine

import (
	"math"
	"strings"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type PayoutType string

const (
	PayoutM0      PayoutType = "M0"
	PayoutM1      PayoutType = "M+1"
	PayoutM2      PayoutType = "M+2"
	PayoutPoints  PayoutType = "POINTS"
	PayoutUnknown PayoutType = ""

	DefaultTier1Payout = "M+1"
	DefaultTier2Payout = "M+2"
)

// ParsePayoutType normalises free-form payout labels such as "m + 1" or
// "Points ".
func ParsePayoutType(raw string) PayoutType {
	n := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	switch {
	case strings.Contains(n, "POINT"):
		return PayoutPoints
	case n == "M0":
		return PayoutM0
	case n == "M+1":
		return PayoutM1
	case n == "M+2":
		return PayoutM2
	}
	return PayoutUnknown
}

// Offset is the number of months after the cashback month that the payout
// lands, and false for points or unknown types.
func (p PayoutType) Offset() (int, bool) {
	switch p {
	case PayoutM0:
		return 0, true
	case PayoutM1:
		return 1, true
	case PayoutM2:
		return 2, true
	}
	return 0, false
}

type Split struct {
	Total float64 `json:"total"`
	Tier1 float64 `json:"tier1"`
	Tier2 float64 `json:"tier2"`
}

// SplitCashback divides a month's cashback at the card's tier-1 monthly limit.
func SplitCashback(total, monthlyLimit float64) Split {
	if monthlyLimit <= 0 {
		return Split{Total: total, Tier1: total}
	}
	return Split{
		Total: total,
		Tier1: math.Min(total, monthlyLimit),
		Tier2: math.Max(0, total-monthlyLimit),
	}
}

// PayoutDate is when a month's cashback is expected to be paid out. It
// returns false for points (accumulating) and unknown payout types, or when
// neither day is configured.
func PayoutDate(month string, payout PayoutType, statementDay, paymentDueDay int, loc *time.Location) (time.Time, bool) {
	if month == "" || (statementDay <= 0 && paymentDueDay <= 0) {
		return time.Time{}, false
	}
	offset, ok := payout.Offset()
	if !ok {
		return time.Time{}, false
	}
	year, mon, err := model.ParseMonth(month)
	if err != nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	target := mon + offset
	day := statementDay
	if paymentDueDay > 0 {
		if paymentDueDay < statementDay {
			target++
		}
		day = paymentDueDay
	}
	return time.Date(year, time.Month(target), day, 0, 0, 0, 0, loc), true
}

type PayoutState string

const (
	PayoutPaid    PayoutState = "paid"
	PayoutPartial PayoutState = "partial"
	PayoutUnpaid  PayoutState = "unpaid"
	PayoutOverdue PayoutState = "overdue"
)

// PayoutStatus classifies a payout. A zero due date never counts as overdue.
func PayoutStatus(due, paid float64, dueDate, today time.Time) PayoutState {
	if due <= 0 || paid >= due {
		return PayoutPaid
	}
	if paid > 0 {
		return PayoutPartial
	}
	if !dueDate.IsZero() && StartOfDay(dueDate).Before(StartOfDay(today)) {
		return PayoutOverdue
	}
	return PayoutUnpaid
}

func payoutTypeOrDefault(raw, fallback string) PayoutType {
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	return ParsePayoutType(raw)
}

// Tier1Payout and Tier2Payout resolve a card's configured payout types.
func Tier1Payout(card model.Card) PayoutType {
	return payoutTypeOrDefault(card.Tier1PaymentType, DefaultTier1Payout)
}

func Tier2Payout(card model.Card) PayoutType {
	return payoutTypeOrDefault(card.Tier2PaymentType, DefaultTier2Payout)
}
