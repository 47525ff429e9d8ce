package engine

import (
	"math"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type Warning string

const (
	WarnMinSpendNotMet     Warning = "minimum monthly spend not met"
	WarnMonthlyCapReached  Warning = "monthly cashback cap reached"
	WarnCategoryCapReached Warning = "category cashback cap reached"
)

type CalculationInput struct {
	Caps                 Caps
	Rule                 model.Rule
	Amount               float64
	CategoryCashbackUsed float64
	MonthlyCashbackUsed  float64
	MonthToDateSpend     float64
	MinimumMonthlySpend  float64
}

type CalculationResult struct {
	Cashback float64   `json:"cashback"`
	Warnings []Warning `json:"warnings"`
	Blocked  bool      `json:"blocked"`

	MinSpendMet        bool `json:"min_spend_met"`
	MonthlyCapReached  bool `json:"monthly_cap_reached"`
	CategoryCapReached bool `json:"category_cap_reached"`
}

// ValidAmount reports whether amount can be scored at all.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}

// Calculate scores one transaction amount against resolved caps.
//
// Cap checks are binary: a category or monthly cap blocks only once usage
// has already reached it. A transaction that starts under the cap earns its
// full (transaction-capped) cashback even if that overshoots the cap.
func Calculate(in CalculationInput) CalculationResult {
	res := CalculationResult{Warnings: []Warning{}}

	res.MinSpendMet = in.MinimumMonthlySpend <= 0 || in.MonthToDateSpend >= in.MinimumMonthlySpend
	res.MonthlyCapReached = in.Caps.EffectiveMonthlyLimit > 0 && in.MonthlyCashbackUsed >= in.Caps.EffectiveMonthlyLimit
	res.CategoryCapReached = in.Caps.EffectiveCategoryLimit > 0 && in.CategoryCashbackUsed >= in.Caps.EffectiveCategoryLimit

	if !ValidAmount(in.Amount) {
		return res
	}

	if !res.MinSpendMet {
		res.Warnings = append(res.Warnings, WarnMinSpendNotMet)
	}
	if res.MonthlyCapReached {
		res.Warnings = append(res.Warnings, WarnMonthlyCapReached)
	}
	if res.CategoryCapReached {
		res.Warnings = append(res.Warnings, WarnCategoryCapReached)
	}
	if !res.MinSpendMet || res.MonthlyCapReached || res.CategoryCapReached {
		res.Blocked = true
		return res
	}

	res.Cashback = CappedCashback(in.Rule, in.Amount, in.Caps.EffectiveRate)
	return res
}

// TransactionCap returns the per-transaction cap that applies to amount.
// The secondary limit replaces the primary one once amount reaches the
// secondary criteria; it does not stack with it.
func TransactionCap(rule model.Rule, amount float64) float64 {
	limit := rule.TransactionLimit
	if rule.SecondaryTransactionCriteria > 0 && amount >= rule.SecondaryTransactionCriteria {
		limit = rule.SecondaryTransactionLimit
	}
	return limit
}

// CappedCashback is amount*rate bounded by the applicable transaction cap.
func CappedCashback(rule model.Rule, amount, rate float64) float64 {
	if !ValidAmount(amount) {
		return 0
	}
	raw := amount * rate
	if limit := TransactionCap(rule, amount); limit > 0 {
		return math.Min(raw, limit)
	}
	return raw
}
