package engine

import (
	"math"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// Caps is the tier-resolved rate and limits for one rule in one month.
// A limit of 0 means unlimited.
type Caps struct {
	EffectiveRate          float64 `json:"effective_rate"`
	EffectiveCategoryLimit float64 `json:"effective_category_limit"`
	EffectiveMonthlyLimit  float64 `json:"effective_monthly_limit"`
	IsTier2Active          bool    `json:"is_tier2_active"`
}

// IsTier2Active reports whether the card's second tier is unlocked at the
// given month-to-date spend. The threshold is inclusive.
func IsTier2Active(card model.Card, monthToDateSpend float64) bool {
	return card.CashbackType == model.CashbackTwoTier &&
		card.Tier2MinSpend > 0 &&
		monthToDateSpend >= card.Tier2MinSpend
}

// ResolveCaps picks tier-2 values where tier 2 is active and the value is
// set, falling back to tier 1 independently for each field.
func ResolveCaps(card model.Card, rule model.Rule, monthToDateSpend float64) Caps {
	tier2 := IsTier2Active(card, monthToDateSpend)

	caps := Caps{
		EffectiveRate:          rule.Rate,
		EffectiveCategoryLimit: rule.CategoryLimit,
		EffectiveMonthlyLimit:  card.OverallMonthlyLimit,
		IsTier2Active:          tier2,
	}
	if !tier2 {
		return caps
	}
	if rule.Tier2Rate != 0 {
		caps.EffectiveRate = rule.Tier2Rate
	}
	if rule.Tier2CategoryLimit != 0 {
		caps.EffectiveCategoryLimit = rule.Tier2CategoryLimit
	}
	if card.Tier2Limit != 0 {
		caps.EffectiveMonthlyLimit = card.Tier2Limit
	}
	return caps
}

// RemainingCap is +Inf for limit <= 0, otherwise max(0, limit-used).
func RemainingCap(limit, used float64) float64 {
	if limit <= 0 {
		return math.Inf(1)
	}
	return math.Max(0, limit-used)
}

// Unlimited reports whether a remaining-cap value is the unlimited sentinel.
func Unlimited(v float64) bool {
	return math.IsInf(v, 1)
}

// SafeRatio divides without letting NaN or Inf escape.
func SafeRatio(num, den float64) float64 {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return 0
	}
	r := num / den
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}
