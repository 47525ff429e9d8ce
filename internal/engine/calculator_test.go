package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

func twoTierCard() model.Card {
	return model.Card{
		ID:                  "card-a",
		Status:              model.CardActive,
		CashbackType:        model.CashbackTwoTier,
		OverallMonthlyLimit: 300000,
		Tier2MinSpend:       15000000,
		Tier2Limit:          600000,
	}
}

func TestResolveCaps(t *testing.T) {
	card := twoTierCard()
	rule := model.Rule{Rate: 0.05, Tier2Rate: 0.10, CategoryLimit: 100000}

	t.Run("edge: one below threshold stays tier 1", func(t *testing.T) {
		caps := ResolveCaps(card, rule, card.Tier2MinSpend-1)
		assert.False(t, caps.IsTier2Active)
		assert.Equal(t, 0.05, caps.EffectiveRate)
		assert.Equal(t, 300000.0, caps.EffectiveMonthlyLimit)
	})

	t.Run("edge: threshold is inclusive", func(t *testing.T) {
		caps := ResolveCaps(card, rule, card.Tier2MinSpend)
		assert.True(t, caps.IsTier2Active)
		assert.Equal(t, 0.10, caps.EffectiveRate)
		assert.Equal(t, 600000.0, caps.EffectiveMonthlyLimit)
	})

	t.Run("happy: missing tier-2 category limit falls back per field", func(t *testing.T) {
		caps := ResolveCaps(card, rule, card.Tier2MinSpend+1)
		assert.Equal(t, 0.10, caps.EffectiveRate)
		assert.Equal(t, 100000.0, caps.EffectiveCategoryLimit)
	})

	t.Run("edge: single tier card never activates tier 2", func(t *testing.T) {
		single := card
		single.CashbackType = model.CashbackSingle
		caps := ResolveCaps(single, rule, 1e12)
		assert.False(t, caps.IsTier2Active)
		assert.Equal(t, 0.05, caps.EffectiveRate)
	})

	t.Run("edge: zero threshold disables tier 2", func(t *testing.T) {
		c := card
		c.Tier2MinSpend = 0
		assert.False(t, IsTier2Active(c, 1e9))
	})
}

func TestRemainingCap(t *testing.T) {
	assert.True(t, Unlimited(RemainingCap(0, 5000)))
	assert.True(t, Unlimited(RemainingCap(-1, 0)))
	assert.Equal(t, 1000.0, RemainingCap(50000, 49000))
	assert.Equal(t, 0.0, RemainingCap(50000, 70000))
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 0.0, SafeRatio(10, 0))
	assert.Equal(t, 0.0, SafeRatio(math.NaN(), 2))
	assert.Equal(t, 0.0, SafeRatio(math.Inf(1), 2))
	assert.Equal(t, 5.0, SafeRatio(10, 2))
}

func TestCalculate(t *testing.T) {
	base := CalculationInput{
		Caps: Caps{EffectiveRate: 0.01},
		Rule: model.Rule{Rate: 0.01},
	}

	t.Run("edge: invalid amounts return zero without warnings", func(t *testing.T) {
		for _, amt := range []float64{0, -10, math.NaN(), math.Inf(1)} {
			in := base
			in.Amount = amt
			in.MinimumMonthlySpend = 100
			res := Calculate(in)
			assert.Zero(t, res.Cashback)
			assert.NotNil(t, res.Warnings)
			assert.Empty(t, res.Warnings)
			assert.False(t, res.Blocked)
		}
	})

	t.Run("happy: uncapped rate applies", func(t *testing.T) {
		in := base
		in.Amount = 200000
		res := Calculate(in)
		assert.Equal(t, 2000.0, res.Cashback)
		assert.False(t, res.Blocked)
	})

	t.Run("sad: min spend not met blocks", func(t *testing.T) {
		in := base
		in.Amount = 100000
		in.MinimumMonthlySpend = 5000000
		in.MonthToDateSpend = 10
		res := Calculate(in)
		assert.True(t, res.Blocked)
		assert.Zero(t, res.Cashback)
		assert.Equal(t, []Warning{WarnMinSpendNotMet}, res.Warnings)
	})

	t.Run("sad: every blocking condition is reported in order", func(t *testing.T) {
		in := base
		in.Amount = 100000
		in.MinimumMonthlySpend = 1
		in.Caps.EffectiveMonthlyLimit = 100
		in.Caps.EffectiveCategoryLimit = 50
		in.MonthlyCashbackUsed = 100
		in.CategoryCashbackUsed = 50
		res := Calculate(in)
		assert.True(t, res.Blocked)
		assert.Equal(t, []Warning{WarnMinSpendNotMet, WarnMonthlyCapReached, WarnCategoryCapReached}, res.Warnings)
	})

	t.Run("edge: category cap is binary not clamped", func(t *testing.T) {
		in := base
		in.Amount = 500000
		in.Caps.EffectiveCategoryLimit = 50000
		in.CategoryCashbackUsed = 49000
		res := Calculate(in)
		assert.False(t, res.Blocked)
		assert.Equal(t, 5000.0, res.Cashback)
	})

	t.Run("edge: zero limits mean unlimited", func(t *testing.T) {
		in := base
		in.Amount = 100
		in.MonthlyCashbackUsed = 1e9
		in.CategoryCashbackUsed = 1e9
		res := Calculate(in)
		assert.False(t, res.Blocked)
		assert.Equal(t, 1.0, res.Cashback)
	})
}

func TestCappedCashback_SecondaryOverride(t *testing.T) {
	rule := model.Rule{
		TransactionLimit:             10000,
		SecondaryTransactionCriteria: 1000000,
		SecondaryTransactionLimit:    5000,
	}

	t.Run("happy: secondary limit replaces primary", func(t *testing.T) {
		assert.Equal(t, 5000.0, CappedCashback(rule, 2000000, 0.01))
	})

	t.Run("edge: secondary limit may loosen the cap", func(t *testing.T) {
		r := rule
		r.SecondaryTransactionLimit = 50000
		assert.Equal(t, 20000.0, CappedCashback(r, 2000000, 0.01))
	})

	t.Run("edge: below criteria uses primary", func(t *testing.T) {
		assert.Equal(t, 9000.0, CappedCashback(rule, 900000, 0.01))
	})

	t.Run("edge: secondary limit of zero lifts the cap", func(t *testing.T) {
		r := rule
		r.SecondaryTransactionLimit = 0
		assert.Equal(t, 20000.0, CappedCashback(r, 2000000, 0.01))
	})
}

func TestCappedCashback_Monotonic(t *testing.T) {
	rule := model.Rule{TransactionLimit: 500}
	prev := 0.0
	for amt := 1000.0; amt <= 200000; amt += 1000 {
		got := CappedCashback(rule, amt, 0.01)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
	assert.Equal(t, 500.0, prev)
}
