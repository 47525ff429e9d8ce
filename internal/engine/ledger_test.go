package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

func TestBuildLedger(t *testing.T) {
	cards := []model.Card{
		{ID: "cash", Name: "Cash", StatementDay: 20, PaymentDueDay: 15, OverallMonthlyLimit: 300},
		{ID: "pts", Name: "Points", Bank: "Bank P", StatementDay: 1, Tier1PaymentType: "Points"},
	}
	summaries := []model.MonthlySummary{
		{ID: "s1", CardID: "cash", Month: "202310", ActualCashback: 450, Adjustment: 50, AmountRedeemed: 350},
		{ID: "p2", CardID: "pts", Month: "202402", ActualCashback: 80},
		{ID: "p1", CardID: "pts", Month: "202401", ActualCashback: 100, AmountRedeemed: 40},
		{ID: "orphan", CardID: "missing", Month: "202401", ActualCashback: 10},
	}
	today := date(2024, 1, 10)

	l := BuildLedger(cards, summaries, today)
	require.Len(t, l.Items, 3)

	t.Run("happy: newest month first", func(t *testing.T) {
		assert.Equal(t, "202402", l.Items[0].Month)
		assert.Equal(t, "202310", l.Items[2].Month)
	})

	t.Run("happy: redeemed attributed to tier 1 first", func(t *testing.T) {
		item := l.Items[2]
		assert.Equal(t, 500.0, item.Total)
		assert.Equal(t, 150.0, item.RemainingDue)
		assert.Equal(t, 300.0, item.Tier1.Amount)
		assert.Equal(t, 300.0, item.Tier1.Paid)
		assert.Equal(t, PayoutPaid, item.Tier1.Status)
		assert.Equal(t, 200.0, item.Tier2.Amount)
		assert.Equal(t, 50.0, item.Tier2.Paid)
		assert.Equal(t, PayoutPartial, item.Tier2.Status)
		require.NotNil(t, item.Tier1.DueDate)
		assert.Equal(t, date(2023, 12, 15), *item.Tier1.DueDate)
		require.NotNil(t, item.Tier2.DueDate)
		assert.Equal(t, date(2024, 1, 15), *item.Tier2.DueDate)
		assert.False(t, item.IsPoints)
	})

	t.Run("happy: points grouped oldest first", func(t *testing.T) {
		require.Len(t, l.Points, 1)
		acc := l.Points[0]
		assert.Equal(t, "Bank P", acc.Bank)
		assert.Equal(t, 140.0, acc.TotalPoints)
		require.Len(t, acc.Items, 2)
		assert.Equal(t, "202401", acc.Items[0].Month)
		assert.Nil(t, acc.Items[0].Tier1.DueDate)

		periods := acc.Periods()
		require.Len(t, periods, 2)
		assert.Equal(t, "p1", periods[0].ID)
		assert.Equal(t, 40.0, periods[0].AlreadyRedeemed)

		alloc := AllocateRedemption(100, periods, "")
		require.Len(t, alloc.Deltas, 2)
		assert.Equal(t, 100.0, alloc.Deltas[0].NewAmountRedeemed)
		assert.Equal(t, 40.0, alloc.Deltas[1].NewAmountRedeemed)
	})
}

func TestLedgerItem_Overdue(t *testing.T) {
	item := LedgerItem{RemainingDue: 10, Tier1: TierPayout{Status: PayoutOverdue}}
	assert.True(t, item.Overdue())
	item.RemainingDue = 0
	assert.False(t, item.Overdue())
}

func TestCardCapProgress(t *testing.T) {
	cards := []model.Card{
		{ID: "capped", Name: "Capped", Status: model.CardActive, OverallMonthlyLimit: 100},
		{ID: "unmet", Name: "Unmet", Status: model.CardActive, MinimumMonthlySpend: 1000, OverallMonthlyLimit: 500},
		{ID: "tier", Name: "Tier", Status: model.CardActive, CashbackType: model.CashbackTwoTier, Tier2MinSpend: 400, OverallMonthlyLimit: 100, Tier2Limit: 400},
		{ID: "plain", Name: "Plain", Status: model.CardActive, OverallMonthlyLimit: 1000},
		{ID: "bare", Name: "Bare", Status: model.CardActive},
		{ID: "closed", Name: "Closed", Status: model.CardClosed, OverallMonthlyLimit: 100},
	}
	rules := []model.Rule{
		{ID: "r1", CardID: "plain", RuleName: "Dining", CategoryLimit: 200, Status: model.RuleActive},
		{ID: "r2", CardID: "plain", RuleName: "Any", Status: model.RuleActive},
	}
	monthly := []model.MonthlySummary{
		{CardID: "capped", Month: "202403", Cashback: 120},
		{CardID: "unmet", Month: "202403", Spend: 250, Cashback: 10},
		{CardID: "tier", Month: "202403", Spend: 400, Cashback: 100},
		{CardID: "plain", Month: "202403", Spend: 50, Cashback: 700},
	}
	category := []model.CategorySummary{{CardID: "plain", Month: "202403", RuleID: "r1", Cashback: 50}}
	snap := NewSnapshot(cards, rules, monthly, category)

	got := CardCapProgress(snap, calendarMonth, date(2024, 3, 5), "")
	require.Len(t, got, 4)

	ids := []string{got[0].CardID, got[1].CardID, got[2].CardID, got[3].CardID}
	assert.Equal(t, []string{"tier", "plain", "unmet", "capped"}, ids)

	tier := got[0]
	assert.True(t, tier.IsTier2Met)
	assert.Equal(t, 400.0, tier.MonthlyLimit)
	assert.Equal(t, 25, tier.UsedCapPct)
	assert.Equal(t, 100, tier.Tier2SpendPct)
	assert.Equal(t, DotInProgress, tier.Dot)

	plain := got[1]
	require.Len(t, plain.Categories, 1)
	assert.Equal(t, 25, plain.Categories[0].UsedPct)
	assert.Equal(t, 150.0, plain.Categories[0].Remaining)

	unmet := got[2]
	assert.Equal(t, 25, unmet.MinSpendPct)
	assert.Equal(t, DotMinSpend, unmet.Dot)

	capped := got[3]
	assert.Equal(t, 100, capped.UsedCapPct)
	assert.True(t, capped.IsCapReached)
	assert.Equal(t, DotCapped, capped.Dot)
	assert.Equal(t, 100, capped.MinSpendPct)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(10, 0))
	assert.Equal(t, 100, Percent(300, 100))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 0, Percent(-5, 100))
}
