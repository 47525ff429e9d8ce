package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

func months(card model.Card, ms ...string) []model.MonthlySummary {
	out := make([]model.MonthlySummary, 0, len(ms))
	for _, m := range ms {
		out = append(out, model.MonthlySummary{ID: card.ID + "-" + m, CardID: card.ID, Month: m})
	}
	return out
}

func TestBuildStatements_CreditsLandOnLaterStatement(t *testing.T) {
	card := model.Card{ID: "c1", StatementDay: 1, PaymentDueDay: 15, Status: model.CardActive}
	summaries := []model.MonthlySummary{
		{ID: "jul", CardID: "c1", Month: "202307", Spend: 500, ActualCashback: 100},
		{ID: "aug", CardID: "c1", Month: "202308", Spend: 1000},
	}

	stmts := BuildStatements(card, summaries, date(2023, 8, 10))
	require.Len(t, stmts, 2)

	aug := stmts[1]
	assert.Equal(t, "202308", aug.Month)
	assert.Equal(t, 100.0, aug.Credits)
	assert.Equal(t, 900.0, aug.EstimatedBalance())
	assert.Equal(t, 900.0, aug.EffectiveBalance())
	assert.Equal(t, 500.0, stmts[0].EffectiveBalance())

	t.Run("happy: confirmed statement amount wins", func(t *testing.T) {
		s := aug
		s.StatementAmount = 950
		s.PaidAmount = 200
		assert.Equal(t, 950.0, s.EffectiveBalance())
		assert.Equal(t, 750.0, s.Remaining())
		assert.True(t, s.Unpaid())
	})

	t.Run("happy: tier 2 credits two months later", func(t *testing.T) {
		c := card
		c.OverallMonthlyLimit = 60
		credits := StatementCredits(c, summaries)
		assert.Equal(t, 60.0, credits["202308"])
		assert.Equal(t, 40.0, credits["202309"])
	})

	t.Run("edge: points never credit a statement", func(t *testing.T) {
		c := card
		c.Tier1PaymentType = "Points"
		assert.Empty(t, StatementCredits(c, summaries))
	})

	t.Run("edge: other cards and bad months are skipped", func(t *testing.T) {
		mixed := append([]model.MonthlySummary{
			{CardID: "other", Month: "202308"},
			{CardID: "c1", Month: "bogus"},
		}, summaries...)
		assert.Len(t, BuildStatements(card, mixed, date(2023, 8, 10)), 2)
	})
}

func TestPartitionStatements(t *testing.T) {
	// statement on the 20th, due on the 15th of the following month
	rolling := model.Card{ID: "roll", StatementDay: 20, PaymentDueDay: 15}

	t.Run("happy: active window selects main", func(t *testing.T) {
		stmts := BuildStatements(rolling, months(rolling, "202401", "202402", "202403"), date(2024, 3, 1))
		p := PartitionStatements(stmts, date(2024, 3, 1))

		require.NotNil(t, p.Main)
		assert.Equal(t, "202402", p.Main.Month)
		require.Len(t, p.Upcoming, 1)
		assert.Equal(t, "202403", p.Upcoming[0].Month)
		require.Len(t, p.Past, 1)
		assert.Equal(t, "202401", p.Past[0].Month)
	})

	t.Run("edge: window bounds are inclusive", func(t *testing.T) {
		stmts := BuildStatements(rolling, months(rolling, "202402"), date(2024, 3, 15))
		p := PartitionStatements(stmts, date(2024, 3, 15))
		require.NotNil(t, p.Main)
		assert.True(t, p.Main.InWindow(date(2024, 2, 20)))
		assert.True(t, p.Main.InWindow(date(2024, 3, 15)))
		assert.False(t, p.Main.InWindow(date(2024, 3, 16)))
	})

	// statement on the 1st, due on the 5th of the same month
	short := model.Card{ID: "short", StatementDay: 1, PaymentDueDay: 5}
	today := date(2024, 2, 20)

	t.Run("happy: fallback prefers first unpaid past statement", func(t *testing.T) {
		summaries := months(short, "202401", "202402", "202403")
		summaries[0].StatementAmount = 100
		stmts := BuildStatements(short, summaries, today)

		p := PartitionStatements(stmts, today)
		require.NotNil(t, p.Main)
		assert.Equal(t, "202401", p.Main.Month)
		assert.Len(t, p.Upcoming, 1)
		require.Len(t, p.Past, 1)
		assert.Equal(t, "202402", p.Past[0].Month)
	})

	t.Run("happy: fallback prefers unpaid upcoming over unpaid past", func(t *testing.T) {
		summaries := months(short, "202401", "202402", "202403")
		summaries[0].StatementAmount = 100
		summaries[2].StatementAmount = 300
		stmts := BuildStatements(short, summaries, today)

		p := PartitionStatements(stmts, today)
		require.NotNil(t, p.Main)
		assert.Equal(t, "202403", p.Main.Month)
		assert.Empty(t, p.Upcoming)
	})

	t.Run("happy: all paid picks earliest upcoming", func(t *testing.T) {
		stmts := BuildStatements(short, months(short, "202401", "202402", "202403", "202404"), today)
		p := PartitionStatements(stmts, today)
		require.NotNil(t, p.Main)
		assert.Equal(t, "202403", p.Main.Month)
		require.Len(t, p.Upcoming, 1)
		assert.Equal(t, "202404", p.Upcoming[0].Month)
	})

	t.Run("happy: all paid and past picks most recent", func(t *testing.T) {
		stmts := BuildStatements(short, months(short, "202311", "202401", "202312"), today)
		p := PartitionStatements(stmts, today)
		require.NotNil(t, p.Main)
		assert.Equal(t, "202401", p.Main.Month)
		require.Len(t, p.Past, 2)
		assert.Equal(t, "202312", p.Past[0].Month)
		assert.Equal(t, "202311", p.Past[1].Month)
	})

	t.Run("edge: no statements", func(t *testing.T) {
		p := PartitionStatements(nil, today)
		assert.Nil(t, p.Main)
		assert.NotNil(t, p.Upcoming)
		assert.NotNil(t, p.Past)
	})
}

func TestPartitionStatements_ExactlyOneMain(t *testing.T) {
	cards := []model.Card{
		{ID: "a", StatementDay: 20, PaymentDueDay: 15},
		{ID: "b", StatementDay: 1, PaymentDueDay: 25},
		{ID: "c", StatementDay: 28, PaymentDueDay: 28},
	}
	ms := []string{"202401", "202402", "202403", "202404", "202405", "202406"}

	for _, card := range cards {
		for day := date(2023, 12, 1); day.Before(date(2024, 8, 1)); day = day.AddDate(0, 0, 1) {
			stmts := BuildStatements(card, months(card, ms...), day)
			p := PartitionStatements(stmts, day)
			require.NotNil(t, p.Main, "card %s on %s", card.ID, day.Format(time.DateOnly))
			assert.Equal(t, len(stmts)-1, len(p.Upcoming)+len(p.Past))
		}
	}
}

func account(id string, status model.CardStatus, main *Statement) CardStatements {
	return CardStatements{Card: model.Card{ID: id, Status: status}, Partition: Partition{Main: main}}
}

func TestBucketAccounts(t *testing.T) {
	five := 5
	upcoming := &Statement{MonthlySummary: model.MonthlySummary{Spend: 100}, DaysLeft: &five}
	overdue := &Statement{MonthlySummary: model.MonthlySummary{StatementAmount: 300, PaidAmount: 100}}
	settled := &Statement{MonthlySummary: model.MonthlySummary{StatementAmount: 300, PaidAmount: 300}, DaysLeft: &five}

	b := BucketAccounts([]CardStatements{
		account("up", model.CardActive, upcoming),
		account("due", model.CardActive, overdue),
		account("done", model.CardFrozen, settled),
		account("gone", model.CardClosed, overdue),
		account("empty", model.CardActive, nil),
	})

	require.Len(t, b.Upcoming, 1)
	assert.Equal(t, "up", b.Upcoming[0].Card.ID)
	require.Len(t, b.PastDue, 1)
	assert.Equal(t, "due", b.PastDue[0].Card.ID)
	require.Len(t, b.Completed, 1)
	assert.Equal(t, "done", b.Completed[0].Card.ID)
	require.Len(t, b.Closed, 1)
	assert.Equal(t, "gone", b.Closed[0].Card.ID)
}

func TestSortAccounts(t *testing.T) {
	two, nine := 2, 9
	accounts := []CardStatements{
		account("old", model.CardActive, &Statement{PaymentDate: date(2024, 1, 5)}),
		account("late", model.CardActive, &Statement{DaysLeft: &nine}),
		account("none", model.CardActive, nil),
		account("recent", model.CardActive, &Statement{PaymentDate: date(2024, 2, 5)}),
		account("soon", model.CardActive, &Statement{DaysLeft: &two}),
	}
	SortAccounts(accounts)

	var ids []string
	for _, a := range accounts {
		ids = append(ids, a.Card.ID)
	}
	assert.Equal(t, []string{"soon", "late", "recent", "old", "none"}, ids)
}

func TestNewCardStatements_PastDue(t *testing.T) {
	p := Partition{Past: []Statement{
		{MonthlySummary: model.MonthlySummary{Month: "202401", StatementAmount: 100, PaidAmount: 100}},
		{MonthlySummary: model.MonthlySummary{Month: "202312", StatementAmount: 100, PaidAmount: 20}},
	}}
	cs := NewCardStatements(model.Card{ID: "x"}, p)
	require.Len(t, cs.PastDue, 1)
	assert.Equal(t, "202312", cs.PastDue[0].Month)
	assert.Nil(t, cs.NextUpcoming())
}
