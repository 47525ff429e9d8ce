package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

func TestNewPaymentsResponse_NextUpcoming(t *testing.T) {
	in, mid := 4, 19
	statement := func(month string, days *int, amount float64) engine.Statement {
		return engine.Statement{
			MonthlySummary: model.MonthlySummary{ID: month, Month: month, StatementAmount: amount},
			DaysLeft:       days,
		}
	}

	t.Run("happy: soonest upcoming after main", func(t *testing.T) {
		card := model.Card{ID: "c1"}
		main := statement("202403", &in, 200)
		cs := engine.NewCardStatements(card, engine.Partition{
			Main:     &main,
			Upcoming: []engine.Statement{statement("202404", &mid, 50)},
			Past:     []engine.Statement{},
		})
		resp := NewPaymentsResponse(engine.AccountBuckets{Upcoming: []engine.CardStatements{cs}})

		require.Len(t, resp.Upcoming, 1)
		acct := resp.Upcoming[0]
		require.NotNil(t, acct.NextUpcoming)
		assert.Equal(t, "202404", acct.NextUpcoming.Month)
		assert.Equal(t, 19, *acct.NextUpcoming.DaysLeft)
		assert.Equal(t, "202403", acct.Main.Month)
	})

	t.Run("edge: nothing upcoming", func(t *testing.T) {
		main := statement("202403", &in, 200)
		cs := engine.NewCardStatements(model.Card{ID: "c2"}, engine.Partition{
			Main:     &main,
			Upcoming: []engine.Statement{},
			Past:     []engine.Statement{},
		})
		resp := NewPaymentsResponse(engine.AccountBuckets{Upcoming: []engine.CardStatements{cs}})

		require.Len(t, resp.Upcoming, 1)
		assert.Nil(t, resp.Upcoming[0].NextUpcoming)
	})
}
