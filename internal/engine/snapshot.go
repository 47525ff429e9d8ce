// Package engine resolves cashback rates and caps, ranks card/rule
// combinations, derives statement schedules and allocates redemptions.
//
// Everything here is a pure function over immutable snapshots: no I/O, no
// logging, no shared state. Callers load records, call in, and persist the
// returned values themselves.
package engine

import (
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// CashbackMonthFunc maps a calendar date to the cashback month bucket
// ("YYYYMM") of the given card's cycle. It is supplied by the caller.
type CashbackMonthFunc func(card model.Card, date time.Time) string

// Snapshot indexes one consistent read of the four record sets.
type Snapshot struct {
	Cards    []model.Card
	Rules    []model.Rule
	Monthly  []model.MonthlySummary
	Category []model.CategorySummary

	cards    map[string]model.Card
	monthly  map[model.SummaryKey]model.MonthlySummary
	category map[model.CategoryKey]model.CategorySummary
}

func NewSnapshot(cards []model.Card, rules []model.Rule, monthly []model.MonthlySummary, category []model.CategorySummary) *Snapshot {
	s := &Snapshot{
		Cards:    cards,
		Rules:    rules,
		Monthly:  monthly,
		Category: category,
		cards:    make(map[string]model.Card, len(cards)),
		monthly:  make(map[model.SummaryKey]model.MonthlySummary, len(monthly)),
		category: make(map[model.CategoryKey]model.CategorySummary, len(category)),
	}

	// first record wins on duplicate keys
	for _, c := range cards {
		if _, ok := s.cards[c.ID]; !ok {
			s.cards[c.ID] = c
		}
	}
	for _, m := range monthly {
		k := model.SummaryKey{CardID: m.CardID, Month: model.NormalizeMonth(m.Month)}
		if _, ok := s.monthly[k]; !ok {
			s.monthly[k] = m
		}
	}
	for _, c := range category {
		k := model.CategoryKey{CardID: c.CardID, Month: model.NormalizeMonth(c.Month), RuleID: c.RuleID}
		if _, ok := s.category[k]; !ok {
			s.category[k] = c
		}
	}
	return s
}

func (s *Snapshot) Card(id string) (model.Card, bool) {
	c, ok := s.cards[id]
	return c, ok
}

func (s *Snapshot) MonthlySummary(cardID, month string) (model.MonthlySummary, bool) {
	m, ok := s.monthly[model.SummaryKey{CardID: cardID, Month: model.NormalizeMonth(month)}]
	return m, ok
}

// MonthToDate returns spend and cap-counted cashback for a card's month,
// zero when no summary exists yet.
func (s *Snapshot) MonthToDate(cardID, month string) (spend, cashback float64) {
	m, ok := s.MonthlySummary(cardID, month)
	if !ok {
		return 0, 0
	}
	return m.Spend, m.Cashback
}

func (s *Snapshot) CategoryCashback(cardID, month, ruleID string) float64 {
	c, ok := s.category[model.CategoryKey{CardID: cardID, Month: model.NormalizeMonth(month), RuleID: ruleID}]
	if !ok {
		return 0
	}
	return c.Cashback
}

// SummariesForCard returns the card's monthly summaries in input order.
func (s *Snapshot) SummariesForCard(cardID string) []model.MonthlySummary {
	var out []model.MonthlySummary
	for _, m := range s.Monthly {
		if m.CardID == cardID {
			out = append(out, m)
		}
	}
	return out
}
