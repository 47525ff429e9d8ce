package engine

import (
	"math"
	"sort"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type TierPayout struct {
	Amount  float64     `json:"amount"`
	Paid    float64     `json:"paid"`
	Type    PayoutType  `json:"type"`
	DueDate *time.Time  `json:"due_date,omitempty"`
	Status  PayoutState `json:"status"`
}

// LedgerItem is the payout view of one monthly summary.
type LedgerItem struct {
	SummaryID      string     `json:"summary_id"`
	CardID         string     `json:"card_id"`
	CardName       string     `json:"card_name"`
	Month          string     `json:"month"`
	Total          float64    `json:"total"`
	AmountRedeemed float64    `json:"amount_redeemed"`
	RemainingDue   float64    `json:"remaining_due"`
	Tier1          TierPayout `json:"tier1"`
	Tier2          TierPayout `json:"tier2"`
	IsPoints       bool       `json:"is_points"`
	Notes          string     `json:"notes,omitempty"`
}

func (i LedgerItem) Overdue() bool {
	return i.RemainingDue > 0 && (i.Tier1.Status == PayoutOverdue || i.Tier2.Status == PayoutOverdue)
}

// PointsAccount groups a points-paying card's ledger items oldest first.
type PointsAccount struct {
	CardID      string       `json:"card_id"`
	CardName    string       `json:"card_name"`
	Bank        string       `json:"bank"`
	TotalPoints float64      `json:"total_points"`
	Items       []LedgerItem `json:"items"`
}

// Periods converts the account's outstanding items into allocator input.
func (a PointsAccount) Periods() []Period {
	out := make([]Period, 0, len(a.Items))
	for _, it := range a.Items {
		if it.RemainingDue <= 0 {
			continue
		}
		out = append(out, Period{
			ID:              it.SummaryID,
			Month:           it.Month,
			Total:           it.Total,
			AlreadyRedeemed: it.AmountRedeemed,
			Notes:           it.Notes,
		})
	}
	return out
}

type Ledger struct {
	Items  []LedgerItem    `json:"items"`
	Points []PointsAccount `json:"points"`
}

// BuildLedger splits each summary's cashback into tiers and attributes
// redeemed amounts to tier 1 before tier 2. Items are newest month first;
// points items inside each account are oldest first.
func BuildLedger(cards []model.Card, summaries []model.MonthlySummary, today time.Time) Ledger {
	loc := today.Location()
	byID := make(map[string]model.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	ledger := Ledger{Items: []LedgerItem{}, Points: []PointsAccount{}}
	points := map[string]*PointsAccount{}
	var order []string

	for _, s := range summaries {
		card, ok := byID[s.CardID]
		if !ok {
			continue
		}
		total := s.Total()
		split := SplitCashback(total, card.OverallMonthlyLimit)
		redeemed := s.AmountRedeemed
		t1Paid := math.Min(redeemed, split.Tier1)
		t2Paid := math.Max(0, redeemed-split.Tier1)

		item := LedgerItem{
			SummaryID:      s.ID,
			CardID:         card.ID,
			CardName:       card.Name,
			Month:          model.NormalizeMonth(s.Month),
			Total:          total,
			AmountRedeemed: redeemed,
			RemainingDue:   math.Max(0, total-redeemed),
			Tier1:          tierPayout(split.Tier1, t1Paid, Tier1Payout(card), s.Month, card, today, loc),
			Tier2:          tierPayout(split.Tier2, t2Paid, Tier2Payout(card), s.Month, card, today, loc),
			Notes:          s.Notes,
		}
		item.IsPoints = item.Tier1.Type == PayoutPoints
		ledger.Items = append(ledger.Items, item)

		if !item.IsPoints {
			continue
		}
		acc, ok := points[card.ID]
		if !ok {
			acc = &PointsAccount{CardID: card.ID, CardName: card.Name, Bank: card.Bank, Items: []LedgerItem{}}
			points[card.ID] = acc
			order = append(order, card.ID)
		}
		acc.TotalPoints += item.RemainingDue
		acc.Items = append(acc.Items, item)
	}

	sort.SliceStable(ledger.Items, func(i, j int) bool {
		if ledger.Items[i].Month != ledger.Items[j].Month {
			return ledger.Items[i].Month > ledger.Items[j].Month
		}
		return ledger.Items[i].CardName < ledger.Items[j].CardName
	})
	for _, id := range order {
		acc := points[id]
		sort.SliceStable(acc.Items, func(i, j int) bool { return acc.Items[i].Month < acc.Items[j].Month })
		ledger.Points = append(ledger.Points, *acc)
	}
	return ledger
}

func tierPayout(amount, paid float64, payout PayoutType, month string, card model.Card, today time.Time, loc *time.Location) TierPayout {
	tp := TierPayout{Amount: amount, Paid: paid, Type: payout}
	var dueDate time.Time
	if d, ok := PayoutDate(month, payout, card.StatementDay, card.PaymentDueDay, loc); ok {
		dueDate = d
		tp.DueDate = &d
	}
	tp.Status = PayoutStatus(amount, paid, dueDate, today)
	return tp
}
