package engine

import (
	"math"
	"sort"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type DotStatus string

const (
	DotCapped     DotStatus = "green"
	DotMinSpend   DotStatus = "yellow"
	DotInProgress DotStatus = "blue"
	DotIdle       DotStatus = "gray"
)

type CategoryProgress struct {
	RuleID          string  `json:"rule_id"`
	RuleName        string  `json:"rule_name"`
	CurrentCashback float64 `json:"current_cashback"`
	Limit           float64 `json:"limit"`
	UsedPct         int     `json:"used_pct"`
	Remaining       float64 `json:"-"`
	IsBoosted       bool    `json:"is_boosted"`
}

type CapProgress struct {
	CardID          string             `json:"card_id"`
	CardName        string             `json:"card_name"`
	Month           string             `json:"month"`
	CurrentCashback float64            `json:"current_cashback"`
	CurrentSpend    float64            `json:"current_spend"`
	MonthlyLimit    float64            `json:"monthly_limit"`
	UsedCapPct      int                `json:"used_cap_pct"`
	IsCapReached    bool               `json:"is_cap_reached"`
	MinSpend        float64            `json:"min_spend"`
	MinSpendMet     bool               `json:"min_spend_met"`
	MinSpendPct     int                `json:"min_spend_pct"`
	IsTier2Met      bool               `json:"is_tier2_met"`
	Tier2SpendPct   int                `json:"tier2_spend_pct"`
	Dot             DotStatus          `json:"dot_status"`
	Categories      []CategoryProgress `json:"categories"`

	twoTier bool
}

// Percent is round(part/whole*100) clamped to [0,100]; a zero whole yields 0.
func Percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	p := math.Round(SafeRatio(part, whole) * 100)
	return int(math.Max(0, math.Min(100, p)))
}

func tracksProgress(card model.Card) bool {
	return card.OverallMonthlyLimit > 0 || card.MinimumMonthlySpend > 0 ||
		(card.CashbackType == model.CashbackTwoTier && (card.Tier2Limit > 0 || card.Tier2MinSpend > 0))
}

// CardCapProgress reports monthly cap and minimum-spend progress for every
// open card that has a limit or spend threshold configured. month overrides
// the per-card live month when set.
func CardCapProgress(snap *Snapshot, monthFor CashbackMonthFunc, today time.Time, month string) []CapProgress {
	out := []CapProgress{}
	if snap == nil {
		return out
	}

	for _, card := range snap.Cards {
		if card.Status == model.CardClosed || !tracksProgress(card) {
			continue
		}
		m := month
		if m == "" {
			if monthFor == nil {
				continue
			}
			m = monthFor(card, today)
		}

		spend, cashback := snap.MonthToDate(card.ID, m)
		tier2 := IsTier2Active(card, spend)
		limit := card.OverallMonthlyLimit
		if tier2 && card.Tier2Limit > 0 {
			limit = card.Tier2Limit
		}

		p := CapProgress{
			CardID:          card.ID,
			CardName:        card.Name,
			Month:           m,
			CurrentCashback: cashback,
			CurrentSpend:    spend,
			MonthlyLimit:    limit,
			UsedCapPct:      Percent(cashback, limit),
			MinSpend:        card.MinimumMonthlySpend,
			MinSpendMet:     card.MinimumMonthlySpend <= 0 || spend >= card.MinimumMonthlySpend,
			MinSpendPct:     100,
			IsTier2Met:      tier2,
			Tier2SpendPct:   Percent(spend, card.Tier2MinSpend),
			Categories:      categoryProgress(snap, card, m, spend),
			twoTier:         card.CashbackType == model.CashbackTwoTier,
		}
		if card.MinimumMonthlySpend > 0 {
			p.MinSpendPct = Percent(spend, card.MinimumMonthlySpend)
		}
		p.IsCapReached = p.UsedCapPct >= 100

		switch {
		case p.IsCapReached:
			p.Dot = DotCapped
		case !p.MinSpendMet:
			p.Dot = DotMinSpend
		case card.MinimumMonthlySpend > 0 || limit > 0:
			p.Dot = DotInProgress
		default:
			p.Dot = DotIdle
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCapReached != b.IsCapReached {
			return !a.IsCapReached
		}
		if a.MinSpendMet != b.MinSpendMet {
			return a.MinSpendMet
		}
		at2, bt2 := a.twoTier && a.IsTier2Met, b.twoTier && b.IsTier2Met
		if at2 != bt2 {
			return at2
		}
		if a.UsedCapPct != b.UsedCapPct {
			return a.UsedCapPct > b.UsedCapPct
		}
		return a.CardID < b.CardID
	})
	return out
}

func categoryProgress(snap *Snapshot, card model.Card, month string, spend float64) []CategoryProgress {
	out := []CategoryProgress{}
	for _, rule := range snap.Rules {
		if rule.CardID != card.ID || rule.Status != model.RuleActive {
			continue
		}
		used := snap.CategoryCashback(card.ID, month, rule.ID)
		caps := ResolveCaps(card, rule, spend)
		if caps.EffectiveCategoryLimit <= 0 && used == 0 {
			continue
		}
		out = append(out, CategoryProgress{
			RuleID:          rule.ID,
			RuleName:        rule.RuleName,
			CurrentCashback: used,
			Limit:           caps.EffectiveCategoryLimit,
			UsedPct:         Percent(used, caps.EffectiveCategoryLimit),
			Remaining:       RemainingCap(caps.EffectiveCategoryLimit, used),
			IsBoosted:       caps.IsTier2Active && tier2Improves(rule),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UsedPct != out[j].UsedPct {
			return out[i].UsedPct > out[j].UsedPct
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}
