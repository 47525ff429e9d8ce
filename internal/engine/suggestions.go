package engine

import (
	"math"
	"sort"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// MinimumSuggestionRate is the effective rate below which a rule is not
// worth surfacing as an opportunity.
const MinimumSuggestionRate = 0.02

type Suggestion struct {
	Category       string  `json:"category"`
	RuleID         string  `json:"rule_id"`
	RuleName       string  `json:"rule_name"`
	CardID         string  `json:"card_id"`
	CardName       string  `json:"card_name"`
	Month          string  `json:"month"`
	Rate           float64 `json:"rate"`
	Tier1Rate      float64 `json:"tier1_rate"`
	Tier2Rate      float64 `json:"tier2_rate,omitempty"`
	Tier2MinSpend  float64 `json:"tier2_min_spend"`
	CurrentSpend   float64 `json:"current_spend"`
	RemainingCap   float64 `json:"-"`
	SpendingNeeded float64 `json:"-"`

	MinimumMonthlySpend float64 `json:"minimum_monthly_spend"`
	DaysLeft            *int    `json:"days_left"`
	CycleStatus         string  `json:"cycle_status"`

	HasMetMinSpend      bool               `json:"has_met_min_spend"`
	HasBetterChallenger bool               `json:"has_better_challenger"`
	Challenger          *ChallengerDetails `json:"challenger_details"`
	IsBoosted           bool               `json:"is_boosted"`
	HasTier2            bool               `json:"has_tier2"`
}

// ChallengerDetails describes the higher-paying card a category would move
// to once its minimum monthly spend is reached.
type ChallengerDetails struct {
	CardName     string  `json:"card_name"`
	Rate         float64 `json:"rate"`
	MinSpend     float64 `json:"min_spend"`
	CurrentSpend float64 `json:"current_spend"`
}

type Suggestions struct {
	Top    *Suggestion  `json:"top"`
	Others []Suggestion `json:"others"`
}

// SuggestOptions.Month, when set, evaluates every card against that month
// instead of each card's live cashback month.
type SuggestOptions struct {
	Today time.Time
	Month string
}

// Suggest returns the best currently-available opportunity per spending
// category across all active rules on open cards.
func Suggest(snap *Snapshot, monthFor CashbackMonthFunc, opts SuggestOptions) Suggestions {
	out := Suggestions{Others: []Suggestion{}}
	if snap == nil {
		return out
	}

	groups := map[string][]Suggestion{}
	for _, rule := range snap.Rules {
		if rule.Status != model.RuleActive {
			continue
		}
		card, ok := snap.Card(rule.CardID)
		if !ok || card.Status == model.CardClosed {
			continue
		}

		month := opts.Month
		if month == "" {
			if monthFor == nil {
				continue
			}
			month = monthFor(card, opts.Today)
		}

		spend, _ := snap.MonthToDate(card.ID, month)
		used := snap.CategoryCashback(card.ID, month, rule.ID)
		caps := ResolveCaps(card, rule, spend)

		if caps.EffectiveRate < MinimumSuggestionRate {
			continue
		}
		remaining := RemainingCap(caps.EffectiveCategoryLimit, used)
		if remaining == 0 {
			continue
		}

		needed := math.Inf(1)
		if !Unlimited(remaining) {
			needed = SafeRatio(remaining, caps.EffectiveRate)
		}

		daysLeft, cycle := CycleCountdown(card, month, opts.Today)
		base := Suggestion{
			RuleID:         rule.ID,
			RuleName:       rule.RuleName,
			CardID:         card.ID,
			CardName:       card.Name,
			Month:          month,
			Rate:           caps.EffectiveRate,
			Tier1Rate:      rule.Rate,
			Tier2Rate:      rule.Tier2Rate,
			Tier2MinSpend:  card.Tier2MinSpend,
			CurrentSpend:   spend,
			RemainingCap:   remaining,
			SpendingNeeded: needed,
			HasMetMinSpend: card.MinimumMonthlySpend <= 0 || spend >= card.MinimumMonthlySpend,
			IsBoosted:      caps.IsTier2Active && tier2Improves(rule),
			HasTier2:       card.CashbackType == model.CashbackTwoTier && tier2Improves(rule),

			MinimumMonthlySpend: card.MinimumMonthlySpend,
			DaysLeft:            daysLeft,
			CycleStatus:         cycle,
		}

		categories := rule.Categories
		if len(categories) == 0 {
			categories = []string{rule.RuleName}
		}
		for _, cat := range categories {
			s := base
			s.Category = cat
			groups[cat] = append(groups[cat], s)
		}
	}

	picks := make([]Suggestion, 0, len(groups))
	for _, group := range groups {
		if pick, ok := pickForCategory(group); ok {
			picks = append(picks, pick)
		}
	}

	sort.SliceStable(picks, func(i, j int) bool {
		a, b := picks[i], picks[j]
		if a.HasMetMinSpend != b.HasMetMinSpend {
			return a.HasMetMinSpend
		}
		if a.Rate != b.Rate {
			return a.Rate > b.Rate
		}
		if a.RemainingCap != b.RemainingCap {
			return a.RemainingCap > b.RemainingCap
		}
		return a.Category < b.Category
	})

	if len(picks) == 0 {
		return out
	}
	top := picks[0]
	out.Top = &top
	out.Others = picks[1:]
	return out
}

func pickForCategory(group []Suggestion) (Suggestion, bool) {
	var met, unmet []Suggestion
	for _, s := range group {
		if s.HasMetMinSpend {
			met = append(met, s)
		} else {
			unmet = append(unmet, s)
		}
	}
	sort.SliceStable(met, func(i, j int) bool { return betterOpportunity(met[i], met[j]) })
	sort.SliceStable(unmet, func(i, j int) bool { return betterOpportunity(unmet[i], unmet[j]) })

	switch {
	case len(met) > 0:
		pick := met[0]
		if len(unmet) > 0 {
			u := unmet[0]
			pick.HasBetterChallenger = u.Rate > pick.Rate ||
				(u.Rate == pick.Rate && u.RemainingCap > pick.RemainingCap)
			if pick.HasBetterChallenger {
				pick.Challenger = &ChallengerDetails{
					CardName:     u.CardName,
					Rate:         u.Rate,
					MinSpend:     u.MinimumMonthlySpend,
					CurrentSpend: u.CurrentSpend,
				}
			}
		}
		return pick, true
	case len(unmet) > 0:
		return unmet[0], true
	default:
		return Suggestion{}, false
	}
}

func betterOpportunity(a, b Suggestion) bool {
	if a.Rate != b.Rate {
		return a.Rate > b.Rate
	}
	if a.RemainingCap != b.RemainingCap {
		return a.RemainingCap > b.RemainingCap
	}
	if a.CardID != b.CardID {
		return a.CardID < b.CardID
	}
	return a.RuleID < b.RuleID
}

func tier2Improves(rule model.Rule) bool {
	return rule.Tier2Rate > rule.Rate || rule.Tier2CategoryLimit > rule.CategoryLimit
}
