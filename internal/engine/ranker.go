package engine

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

var mccPattern = regexp.MustCompile(`^\d{4}$`)

func ValidMCC(code string) bool {
	return mccPattern.MatchString(code)
}

// TxContext describes the purchase being ranked. CardID is the caller's
// preferred card; it marks candidates but never filters them.
type TxContext struct {
	MCCCode string
	Amount  float64
	Date    time.Time
	CardID  string
}

type RankOptions struct {
	// IncludeDefaultRules lets broad rules (IsDefault, or no MCC list) match
	// any code not in their exclusion list.
	IncludeDefaultRules bool
}

type Candidate struct {
	Rule  model.Rule `json:"rule"`
	Card  model.Card `json:"card"`
	Month string     `json:"month"`
	Caps  Caps       `json:"caps"`

	CalculatedCashback        float64   `json:"calculated_cashback"`
	HasAmount                 bool      `json:"has_amount"`
	IsMinSpendMet             bool      `json:"is_min_spend_met"`
	IsCategoryCapReached      bool      `json:"is_category_cap_reached"`
	IsMonthlyCapReached       bool      `json:"is_monthly_cap_reached"`
	RemainingCategoryCashback float64   `json:"-"`
	Warnings                  []Warning `json:"warnings"`
	Blocked                   bool      `json:"blocked"`
	Preferred                 bool      `json:"preferred"`
}

func (c Candidate) Capped() bool {
	return c.IsMonthlyCapReached || c.IsCategoryCapReached
}

// RankRules lists every eligible card/rule combination for a transaction,
// best first. Each card is evaluated against its own cashback month for
// the transaction date.
func RankRules(tx TxContext, snap *Snapshot, monthFor CashbackMonthFunc, opts RankOptions) []Candidate {
	if !ValidMCC(tx.MCCCode) || snap == nil || monthFor == nil {
		return []Candidate{}
	}

	hasAmount := ValidAmount(tx.Amount)
	candidates := []Candidate{}

	for _, rule := range snap.Rules {
		if !matchesMCC(rule, tx.MCCCode, opts.IncludeDefaultRules) {
			continue
		}
		card, ok := snap.Card(rule.CardID)
		if !ok || card.Status != model.CardActive {
			continue
		}

		month := monthFor(card, tx.Date)
		spend, monthlyUsed := snap.MonthToDate(card.ID, month)
		categoryUsed := snap.CategoryCashback(card.ID, month, rule.ID)

		caps := ResolveCaps(card, rule, spend)
		res := Calculate(CalculationInput{
			Caps:                 caps,
			Rule:                 rule,
			Amount:               tx.Amount,
			CategoryCashbackUsed: categoryUsed,
			MonthlyCashbackUsed:  monthlyUsed,
			MonthToDateSpend:     spend,
			MinimumMonthlySpend:  card.MinimumMonthlySpend,
		})

		cand := Candidate{
			Rule:                      rule,
			Card:                      card,
			Month:                     month,
			Caps:                      caps,
			HasAmount:                 hasAmount,
			IsMinSpendMet:             res.MinSpendMet,
			IsCategoryCapReached:      res.CategoryCapReached,
			IsMonthlyCapReached:       res.MonthlyCapReached,
			RemainingCategoryCashback: RemainingCap(caps.EffectiveCategoryLimit, categoryUsed),
			Warnings:                  res.Warnings,
			Blocked:                   res.Blocked,
			Preferred:                 tx.CardID != "" && tx.CardID == card.ID,
		}
		// Ranking shows what the rule would pay; blocking is surfaced via the flags.
		if hasAmount {
			cand.CalculatedCashback = CappedCashback(rule, tx.Amount, caps.EffectiveRate)
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankLess(candidates[i], candidates[j], hasAmount)
	})
	return candidates
}

func rankLess(a, b Candidate, hasAmount bool) bool {
	if a.Capped() != b.Capped() {
		return !a.Capped()
	}
	if a.IsMinSpendMet != b.IsMinSpendMet {
		return a.IsMinSpendMet
	}
	if hasAmount && a.CalculatedCashback != b.CalculatedCashback {
		return a.CalculatedCashback > b.CalculatedCashback
	}
	if a.Rule.Rate != b.Rule.Rate {
		return a.Rule.Rate > b.Rule.Rate
	}
	if a.Card.ID != b.Card.ID {
		return a.Card.ID < b.Card.ID
	}
	return a.Rule.ID < b.Rule.ID
}

func matchesMCC(rule model.Rule, code string, includeDefault bool) bool {
	for _, c := range rule.MCCCodes {
		if strings.TrimSpace(c) == code {
			return true
		}
	}
	if !includeDefault {
		return false
	}
	if !rule.IsDefault && len(rule.MCCCodes) > 0 {
		return false
	}
	for _, c := range rule.ExcludedMCCCodes {
		if strings.TrimSpace(c) == code {
			return false
		}
	}
	return true
}
