package model

import (
	"time"
)

type CardStatus string

const (
	CardActive CardStatus = "Active"
	CardFrozen CardStatus = "Frozen"
	CardClosed CardStatus = "Closed"
)

type RuleStatus string

const (
	RuleActive   RuleStatus = "Active"
	RuleInactive RuleStatus = "Inactive"
)

type CashbackType string

const (
	CashbackSingle  CashbackType = "Single"
	CashbackTwoTier CashbackType = "2 Tier"
)

type Card struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Bank                string       `json:"bank"`
	Status              CardStatus   `json:"status"`
	StatementDay        int          `json:"statement_day"`
	PaymentDueDay       int          `json:"payment_due_day"`
	MinimumMonthlySpend float64      `json:"minimum_monthly_spend"`
	OverallMonthlyLimit float64      `json:"overall_monthly_limit"`
	CashbackType        CashbackType `json:"cashback_type"`
	Tier2MinSpend       float64      `json:"tier2_min_spend"`
	Tier2Limit          float64      `json:"tier2_limit"`
	Tier1PaymentType    string       `json:"tier1_payment_type,omitempty"`
	Tier2PaymentType    string       `json:"tier2_payment_type,omitempty"`

	UseStatementMonthForPayments bool `json:"use_statement_month_for_payments"`

	CreatedAt time.Time `json:"created_at"`
}

type Rule struct {
	ID                           string     `json:"id"`
	CardID                       string     `json:"card_id"`
	RuleName                     string     `json:"rule_name"`
	Rate                         float64    `json:"rate"`
	Tier2Rate                    float64    `json:"tier2_rate,omitempty"`
	CategoryLimit                float64    `json:"category_limit"`
	Tier2CategoryLimit           float64    `json:"tier2_category_limit,omitempty"`
	TransactionLimit             float64    `json:"transaction_limit"`
	SecondaryTransactionCriteria float64    `json:"secondary_transaction_criteria,omitempty"`
	SecondaryTransactionLimit    float64    `json:"secondary_transaction_limit,omitempty"`
	Status                       RuleStatus `json:"status"`
	MCCCodes                     []string   `json:"mcc_codes"`
	ExcludedMCCCodes             []string   `json:"excluded_mcc_codes,omitempty"`
	IsDefault                    bool       `json:"is_default"`
	Categories                   []string   `json:"categories,omitempty"`
}

// MonthlySummary is the per-card, per-cashback-month aggregate.
// Cashback is the month-to-date accrual counted against the card's monthly cap;
// ActualCashback is what the bank actually credited.
type MonthlySummary struct {
	ID              string  `json:"id"`
	CardID          string  `json:"card_id"`
	Month           string  `json:"month"`
	Spend           float64 `json:"spend"`
	Cashback        float64 `json:"cashback"`
	ActualCashback  float64 `json:"actual_cashback"`
	Adjustment      float64 `json:"adjustment"`
	AmountRedeemed  float64 `json:"amount_redeemed"`
	StatementAmount float64 `json:"statement_amount"`
	PaidAmount      float64 `json:"paid_amount"`
	Reviewed        bool    `json:"reviewed"`
	Notes           string  `json:"notes,omitempty"`
}

func (s MonthlySummary) Total() float64 {
	return s.ActualCashback + s.Adjustment
}

func (s MonthlySummary) Key() SummaryKey {
	return SummaryKey{CardID: s.CardID, Month: s.Month}
}

type CategorySummary struct {
	ID       string  `json:"id"`
	CardID   string  `json:"card_id"`
	Month    string  `json:"month"`
	RuleID   string  `json:"rule_id"`
	Cashback float64 `json:"cashback"`
}

func (s CategorySummary) Key() CategoryKey {
	return CategoryKey{CardID: s.CardID, Month: s.Month, RuleID: s.RuleID}
}

// Transaction is one card purchase. CashbackMonth buckets its cashback;
// StatementMonth is the billing cycle it is charged on.
type Transaction struct {
	ID             string    `json:"id"`
	CardID         string    `json:"card_id"`
	RuleID         string    `json:"rule_id,omitempty"`
	MCCCode        string    `json:"mcc_code"`
	Merchant       string    `json:"merchant,omitempty"`
	Amount         float64   `json:"amount"`
	EstCashback    float64   `json:"est_cashback"`
	CashbackMonth  string    `json:"cashback_month"`
	StatementMonth string    `json:"statement_month"`
	Date           time.Time `json:"date"`
	CreatedAt      time.Time `json:"created_at"`
}

type SummaryKey struct {
	CardID string
	Month  string
}

type CategoryKey struct {
	CardID string
	Month  string
	RuleID string
}

// UserPreferences carries client-side choices that influence ranking
// presentation but never the ranking contract itself.
type UserPreferences struct {
	LastUsedCardID string `json:"last_used_card_id,omitempty"`
}

// MonthlySummaryPatch carries the manually logged statement fields. Nil
// fields are left unchanged.
type MonthlySummaryPatch struct {
	ActualCashback  *float64 `json:"actual_cashback,omitempty"`
	Adjustment      *float64 `json:"adjustment,omitempty"`
	StatementAmount *float64 `json:"statement_amount,omitempty"`
	PaidAmount      *float64 `json:"paid_amount,omitempty"`
	Reviewed        *bool    `json:"reviewed,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// Redemption records one period's share of a lump redemption.
type Redemption struct {
	ID                string    `json:"id"`
	BatchID           string    `json:"batch_id"`
	CardID            string    `json:"card_id"`
	SummaryID         string    `json:"summary_id"`
	Month             string    `json:"month"`
	Amount            float64   `json:"amount"`
	NewAmountRedeemed float64   `json:"new_amount_redeemed"`
	Notes             string    `json:"notes,omitempty"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
