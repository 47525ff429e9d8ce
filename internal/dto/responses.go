package dto

import (
	"time"

	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type ValidationError struct {
	Index   int    `json:"index,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorListResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Limit converts a remaining-cap value to JSON: nil means unlimited.
func Limit(v float64) *float64 {
	if engine.Unlimited(v) {
		return nil
	}
	return &v
}

type CalculateResponse struct {
	CardID        string `json:"card_id"`
	RuleID        string `json:"rule_id"`
	CashbackMonth string `json:"cashback_month"`
	engine.CalculationResult
	Caps engine.Caps `json:"caps"`
}

type CandidateResponse struct {
	engine.Candidate
	RemainingCategoryCashback *float64 `json:"remaining_category_cashback"`
}

type RecommendationResponse struct {
	MCC        string              `json:"mcc"`
	Amount     float64             `json:"amount"`
	Date       string              `json:"date"`
	Candidates []CandidateResponse `json:"candidates"`
}

func NewRecommendationResponse(mcc string, amount float64, date time.Time, cands []engine.Candidate) RecommendationResponse {
	out := RecommendationResponse{
		MCC:        mcc,
		Amount:     amount,
		Date:       date.Format(time.DateOnly),
		Candidates: make([]CandidateResponse, 0, len(cands)),
	}
	for _, c := range cands {
		out.Candidates = append(out.Candidates, CandidateResponse{
			Candidate:                 c,
			RemainingCategoryCashback: Limit(c.RemainingCategoryCashback),
		})
	}
	return out
}

type SuggestionResponse struct {
	engine.Suggestion
	RemainingCap   *float64 `json:"remaining_cap"`
	SpendingNeeded *float64 `json:"spending_needed"`
}

type SuggestionsResponse struct {
	Top    *SuggestionResponse  `json:"top"`
	Others []SuggestionResponse `json:"others"`
}

func newSuggestion(s engine.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		Suggestion:     s,
		RemainingCap:   Limit(s.RemainingCap),
		SpendingNeeded: Limit(s.SpendingNeeded),
	}
}

func NewSuggestionsResponse(s engine.Suggestions) SuggestionsResponse {
	out := SuggestionsResponse{Others: make([]SuggestionResponse, 0, len(s.Others))}
	if s.Top != nil {
		top := newSuggestion(*s.Top)
		out.Top = &top
	}
	for _, o := range s.Others {
		out.Others = append(out.Others, newSuggestion(o))
	}
	return out
}

type CategoryProgressResponse struct {
	engine.CategoryProgress
	Remaining *float64 `json:"remaining"`
}

type CapProgressResponse struct {
	engine.CapProgress
	Categories []CategoryProgressResponse `json:"categories"`
}

func NewCapProgressResponse(progress []engine.CapProgress) []CapProgressResponse {
	out := make([]CapProgressResponse, 0, len(progress))
	for _, p := range progress {
		cats := make([]CategoryProgressResponse, 0, len(p.Categories))
		for _, c := range p.Categories {
			cats = append(cats, CategoryProgressResponse{CategoryProgress: c, Remaining: Limit(c.Remaining)})
		}
		out = append(out, CapProgressResponse{CapProgress: p, Categories: cats})
	}
	return out
}

type TransactionResponse struct {
	model.Transaction
	Warnings []engine.Warning `json:"warnings"`
	Blocked  bool             `json:"blocked"`
}

type BatchTransactionResponse struct {
	Inserted int                   `json:"inserted"`
	Results  []TransactionResponse `json:"results"`
}

type StatementResponse struct {
	engine.Statement
	EstimatedBalance float64 `json:"estimated_balance"`
	EffectiveBalance float64 `json:"effective_balance"`
	Remaining        float64 `json:"remaining"`
	Unpaid           bool    `json:"unpaid"`
}

func newStatement(s engine.Statement) StatementResponse {
	return StatementResponse{
		Statement:        s,
		EstimatedBalance: s.EstimatedBalance(),
		EffectiveBalance: s.EffectiveBalance(),
		Remaining:        s.Remaining(),
		Unpaid:           s.Unpaid(),
	}
}

func newStatements(in []engine.Statement) []StatementResponse {
	out := make([]StatementResponse, 0, len(in))
	for _, s := range in {
		out = append(out, newStatement(s))
	}
	return out
}

type AccountResponse struct {
	Card         model.Card          `json:"card"`
	Main         *StatementResponse  `json:"main"`
	NextUpcoming *StatementResponse  `json:"next_upcoming"`
	Upcoming     []StatementResponse `json:"upcoming"`
	Past         []StatementResponse `json:"past"`
	PastDue      []StatementResponse `json:"past_due"`
}

func newAccount(a engine.CardStatements) AccountResponse {
	out := AccountResponse{
		Card:     a.Card,
		Upcoming: newStatements(a.Upcoming),
		Past:     newStatements(a.Past),
		PastDue:  newStatements(a.PastDue),
	}
	if a.Main != nil {
		m := newStatement(*a.Main)
		out.Main = &m
	}
	if next := a.NextUpcoming(); next != nil {
		n := newStatement(*next)
		out.NextUpcoming = &n
	}
	return out
}

func newAccounts(in []engine.CardStatements) []AccountResponse {
	out := make([]AccountResponse, 0, len(in))
	for _, a := range in {
		out = append(out, newAccount(a))
	}
	return out
}

type PaymentsResponse struct {
	PastDue   []AccountResponse `json:"past_due"`
	Upcoming  []AccountResponse `json:"upcoming"`
	Completed []AccountResponse `json:"completed"`
	Closed    []AccountResponse `json:"closed"`
}

func NewPaymentsResponse(b engine.AccountBuckets) PaymentsResponse {
	return PaymentsResponse{
		PastDue:   newAccounts(b.PastDue),
		Upcoming:  newAccounts(b.Upcoming),
		Completed: newAccounts(b.Completed),
		Closed:    newAccounts(b.Closed),
	}
}

type LedgerResponse struct {
	Items      []engine.LedgerItem    `json:"items"`
	Points     []engine.PointsAccount `json:"points"`
	Pagination Pagination             `json:"pagination"`
}

type RedemptionResponse struct {
	BatchID     string             `json:"batch_id"`
	CardID      string             `json:"card_id"`
	Requested   float64            `json:"requested"`
	Allocated   float64            `json:"allocated"`
	Unallocated float64            `json:"unallocated"`
	Entries     []model.Redemption `json:"entries"`
}

type RedemptionBatchResponse struct {
	BatchID string             `json:"batch_id"`
	Entries []model.Redemption `json:"entries"`
}
