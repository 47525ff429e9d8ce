package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/metrics"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

// CashbackService answers the read-side questions: what a purchase would
// earn, which card to use and how far each card is towards its caps.
type CashbackService struct {
	loader  *SnapshotLoader
	cards   CardStore
	rules   RuleStore
	prefs   PreferenceStore
	metrics *metrics.Recorder
	now     Clock
}

func NewCashbackService(loader *SnapshotLoader, cards CardStore, rules RuleStore, prefs PreferenceStore, rec *metrics.Recorder, now Clock) *CashbackService {
	if now == nil {
		now = SystemClock(time.UTC)
	}
	return &CashbackService{loader: loader, cards: cards, rules: rules, prefs: prefs, metrics: rec, now: now}
}

func (s *CashbackService) Cards(ctx context.Context) ([]model.Card, error) {
	return s.cards.List(ctx)
}

func (s *CashbackService) Rules(ctx context.Context, cardID string) ([]model.Rule, error) {
	return s.rules.List(ctx, cardID)
}

func (s *CashbackService) Calculate(ctx context.Context, req *dto.CalculateRequest) (*dto.CalculateResponse, error) {
	if !engine.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	card, rule, err := lookupRule(snap, req.CardID, req.RuleID)
	if err != nil {
		return nil, err
	}

	date := req.TransactionDate
	if date.IsZero() {
		date = s.now()
	}
	month := CashbackMonth(card, date)
	res, caps := evaluate(snap, card, rule, month, req.Amount, accrual{})
	s.metrics.Calculation(res.Blocked)

	return &dto.CalculateResponse{
		CardID:            card.ID,
		RuleID:            rule.ID,
		CashbackMonth:     month,
		CalculationResult: res,
		Caps:              caps,
	}, nil
}

// Recommend ranks every eligible card/rule for the purchase. Without an
// explicit card_id the last card used is marked as preferred.
func (s *CashbackService) Recommend(ctx context.Context, q *dto.RecommendationQuery) (*dto.RecommendationResponse, error) {
	if !engine.ValidMCC(q.MCC) {
		return nil, ErrInvalidMCC
	}

	date := s.now()
	if q.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, q.Date, date.Location())
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", q.Date, err)
		}
		date = d
	}

	cardID := q.CardID
	if cardID == "" && s.prefs != nil {
		prefs, err := s.prefs.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("load preferences")
		}
		cardID = prefs.LastUsedCardID
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	cands := engine.RankRules(
		engine.TxContext{MCCCode: q.MCC, Amount: q.Amount, Date: date, CardID: cardID},
		snap, CashbackMonth,
		engine.RankOptions{IncludeDefaultRules: q.IncludeDefault},
	)
	s.metrics.Candidates(len(cands))

	resp := dto.NewRecommendationResponse(q.MCC, q.Amount, date, cands)
	return &resp, nil
}

func (s *CashbackService) Suggest(ctx context.Context, month string) (*dto.SuggestionsResponse, error) {
	if month != "" && !model.IsValidMonth(month) {
		return nil, ErrInvalidMonth
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	got := engine.Suggest(snap, CashbackMonth, engine.SuggestOptions{Today: s.now(), Month: model.NormalizeMonth(month)})
	resp := dto.NewSuggestionsResponse(got)
	return &resp, nil
}

func (s *CashbackService) CapProgress(ctx context.Context, month string) ([]dto.CapProgressResponse, error) {
	if month != "" && !model.IsValidMonth(month) {
		return nil, ErrInvalidMonth
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	progress := engine.CardCapProgress(snap, CashbackMonth, s.now(), model.NormalizeMonth(month))
	return dto.NewCapProgressResponse(progress), nil
}

func lookupRule(snap *engine.Snapshot, cardID, ruleID string) (model.Card, model.Rule, error) {
	card, ok := snap.Card(cardID)
	if !ok {
		return model.Card{}, model.Rule{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	for _, r := range snap.Rules {
		if r.ID != ruleID {
			continue
		}
		if r.CardID != card.ID {
			return model.Card{}, model.Rule{}, fmt.Errorf("%w: rule %s, card %s", ErrRuleCardMismatch, ruleID, cardID)
		}
		return card, r, nil
	}
	return model.Card{}, model.Rule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
}

// accrual is spend and cashback recorded in memory ahead of the snapshot,
// so items later in a batch see the caps consumed by earlier ones.
type accrual struct {
	monthly  map[model.SummaryKey][2]float64
	category map[model.CategoryKey]float64
}

func newAccrual() accrual {
	return accrual{
		monthly:  map[model.SummaryKey][2]float64{},
		category: map[model.CategoryKey]float64{},
	}
}

func (a accrual) add(cardID, month, ruleID string, spend, cashback float64) {
	k := model.SummaryKey{CardID: cardID, Month: month}
	v := a.monthly[k]
	a.monthly[k] = [2]float64{v[0] + spend, v[1] + cashback}
	if ruleID != "" {
		a.category[model.CategoryKey{CardID: cardID, Month: month, RuleID: ruleID}] += cashback
	}
}

func evaluate(snap *engine.Snapshot, card model.Card, rule model.Rule, month string, amount float64, pending accrual) (engine.CalculationResult, engine.Caps) {
	spend, monthlyUsed := snap.MonthToDate(card.ID, month)
	categoryUsed := snap.CategoryCashback(card.ID, month, rule.ID)

	if pending.monthly != nil {
		d := pending.monthly[model.SummaryKey{CardID: card.ID, Month: month}]
		spend += d[0]
		monthlyUsed += d[1]
		categoryUsed += pending.category[model.CategoryKey{CardID: card.ID, Month: month, RuleID: rule.ID}]
	}

	caps := engine.ResolveCaps(card, rule, spend)
	res := engine.Calculate(engine.CalculationInput{
		Caps:                 caps,
		Rule:                 rule,
		Amount:               amount,
		CategoryCashbackUsed: categoryUsed,
		MonthlyCashbackUsed:  monthlyUsed,
		MonthToDateSpend:     spend,
		MinimumMonthlySpend:  card.MinimumMonthlySpend,
	})
	return res, caps
}
