package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/metrics"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

type TransactionService struct {
	loader  *SnapshotLoader
	txns    TransactionStore
	prefs   PreferenceStore
	metrics *metrics.Recorder
}

func NewTransactionService(loader *SnapshotLoader, txns TransactionStore, prefs PreferenceStore, rec *metrics.Recorder) *TransactionService {
	return &TransactionService{loader: loader, txns: txns, prefs: prefs, metrics: rec}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	txn, res, err := s.price(snap, req, newAccrual())
	if err != nil {
		return nil, err
	}
	if err := s.txns.Insert(ctx, txn); err != nil {
		return nil, err
	}

	s.metrics.Calculation(res.Blocked)
	s.rememberCard(ctx, txn.CardID)
	return &dto.TransactionResponse{Transaction: *txn, Warnings: res.Warnings, Blocked: res.Blocked}, nil
}

// List returns a card's transactions for one cashback month, oldest first.
func (s *TransactionService) List(ctx context.Context, q *dto.TransactionListQuery) ([]model.Transaction, error) {
	if !model.IsValidMonth(q.Month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, q.Month)
	}
	txns, err := s.txns.ListByCashbackMonth(ctx, q.CardID, model.NormalizeMonth(q.Month))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", q.CardID, err)
	}
	return txns, nil
}

// CreateBatch validates every item first and inserts nothing if any fails.
// Items are priced in order against a running tally of the batch.
func (s *TransactionService) CreateBatch(ctx context.Context, req *dto.BatchTransactionRequest) ([]dto.TransactionResponse, []dto.ValidationError, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	var validationErrors []dto.ValidationError
	pending := newAccrual()
	txns := make([]*model.Transaction, 0, len(req.Transactions))
	results := make([]dto.TransactionResponse, 0, len(req.Transactions))

	for i := range req.Transactions {
		txn, res, err := s.price(snap, &req.Transactions[i], pending)
		if err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				validationErrors = append(validationErrors, dto.ValidationError{Index: i, Field: fe.Field, Message: fe.Message})
				continue
			}
			return nil, nil, err
		}
		txns = append(txns, txn)
		results = append(results, dto.TransactionResponse{Warnings: res.Warnings, Blocked: res.Blocked})
	}

	if len(validationErrors) > 0 {
		return nil, validationErrors, nil
	}

	if err := s.txns.InsertBatch(ctx, txns); err != nil {
		return nil, nil, err
	}

	for i, txn := range txns {
		results[i].Transaction = *txn
		s.metrics.Calculation(results[i].Blocked)
	}
	s.rememberCard(ctx, txns[len(txns)-1].CardID)
	return results, nil, nil
}

// price resolves the rule and cashback for one purchase and records it in
// pending. Without a rule_id the card's best matching rule is used.
func (s *TransactionService) price(snap *engine.Snapshot, req *dto.CreateTransactionRequest, pending accrual) (*model.Transaction, engine.CalculationResult, error) {
	var res engine.CalculationResult
	if !engine.ValidAmount(req.Amount) {
		return nil, res, &FieldError{Field: "amount", Message: ErrInvalidAmount.Error()}
	}
	if !engine.ValidMCC(req.MCCCode) {
		return nil, res, &FieldError{Field: "mcc_code", Message: ErrInvalidMCC.Error()}
	}

	card, ok := snap.Card(req.CardID)
	if !ok {
		return nil, res, &FieldError{Field: "card_id", Message: fmt.Sprintf("card '%s' not found", req.CardID)}
	}

	ruleID := req.RuleID
	if ruleID == "" {
		ruleID = bestRuleFor(snap, card, req)
	}

	txn := &model.Transaction{
		CardID:         card.ID,
		RuleID:         ruleID,
		MCCCode:        req.MCCCode,
		Merchant:       req.Merchant,
		Amount:         req.Amount,
		CashbackMonth:  CashbackMonth(card, req.TransactionDate),
		StatementMonth: StatementMonth(card, req.TransactionDate),
		Date:           req.TransactionDate,
	}

	res.Warnings = []engine.Warning{}
	if ruleID != "" {
		_, rule, err := lookupRule(snap, card.ID, ruleID)
		if err != nil {
			return nil, res, &FieldError{Field: "rule_id", Message: err.Error()}
		}
		res, _ = evaluate(snap, card, rule, txn.CashbackMonth, txn.Amount, pending)
		txn.EstCashback = res.Cashback
	}

	pending.add(card.ID, txn.CashbackMonth, ruleID, txn.Amount, txn.EstCashback)
	return txn, res, nil
}

func bestRuleFor(snap *engine.Snapshot, card model.Card, req *dto.CreateTransactionRequest) string {
	cands := engine.RankRules(
		engine.TxContext{MCCCode: req.MCCCode, Amount: req.Amount, Date: req.TransactionDate, CardID: card.ID},
		snap, CashbackMonth,
		engine.RankOptions{IncludeDefaultRules: true},
	)
	for _, c := range cands {
		if c.Card.ID == card.ID {
			return c.Rule.ID
		}
	}
	return ""
}

func (s *TransactionService) rememberCard(ctx context.Context, cardID string) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SetLastUsedCard(ctx, cardID); err != nil {
		log.Warn().Err(err).Str("card_id", cardID).Msg("save last used card")
	}
}

// FieldError is a request item that failed a lookup or domain check.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
