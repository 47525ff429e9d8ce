package handler

import (
	"context"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
	"github.com/anyulbade/cashback-settlement/internal/service"
)

type stubCashback struct {
	err       error
	gotQuery  *dto.RecommendationQuery
	gotMonth  string
	gotCalc   *dto.CalculateRequest
	gotCardID string
}

func (s *stubCashback) Cards(ctx context.Context) ([]model.Card, error) {
	return []model.Card{{ID: "c1", Name: "Everyday"}}, s.err
}

func (s *stubCashback) Rules(ctx context.Context, cardID string) ([]model.Rule, error) {
	s.gotCardID = cardID
	return []model.Rule{{ID: "r1", CardID: "c1"}}, s.err
}

func (s *stubCashback) Calculate(ctx context.Context, req *dto.CalculateRequest) (*dto.CalculateResponse, error) {
	s.gotCalc = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CalculateResponse{
		CardID: req.CardID, RuleID: req.RuleID, CashbackMonth: "202403",
		CalculationResult: engine.CalculationResult{Cashback: 5, Warnings: []engine.Warning{}},
	}, nil
}

func (s *stubCashback) Recommend(ctx context.Context, q *dto.RecommendationQuery) (*dto.RecommendationResponse, error) {
	s.gotQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RecommendationResponse{MCC: q.MCC, Candidates: []dto.CandidateResponse{}}, nil
}

func (s *stubCashback) Suggest(ctx context.Context, month string) (*dto.SuggestionsResponse, error) {
	s.gotMonth = month
	return &dto.SuggestionsResponse{Others: []dto.SuggestionResponse{}}, s.err
}

func (s *stubCashback) CapProgress(ctx context.Context, month string) ([]dto.CapProgressResponse, error) {
	s.gotMonth = month
	return []dto.CapProgressResponse{}, s.err
}

type stubTransactions struct {
	err        error
	validation []dto.ValidationError
	batchSize  int
}

func (s *stubTransactions) CreateTransaction(ctx context.Context, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.TransactionResponse{Transaction: model.Transaction{ID: "t1", CardID: req.CardID, Amount: req.Amount, EstCashback: 3}}, nil
}

func (s *stubTransactions) CreateBatch(ctx context.Context, req *dto.BatchTransactionRequest) ([]dto.TransactionResponse, []dto.ValidationError, error) {
	s.batchSize = len(req.Transactions)
	if s.err != nil || len(s.validation) > 0 {
		return nil, s.validation, s.err
	}
	out := make([]dto.TransactionResponse, len(req.Transactions))
	return out, nil, nil
}

func (s *stubTransactions) List(ctx context.Context, q *dto.TransactionListQuery) ([]model.Transaction, error) {
	return []model.Transaction{{ID: "t1", CardID: q.CardID, CashbackMonth: q.Month}}, s.err
}

type stubPayments struct {
	err   error
	gotID string
	patch *dto.UpdateSummaryRequest
}

func (s *stubPayments) Statements(ctx context.Context) (*dto.PaymentsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PaymentsResponse{PastDue: []dto.AccountResponse{}, Upcoming: []dto.AccountResponse{}}, nil
}

func (s *stubPayments) UpdateSummary(ctx context.Context, id string, req *dto.UpdateSummaryRequest) (*model.MonthlySummary, error) {
	s.gotID, s.patch = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &model.MonthlySummary{ID: id, PaidAmount: *req.PaidAmount}, nil
}

type stubSettlement struct {
	err    error
	ledger engine.Ledger
}

func (s *stubSettlement) Ledger(ctx context.Context) (engine.Ledger, error) {
	return s.ledger, s.err
}

func (s *stubSettlement) Redeem(ctx context.Context, req *dto.RedemptionRequest) (*dto.RedemptionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RedemptionResponse{BatchID: "b1", CardID: req.CardID, Requested: req.Amount, Allocated: req.Amount}, nil
}

func (s *stubSettlement) Batch(ctx context.Context, batchID string) ([]model.Redemption, error) {
	if s.err != nil {
		return nil, s.err
	}
	if batchID != "b1" {
		return nil, service.ErrRedemptionNotFound
	}
	return []model.Redemption{{ID: "r1", BatchID: "b1", SummaryID: "s01", Amount: 40}}, nil
}
