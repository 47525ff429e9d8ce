package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

// liveStatementMonths is how many statement months, counting the current
// one, are re-aggregated from transactions.
const liveStatementMonths = 4

type PaymentService struct {
	cards     CardStore
	summaries SummaryStore
	txns      TransactionStore
	now       Clock
}

func NewPaymentService(cards CardStore, summaries SummaryStore, txns TransactionStore, now Clock) *PaymentService {
	if now == nil {
		now = SystemClock(time.UTC)
	}
	return &PaymentService{cards: cards, summaries: summaries, txns: txns, now: now}
}

// Statements builds every card's statement partition and buckets the cards
// by payment state.
func (s *PaymentService) Statements(ctx context.Context) (*dto.PaymentsResponse, error) {
	g, gctx := errgroup.WithContext(ctx)
	var (
		cards     []model.Card
		summaries []model.MonthlySummary
	)
	g.Go(func() error {
		var err error
		if cards, err = s.cards.List(gctx); err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if summaries, err = s.summaries.ListMonthly(gctx, ""); err != nil {
			return fmt.Errorf("load monthly summaries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.now()
	byCard := make(map[string][]model.MonthlySummary, len(cards))
	for _, m := range summaries {
		byCard[m.CardID] = append(byCard[m.CardID], m)
	}

	accounts := make([]engine.CardStatements, 0, len(cards))
	for _, card := range cards {
		own := byCard[card.ID]
		synthetic := map[string]bool{}
		if card.UseStatementMonthForPayments {
			own, synthetic = s.aggregateStatementMonths(ctx, card, own, today)
		}

		stmts := engine.BuildStatements(card, own, today)
		for i := range stmts {
			stmts[i].Synthetic = synthetic[stmts[i].ID]
		}
		accounts = append(accounts, engine.NewCardStatements(card, engine.PartitionStatements(stmts, today)))
	}

	engine.SortAccounts(accounts)
	resp := dto.NewPaymentsResponse(engine.BucketAccounts(accounts))
	return &resp, nil
}

type monthSpend struct {
	month string
	spend float64
	ok    bool
}

// aggregateStatementMonths replaces the spend of the live statement months
// with the sum of transactions billed on them. Months already finalised are
// left alone; months with spend but no summary get a synthetic one.
func (s *PaymentService) aggregateStatementMonths(ctx context.Context, card model.Card, own []model.MonthlySummary, today time.Time) ([]model.MonthlySummary, map[string]bool) {
	byMonth := make(map[string]int, len(own))
	for i, m := range own {
		byMonth[model.NormalizeMonth(m.Month)] = i
	}

	current := CurrentStatementMonth(card, today)
	results := make([]monthSpend, liveStatementMonths)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < liveStatementMonths; i++ {
		month, err := model.AddMonths(current, -i)
		if err != nil {
			continue
		}
		if idx, ok := byMonth[month]; ok && (own[idx].StatementAmount > 0 || own[idx].Reviewed) {
			continue
		}
		g.Go(func() error {
			spend, _, err := s.txns.SumByStatementMonth(gctx, card.ID, month)
			if err != nil {
				log.Warn().Err(err).Str("card_id", card.ID).Str("month", month).
					Msg("aggregate statement month, keeping stored summary")
				return nil
			}
			results[i] = monthSpend{month: month, spend: spend, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	out := append([]model.MonthlySummary(nil), own...)
	synthetic := map[string]bool{}
	for _, r := range results {
		if !r.ok {
			continue
		}
		if idx, ok := byMonth[r.month]; ok {
			out[idx].Spend = r.spend
			continue
		}
		if r.spend <= 0 {
			continue
		}
		id := uuid.NewString()
		synthetic[id] = true
		out = append(out, model.MonthlySummary{ID: id, CardID: card.ID, Month: r.month, Spend: r.spend})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.NormalizeMonth(out[i].Month) < model.NormalizeMonth(out[j].Month)
	})
	return out, synthetic
}

// redeemedWithinTotal keeps amount_redeemed at or below the month's total.
const redeemedWithinTotal = "monthly_summaries_redeemed_within_total"

// UpdateSummary patches a month's totals and payment state. A total that
// would fall below what has already been redeemed is rejected.
func (s *PaymentService) UpdateSummary(ctx context.Context, id string, req *dto.UpdateSummaryRequest) (*model.MonthlySummary, error) {
	updated, err := s.summaries.UpdateMonthly(ctx, id, model.MonthlySummaryPatch{
		ActualCashback:  req.ActualCashback,
		Adjustment:      req.Adjustment,
		StatementAmount: req.StatementAmount,
		PaidAmount:      req.PaidAmount,
		Reviewed:        req.Reviewed,
		Notes:           req.Notes,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == redeemedWithinTotal {
			return nil, fmt.Errorf("update monthly summary %s: %w", id, ErrTotalBelowRedeemed)
		}
		return nil, fmt.Errorf("update monthly summary %s: %w", id, err)
	}

	log.Info().Str("summary_id", id).Str("card_id", updated.CardID).Str("month", updated.Month).
		Msg("monthly summary updated")
	return updated, nil
}
