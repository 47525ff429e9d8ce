package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/cashback-settlement/internal/dto"
	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/metrics"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

// SettlementService covers the payout side: the cashback ledger and lump
// redemptions spread over outstanding months.
type SettlementService struct {
	cards       CardStore
	summaries   SummaryStore
	redemptions RedemptionStore
	metrics     *metrics.Recorder
	now         Clock
}

func NewSettlementService(cards CardStore, summaries SummaryStore, redemptions RedemptionStore, rec *metrics.Recorder, now Clock) *SettlementService {
	if now == nil {
		now = SystemClock(time.UTC)
	}
	return &SettlementService{cards: cards, summaries: summaries, redemptions: redemptions, metrics: rec, now: now}
}

func (s *SettlementService) Ledger(ctx context.Context) (engine.Ledger, error) {
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
		return engine.Ledger{}, err
	}
	return engine.BuildLedger(cards, summaries, s.now()), nil
}

// Redeem spreads req.Amount over the card's outstanding months, oldest
// first. The balance check, the allocation and the writes all run against
// the same locked rows, so two concurrent redemptions can never both spend
// the same outstanding cashback.
func (s *SettlementService) Redeem(ctx context.Context, req *dto.RedemptionRequest) (*dto.RedemptionResponse, error) {
	if !engine.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	card, err := s.cards.FindByID(ctx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("find card %s: %w", req.CardID, err)
	}

	batchID := uuid.NewString()
	var alloc engine.Allocation
	plan := func(summaries []model.MonthlySummary) ([]*model.Redemption, error) {
		ledger := engine.BuildLedger([]model.Card{*card}, summaries, s.now())
		periods := redeemablePeriods(ledger)

		outstanding := decimal.NewFromFloat(engine.Outstanding(periods))
		if decimal.NewFromFloat(req.Amount).GreaterThan(outstanding) {
			return nil, fmt.Errorf("%w: requested %.2f, outstanding %s", ErrRedemptionExceedsBalance, req.Amount, outstanding.StringFixed(2))
		}

		alloc = engine.AllocateRedemption(req.Amount, periods, req.Note)
		entries := make([]*model.Redemption, 0, len(alloc.Deltas))
		for _, d := range alloc.Deltas {
			entries = append(entries, &model.Redemption{
				BatchID:           batchID,
				CardID:            card.ID,
				SummaryID:         d.PeriodID,
				Month:             d.Month,
				Amount:            d.Taken,
				NewAmountRedeemed: d.NewAmountRedeemed,
				Notes:             d.Notes,
				Note:              req.Note,
			})
		}
		return entries, nil
	}

	entries, err := s.redemptions.Redeem(ctx, card.ID, plan)
	if err != nil {
		return nil, fmt.Errorf("redeem for card %s: %w", card.ID, err)
	}

	s.metrics.Redemption(alloc.Allocated, alloc.Unallocated)
	log.Info().Str("batch_id", batchID).Str("card_id", card.ID).
		Float64("requested", alloc.Requested).Float64("allocated", alloc.Allocated).
		Int("periods", len(entries)).Msg("redemption applied")

	out := make([]model.Redemption, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return &dto.RedemptionResponse{
		BatchID:     batchID,
		CardID:      card.ID,
		Requested:   alloc.Requested,
		Allocated:   alloc.Allocated,
		Unallocated: alloc.Unallocated,
		Entries:     out,
	}, nil
}

// Batch returns the entries written by one redemption.
func (s *SettlementService) Batch(ctx context.Context, batchID string) ([]model.Redemption, error) {
	entries, err := s.redemptions.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list redemption batch %s: %w", batchID, err)
	}
	if len(entries) == 0 {
		return nil, ErrRedemptionNotFound
	}
	return entries, nil
}

// redeemablePeriods lists the ledger's outstanding months oldest first.
func redeemablePeriods(l engine.Ledger) []engine.Period {
	if len(l.Points) > 0 {
		return l.Points[0].Periods()
	}
	periods := []engine.Period{}
	for i := len(l.Items) - 1; i >= 0; i-- {
		it := l.Items[i]
		if it.RemainingDue <= 0 {
			continue
		}
		periods = append(periods, engine.Period{
			ID:              it.SummaryID,
			Month:           it.Month,
			Total:           it.Total,
			AlreadyRedeemed: it.AmountRedeemed,
			Notes:           it.Notes,
		})
	}
	return periods
}
