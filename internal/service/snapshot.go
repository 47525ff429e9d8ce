package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
)

// SnapshotLoader reads the four record sets concurrently.
type SnapshotLoader struct {
	cards     CardStore
	rules     RuleStore
	summaries SummaryStore
}

func NewSnapshotLoader(cards CardStore, rules RuleStore, summaries SummaryStore) *SnapshotLoader {
	return &SnapshotLoader{cards: cards, rules: rules, summaries: summaries}
}

func (l *SnapshotLoader) Load(ctx context.Context) (*engine.Snapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		cards    []model.Card
		rules    []model.Rule
		monthly  []model.MonthlySummary
		category []model.CategorySummary
	)

	g.Go(func() error {
		var err error
		cards, err = l.cards.List(gctx)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rules, err = l.rules.List(gctx, "")
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		monthly, err = l.summaries.ListMonthly(gctx, "")
		if err != nil {
			return fmt.Errorf("load monthly summaries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		category, err = l.summaries.ListCategory(gctx, "")
		if err != nil {
			return fmt.Errorf("load category summaries: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return engine.NewSnapshot(cards, rules, monthly, category), nil
}
