package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type fakeStore struct {
	mu sync.Mutex

	cards    []model.Card
	rules    []model.Rule
	monthly  []model.MonthlySummary
	category []model.CategorySummary

	inserted    []model.Transaction
	applied     []model.Redemption
	prefs       model.UserPreferences
	sums        map[string]float64
	sumErr      error
	sumCalls    []string
	insertErr   error
	lastPatchID string
}

func (f *fakeStore) List(ctx context.Context) ([]model.Card, error) {
	return f.cards, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*model.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRules struct{ *fakeStore }

func (f fakeRules) List(ctx context.Context, cardID string) ([]model.Rule, error) {
	var out []model.Rule
	for _, r := range f.rules {
		if cardID == "" || r.CardID == cardID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMonthly(ctx context.Context, cardID string) ([]model.MonthlySummary, error) {
	var out []model.MonthlySummary
	for _, m := range f.monthly {
		if cardID == "" || m.CardID == cardID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMonthly(ctx context.Context, id string, patch model.MonthlySummaryPatch) (*model.MonthlySummary, error) {
	for i := range f.monthly {
		if f.monthly[i].ID != id {
			continue
		}
		m := f.monthly[i]
		if patch.ActualCashback != nil {
			m.ActualCashback = *patch.ActualCashback
		}
		if patch.Adjustment != nil {
			m.Adjustment = *patch.Adjustment
		}
		if patch.StatementAmount != nil {
			m.StatementAmount = *patch.StatementAmount
		}
		if patch.PaidAmount != nil {
			m.PaidAmount = *patch.PaidAmount
		}
		if patch.Reviewed != nil {
			m.Reviewed = *patch.Reviewed
		}
		if patch.Notes != nil {
			m.Notes = *patch.Notes
		}
		if m.AmountRedeemed > m.ActualCashback+m.Adjustment {
			return nil, &pgconn.PgError{Code: "23514", ConstraintName: redeemedWithinTotal}
		}
		f.monthly[i] = m
		f.lastPatchID = id
		return &m, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListCategory(ctx context.Context, cardID string) ([]model.CategorySummary, error) {
	return f.category, nil
}

func (f *fakeStore) Insert(ctx context.Context, txn *model.Transaction) error {
	return f.InsertBatch(ctx, []*model.Transaction{txn})
}

func (f *fakeStore) InsertBatch(ctx context.Context, txns []*model.Transaction) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, t := range txns {
		t.ID = "txn-" + t.MCCCode
		t.CreatedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		f.inserted = append(f.inserted, *t)
	}
	return nil
}

func (f *fakeStore) SumByStatementMonth(ctx context.Context, cardID, month string) (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sumCalls = append(f.sumCalls, month)
	if f.sumErr != nil {
		return 0, 0, f.sumErr
	}
	return f.sums[month], 0, nil
}

func (f *fakeStore) ListByCashbackMonth(ctx context.Context, cardID, month string) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for _, t := range f.inserted {
		if t.CardID == cardID && t.CashbackMonth == month {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context) (model.UserPreferences, error) {
	return f.prefs, nil
}

func (f *fakeStore) SetLastUsedCard(ctx context.Context, cardID string) error {
	f.prefs.LastUsedCardID = cardID
	return nil
}

func (f *fakeStore) Redeem(ctx context.Context, cardID string, plan func([]model.MonthlySummary) ([]*model.Redemption, error)) ([]*model.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var locked []model.MonthlySummary
	for _, m := range f.monthly {
		if m.CardID == cardID {
			locked = append(locked, m)
		}
	}
	entries, err := plan(locked)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("empty redemption")
	}
	for _, e := range entries {
		e.ID = "red-" + e.SummaryID
		e.CreatedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		for i := range f.monthly {
			if f.monthly[i].ID == e.SummaryID {
				f.monthly[i].AmountRedeemed = e.NewAmountRedeemed
				f.monthly[i].Notes = e.Notes
			}
		}
		f.applied = append(f.applied, *e)
	}
	return entries, nil
}

func (f *fakeStore) ListByBatch(ctx context.Context, batchID string) ([]model.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Redemption{}
	for _, e := range f.applied {
		if e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func (f *fakeStore) loader() *SnapshotLoader {
	return NewSnapshotLoader(f, fakeRules{f}, f)
}
