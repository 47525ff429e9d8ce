package service

import (
	"context"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// The store interfaces are satisfied by the pgx repositories.

type CardStore interface {
	List(ctx context.Context) ([]model.Card, error)
	FindByID(ctx context.Context, id string) (*model.Card, error)
}

type RuleStore interface {
	List(ctx context.Context, cardID string) ([]model.Rule, error)
}

type SummaryStore interface {
	ListMonthly(ctx context.Context, cardID string) ([]model.MonthlySummary, error)
	UpdateMonthly(ctx context.Context, id string, patch model.MonthlySummaryPatch) (*model.MonthlySummary, error)
	ListCategory(ctx context.Context, cardID string) ([]model.CategorySummary, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, txn *model.Transaction) error
	InsertBatch(ctx context.Context, txns []*model.Transaction) error
	SumByStatementMonth(ctx context.Context, cardID, month string) (spend, cashback float64, err error)
	ListByCashbackMonth(ctx context.Context, cardID, month string) ([]model.Transaction, error)
}

type PreferenceStore interface {
	Get(ctx context.Context) (model.UserPreferences, error)
	SetLastUsedCard(ctx context.Context, cardID string) error
}

// RedemptionStore.Redeem must call plan with the card's summaries locked
// and persist what plan returns before releasing them.
type RedemptionStore interface {
	Redeem(ctx context.Context, cardID string, plan func([]model.MonthlySummary) ([]*model.Redemption, error)) ([]*model.Redemption, error)
	ListByBatch(ctx context.Context, batchID string) ([]model.Redemption, error)
}
