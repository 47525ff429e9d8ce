package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

const monthlyColumns = `id, card_id, month, spend, cashback, actual_cashback, adjustment,
	amount_redeemed, statement_amount, paid_amount, reviewed, notes`

type SummaryRepository struct {
	pool *pgxpool.Pool
}

func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

func scanMonthly(row pgx.Row) (model.MonthlySummary, error) {
	var s model.MonthlySummary
	err := row.Scan(&s.ID, &s.CardID, &s.Month, &s.Spend, &s.Cashback, &s.ActualCashback,
		&s.Adjustment, &s.AmountRedeemed, &s.StatementAmount, &s.PaidAmount, &s.Reviewed, &s.Notes)
	return s, err
}

// ListMonthly returns summaries oldest month first, optionally for one card.
func (r *SummaryRepository) ListMonthly(ctx context.Context, cardID string) ([]model.MonthlySummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_summaries
		WHERE ($1 = '' OR card_id = $1)
		ORDER BY card_id, month`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query monthly summaries: %w", err)
	}
	defer rows.Close()

	out := []model.MonthlySummary{}
	for rows.Next() {
		s, err := scanMonthly(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateMonthly applies the non-nil fields of patch and returns the updated row.
func (r *SummaryRepository) UpdateMonthly(ctx context.Context, id string, patch model.MonthlySummaryPatch) (*model.MonthlySummary, error) {
	s, err := scanMonthly(r.pool.QueryRow(ctx,
		`UPDATE monthly_summaries SET
			actual_cashback  = COALESCE($2, actual_cashback),
			adjustment       = COALESCE($3, adjustment),
			statement_amount = COALESCE($4, statement_amount),
			paid_amount      = COALESCE($5, paid_amount),
			reviewed         = COALESCE($6, reviewed),
			notes            = COALESCE($7, notes),
			updated_at       = NOW()
		WHERE id = $1
		RETURNING `+monthlyColumns,
		id, patch.ActualCashback, patch.Adjustment, patch.StatementAmount, patch.PaidAmount,
		patch.Reviewed, patch.Notes))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SummaryRepository) ListCategory(ctx context.Context, cardID string) ([]model.CategorySummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, card_id, month, rule_id, cashback FROM category_summaries
		WHERE ($1 = '' OR card_id = $1)
		ORDER BY card_id, month, rule_id`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query category summaries: %w", err)
	}
	defer rows.Close()

	out := []model.CategorySummary{}
	for rows.Next() {
		var s model.CategorySummary
		if err := rows.Scan(&s.ID, &s.CardID, &s.Month, &s.RuleID, &s.Cashback); err != nil {
			return nil, fmt.Errorf("scan category summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
