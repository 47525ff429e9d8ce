package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

const cardColumns = `id, name, bank, status, statement_day, payment_due_day, minimum_monthly_spend,
	overall_monthly_limit, cashback_type, tier2_min_spend, tier2_limit, tier1_payment_type,
	tier2_payment_type, use_statement_month_for_payments, created_at`

type CardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

func scanCard(row pgx.Row) (model.Card, error) {
	var c model.Card
	err := row.Scan(&c.ID, &c.Name, &c.Bank, &c.Status, &c.StatementDay, &c.PaymentDueDay,
		&c.MinimumMonthlySpend, &c.OverallMonthlyLimit, &c.CashbackType, &c.Tier2MinSpend,
		&c.Tier2Limit, &c.Tier1PaymentType, &c.Tier2PaymentType, &c.UseStatementMonthForPayments,
		&c.CreatedAt)
	return c, err
}

func (r *CardRepository) List(ctx context.Context) ([]model.Card, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *CardRepository) FindByID(ctx context.Context, id string) (*model.Card, error) {
	c, err := scanCard(r.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}
