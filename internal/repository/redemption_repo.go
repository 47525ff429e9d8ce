package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

type RedemptionRepository struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

// Redeem locks the card's monthly summaries, hands them to plan and writes
// the resulting entries in the same transaction. Concurrent redemptions for
// one card are serialised by the row locks, so plan always sees committed
// redeemed totals. An error from plan is returned unwrapped.
func (r *RedemptionRepository) Redeem(ctx context.Context, cardID string, plan func([]model.MonthlySummary) ([]*model.Redemption, error)) ([]*model.Redemption, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin redemption transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_summaries
		WHERE card_id = $1
		ORDER BY month
		FOR UPDATE`, cardID)
	if err != nil {
		return nil, fmt.Errorf("lock monthly summaries: %w", err)
	}
	summaries := []model.MonthlySummary{}
	for rows.Next() {
		s, err := scanMonthly(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock monthly summaries: %w", err)
	}

	entries, err := plan(summaries)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		batch.Queue(
			`UPDATE monthly_summaries
			SET amount_redeemed = $3, notes = $4, updated_at = NOW()
			WHERE id = $1 AND card_id = $2 AND $3 <= actual_cashback + adjustment
			RETURNING id`,
			e.SummaryID, e.CardID, e.NewAmountRedeemed, e.Notes,
		)
		batch.Queue(
			`INSERT INTO redemptions (id, batch_id, card_id, summary_id, amount, note)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at`,
			e.ID, e.BatchID, e.CardID, e.SummaryID, e.Amount, e.Note,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, e := range entries {
		var id string
		if err := br.QueryRow().Scan(&id); err != nil {
			br.Close()
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("summary %s no longer accepts %.2f redeemed", e.SummaryID, e.NewAmountRedeemed)
			}
			return nil, fmt.Errorf("update summary %s: %w", e.SummaryID, err)
		}
		if err := br.QueryRow().Scan(&e.CreatedAt); err != nil {
			br.Close()
			return nil, fmt.Errorf("insert redemption for %s: %w", e.SummaryID, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}
	return entries, nil
}

// ListByBatch returns one redemption batch's entries, oldest month first.
func (r *RedemptionRepository) ListByBatch(ctx context.Context, batchID string) ([]model.Redemption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.batch_id, r.card_id, r.summary_id, s.month, r.amount, s.amount_redeemed, s.notes, r.note, r.created_at
		FROM redemptions r JOIN monthly_summaries s ON s.id = r.summary_id
		WHERE r.batch_id = $1
		ORDER BY s.month`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query redemptions: %w", err)
	}
	defer rows.Close()

	out := []model.Redemption{}
	for rows.Next() {
		var e model.Redemption
		if err := rows.Scan(&e.ID, &e.BatchID, &e.CardID, &e.SummaryID, &e.Month, &e.Amount,
			&e.NewAmountRedeemed, &e.Notes, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
