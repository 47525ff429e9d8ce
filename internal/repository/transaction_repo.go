package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

const insertTransactionSQL = `INSERT INTO transactions (id, card_id, rule_id, mcc_code, merchant, amount, est_cashback, cashback_month, statement_month, transaction_date)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at`

const accrueMonthlySQL = `INSERT INTO monthly_summaries (id, card_id, month, spend, cashback)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (card_id, month) DO UPDATE SET
		spend = monthly_summaries.spend + EXCLUDED.spend,
		cashback = monthly_summaries.cashback + EXCLUDED.cashback,
		updated_at = NOW()`

const accrueCategorySQL = `INSERT INTO category_summaries (id, card_id, month, rule_id, cashback)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (card_id, month, rule_id) DO UPDATE SET
		cashback = category_summaries.cashback + EXCLUDED.cashback`

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// queueTransaction adds the insert plus its monthly and category accruals.
func queueTransaction(batch *pgx.Batch, txn *model.Transaction) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	batch.Queue(insertTransactionSQL,
		txn.ID, txn.CardID, txn.RuleID, txn.MCCCode, txn.Merchant, txn.Amount, txn.EstCashback,
		txn.CashbackMonth, txn.StatementMonth, txn.Date,
	)
	batch.Queue(accrueMonthlySQL,
		uuid.NewString(), txn.CardID, txn.CashbackMonth, txn.Amount, txn.EstCashback)
	if txn.RuleID != "" {
		batch.Queue(accrueCategorySQL,
			uuid.NewString(), txn.CardID, txn.CashbackMonth, txn.RuleID, txn.EstCashback)
	}
}

func readTransaction(br pgx.BatchResults, txn *model.Transaction) error {
	if err := br.QueryRow().Scan(&txn.CreatedAt); err != nil {
		return err
	}
	if _, err := br.Exec(); err != nil {
		return fmt.Errorf("accrue monthly summary: %w", err)
	}
	if txn.RuleID != "" {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("accrue category summary: %w", err)
		}
	}
	return nil
}

// Insert stores txn and adds its spend and cashback to the month's summaries
// in one database transaction.
func (r *TransactionRepository) Insert(ctx context.Context, txn *model.Transaction) error {
	return r.InsertBatch(ctx, []*model.Transaction{txn})
}

func (r *TransactionRepository) InsertBatch(ctx context.Context, txns []*model.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, txn := range txns {
		queueTransaction(batch, txn)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range txns {
		if err := readTransaction(br, txns[i]); err != nil {
			br.Close()
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// SumByStatementMonth totals a card's spend and estimated cashback for
// transactions billed on the given statement month.
func (r *TransactionRepository) SumByStatementMonth(ctx context.Context, cardID, month string) (spend, cashback float64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(est_cashback), 0)
		FROM transactions WHERE card_id = $1 AND statement_month = $2`,
		cardID, month).Scan(&spend, &cashback)
	return spend, cashback, err
}

func (r *TransactionRepository) ListByCashbackMonth(ctx context.Context, cardID, month string) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, card_id, COALESCE(rule_id, ''), mcc_code, merchant, amount, est_cashback,
			cashback_month, statement_month, transaction_date, created_at
		FROM transactions
		WHERE card_id = $1 AND cashback_month = $2
		ORDER BY transaction_date, created_at`, cardID, month)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.CardID, &t.RuleID, &t.MCCCode, &t.Merchant, &t.Amount,
			&t.EstCashback, &t.CashbackMonth, &t.StatementMonth, &t.Date, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
