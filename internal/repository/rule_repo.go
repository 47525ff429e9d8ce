package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

const ruleColumns = `id, card_id, rule_name, rate, tier2_rate, category_limit, tier2_category_limit,
	transaction_limit, secondary_transaction_criteria, secondary_transaction_limit, status,
	mcc_codes, excluded_mcc_codes, is_default, categories`

type RuleRepository struct {
	pool *pgxpool.Pool
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

func scanRule(row pgx.Row) (model.Rule, error) {
	var r model.Rule
	err := row.Scan(&r.ID, &r.CardID, &r.RuleName, &r.Rate, &r.Tier2Rate, &r.CategoryLimit,
		&r.Tier2CategoryLimit, &r.TransactionLimit, &r.SecondaryTransactionCriteria,
		&r.SecondaryTransactionLimit, &r.Status, &r.MCCCodes, &r.ExcludedMCCCodes, &r.IsDefault,
		&r.Categories)
	return r, err
}

// List returns rules for all cards, or only cardID's rules when it is set.
func (r *RuleRepository) List(ctx context.Context, cardID string) ([]model.Rule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM rules
		WHERE ($1 = '' OR card_id = $1)
		ORDER BY card_id, rule_name`, cardID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []model.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
