package database

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/cashback-settlement/internal/engine"
	"github.com/anyulbade/cashback-settlement/internal/model"
	"github.com/anyulbade/cashback-settlement/internal/repository"
	"github.com/anyulbade/cashback-settlement/internal/service"
)

// SeedMonths is how many cashback months of demo transactions are generated,
// ending with the month containing now.
const SeedMonths = 6

var seedCards = []model.Card{
	{ID: "card-everyday", Name: "Everyday Rewards", Bank: "Harbor Bank", Status: model.CardActive, StatementDay: 20, PaymentDueDay: 15,
		OverallMonthlyLimit: 300, CashbackType: model.CashbackSingle, Tier1PaymentType: "M+1"},
	{ID: "card-dining", Name: "Dining Plus", Bank: "Metro Credit", Status: model.CardActive, StatementDay: 1, PaymentDueDay: 25,
		MinimumMonthlySpend: 500, OverallMonthlyLimit: 500, CashbackType: model.CashbackTwoTier, Tier2MinSpend: 2000, Tier2Limit: 800,
		Tier1PaymentType: "M0", Tier2PaymentType: "M+1"},
	{ID: "card-points", Name: "Miles Points", Bank: "Skyline Bank", Status: model.CardActive, StatementDay: 5, PaymentDueDay: 28,
		CashbackType: model.CashbackSingle, Tier1PaymentType: "Points"},
	{ID: "card-calendar", Name: "Calendar Cash", Bank: "Union Savings", Status: model.CardActive, StatementDay: 10, PaymentDueDay: 5,
		OverallMonthlyLimit: 200, CashbackType: model.CashbackSingle, Tier1PaymentType: "M+2", UseStatementMonthForPayments: true},
	{ID: "card-legacy", Name: "Legacy Classic", Bank: "Harbor Bank", Status: model.CardClosed, StatementDay: 12, PaymentDueDay: 2,
		CashbackType: model.CashbackSingle},
}

var seedRules = []model.Rule{
	{ID: "ev-grocery", CardID: "card-everyday", RuleName: "Groceries", Rate: 0.05, CategoryLimit: 100, TransactionLimit: 20,
		MCCCodes: []string{"5411", "5422"}, Status: model.RuleActive},
	{ID: "ev-petrol", CardID: "card-everyday", RuleName: "Petrol", Rate: 0.03, CategoryLimit: 50,
		MCCCodes: []string{"5541", "5542"}, Status: model.RuleActive},
	{ID: "ev-base", CardID: "card-everyday", RuleName: "Everything Else", Rate: 0.01, IsDefault: true,
		ExcludedMCCCodes: []string{"5541", "5542"}, Status: model.RuleActive},
	{ID: "dn-dining", CardID: "card-dining", RuleName: "Dining", Rate: 0.06, Tier2Rate: 0.10, CategoryLimit: 200, Tier2CategoryLimit: 400,
		MCCCodes: []string{"5812", "5813", "5814"}, Categories: []string{"Dining", "Cafe"}, Status: model.RuleActive},
	{ID: "dn-online", CardID: "card-dining", RuleName: "Online", Rate: 0.02, Tier2Rate: 0.05, TransactionLimit: 15,
		SecondaryTransactionCriteria: 1000, SecondaryTransactionLimit: 40,
		MCCCodes: []string{"5311", "5399", "5964"}, Categories: []string{"Online", "Ewallet"}, Status: model.RuleActive},
	{ID: "pt-travel", CardID: "card-points", RuleName: "Travel", Rate: 0.04,
		MCCCodes: []string{"3000", "4511", "7011"}, Status: model.RuleActive},
	{ID: "pt-base", CardID: "card-points", RuleName: "Everything Else", Rate: 0.015, IsDefault: true, Status: model.RuleActive},
	{ID: "cal-transit", CardID: "card-calendar", RuleName: "Transit", Rate: 0.05, CategoryLimit: 60,
		MCCCodes: []string{"4111", "4121", "4131"}, Status: model.RuleActive},
	{ID: "cal-grocery", CardID: "card-calendar", RuleName: "Groceries", Rate: 0.03, CategoryLimit: 80,
		MCCCodes: []string{"5411"}, Status: model.RuleInactive},
	{ID: "lg-base", CardID: "card-legacy", RuleName: "Everything", Rate: 0.02, IsDefault: true, Status: model.RuleActive},
}

// otherMCCs feed the broad rules.
var otherMCCs = []string{"5999", "5732", "5651", "4899"}

// SeedData loads a demo card portfolio with SeedMonths of transactions
// ending at now. Older months are marked as credited, billed and paid so
// every statement and ledger state is represented. It does nothing when
// cards already exist.
func SeedData(ctx context.Context, pool *pgxpool.Pool, now time.Time) error {
	rng := rand.New(rand.NewSource(42))

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM cards").Scan(&count); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return err
	}

	txns := generateTransactions(rng, now)
	if err := repository.NewTransactionRepository(pool).InsertBatch(ctx, txns); err != nil {
		return fmt.Errorf("insert seed transactions: %w", err)
	}
	log.Info().Int("count", len(txns)).Msg("inserted transactions")

	if err := settleHistory(ctx, pool, model.MonthOf(now)); err != nil {
		return err
	}

	log.Info().Msg("seed data generation complete")
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range seedCards {
		batch.Queue(`INSERT INTO cards (id, name, bank, status, statement_day, payment_due_day, minimum_monthly_spend,
				overall_monthly_limit, cashback_type, tier2_min_spend, tier2_limit, tier1_payment_type, tier2_payment_type,
				use_statement_month_for_payments)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			c.ID, c.Name, c.Bank, c.Status, c.StatementDay, c.PaymentDueDay, c.MinimumMonthlySpend,
			c.OverallMonthlyLimit, c.CashbackType, c.Tier2MinSpend, c.Tier2Limit, c.Tier1PaymentType, c.Tier2PaymentType,
			c.UseStatementMonthForPayments)
	}
	for _, r := range seedRules {
		batch.Queue(`INSERT INTO rules (id, card_id, rule_name, rate, tier2_rate, category_limit, tier2_category_limit,
				transaction_limit, secondary_transaction_criteria, secondary_transaction_limit, status, mcc_codes,
				excluded_mcc_codes, is_default, categories)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			r.ID, r.CardID, r.RuleName, r.Rate, r.Tier2Rate, r.CategoryLimit, r.Tier2CategoryLimit,
			r.TransactionLimit, r.SecondaryTransactionCriteria, r.SecondaryTransactionLimit, r.Status, nonNil(r.MCCCodes),
			nonNil(r.ExcludedMCCCodes), r.IsDefault, nonNil(r.Categories))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert cards and rules: %w", err)
	}
	log.Info().Int("cards", len(seedCards)).Int("rules", len(seedRules)).Msg("inserted card catalog")

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit card catalog: %w", err)
	}
	return nil
}

// generateTransactions spreads purchases over the last SeedMonths calendar
// months. Cashback is the rule's transaction-capped amount; monthly and
// category caps are left to accrue freely so progress bars show every state.
func generateTransactions(rng *rand.Rand, now time.Time) []*model.Transaction {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var txns []*model.Transaction

	for _, card := range seedCards {
		if card.Status == model.CardClosed {
			continue
		}
		rules := rulesFor(card.ID)

		for back := SeedMonths - 1; back >= 0; back-- {
			monthStart := first.AddDate(0, -back, 0)
			days := 28
			if back == 0 {
				days = now.Day()
			}

			n := 8 + rng.Intn(7)
			for i := 0; i < n; i++ {
				rule := rules[rng.Intn(len(rules))]
				mcc := pickMCC(rng, rule)
				date := monthStart.AddDate(0, 0, rng.Intn(days)).
					Add(time.Duration(9+rng.Intn(12)) * time.Hour)
				if date.After(now) {
					date = now
				}
				amount := math.Round((15+rng.Float64()*385)*100) / 100

				txn := &model.Transaction{
					CardID:         card.ID,
					MCCCode:        mcc,
					Merchant:       fmt.Sprintf("merchant_%03d", rng.Intn(40)+1),
					Amount:         amount,
					CashbackMonth:  service.CashbackMonth(card, date),
					StatementMonth: service.StatementMonth(card, date),
					Date:           date,
				}
				if rule.Status == model.RuleActive {
					txn.RuleID = rule.ID
					txn.EstCashback = math.Round(engine.CappedCashback(rule, amount, rule.Rate)*100) / 100
				}
				txns = append(txns, txn)
			}
		}
	}
	return txns
}

func rulesFor(cardID string) []model.Rule {
	var out []model.Rule
	for _, r := range seedRules {
		if r.CardID == cardID {
			out = append(out, r)
		}
	}
	return out
}

func pickMCC(rng *rand.Rand, rule model.Rule) string {
	if len(rule.MCCCodes) > 0 {
		return rule.MCCCodes[rng.Intn(len(rule.MCCCodes))]
	}
	return otherMCCs[rng.Intn(len(otherMCCs))]
}

// settleHistory credits months two or more back, marks months three or more
// back as paid and reviewed, and redeems months five or more back.
func settleHistory(ctx context.Context, pool *pgxpool.Pool, current string) error {
	steps := []struct {
		back int
		sql  string
	}{
		{2, `UPDATE monthly_summaries SET actual_cashback = cashback, statement_amount = spend WHERE month <= $1`},
		{3, `UPDATE monthly_summaries SET paid_amount = statement_amount, reviewed = TRUE WHERE month <= $1`},
		{5, `UPDATE monthly_summaries SET amount_redeemed = actual_cashback WHERE month <= $1`},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range steps {
		cutoff, err := model.AddMonths(current, -s.back)
		if err != nil {
			return fmt.Errorf("cutoff month: %w", err)
		}
		if _, err := tx.Exec(ctx, s.sql, cutoff); err != nil {
			return fmt.Errorf("settle months up to %s: %w", cutoff, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit settled history: %w", err)
	}
	log.Info().Str("current", current).Msg("settled seed history")
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
