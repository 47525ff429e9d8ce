package engine

import (
	"sort"
	"time"

	"github.com/anyulbade/cashback-settlement/internal/model"
)

// Statement is a monthly summary placed on the card's billing calendar.
// Credits is cashback from earlier months paid out onto this statement.
type Statement struct {
	model.MonthlySummary

	CardName      string           `json:"card_name"`
	CardStatus    model.CardStatus `json:"card_status"`
	StatementDate time.Time        `json:"statement_date"`
	PaymentDate   time.Time        `json:"payment_date"`
	DaysLeft      *int             `json:"days_left"`
	Credits       float64          `json:"credits"`
	Synthetic     bool             `json:"synthetic,omitempty"`
}

func (s Statement) EstimatedBalance() float64 {
	return s.Spend - s.Credits
}

// EffectiveBalance prefers the bank-confirmed amount once it is set.
func (s Statement) EffectiveBalance() float64 {
	if s.StatementAmount > 0 {
		return s.StatementAmount
	}
	return s.EstimatedBalance()
}

func (s Statement) Remaining() float64 {
	return s.EffectiveBalance() - s.PaidAmount
}

func (s Statement) Unpaid() bool {
	return s.StatementAmount-s.PaidAmount > 0
}

func (s Statement) InWindow(today time.Time) bool {
	t := StartOfDay(today)
	return !t.Before(s.StatementDate) && !t.After(s.PaymentDate)
}

// StatementCredits maps each statement month to the cashback landing on it.
// Tier-1 and tier-2 amounts follow the card's own payout types; points never
// credit a statement.
func StatementCredits(card model.Card, summaries []model.MonthlySummary) map[string]float64 {
	credits := map[string]float64{}
	t1, t2 := Tier1Payout(card), Tier2Payout(card)

	for _, s := range summaries {
		if s.CardID != card.ID {
			continue
		}
		split := SplitCashback(s.Total(), card.OverallMonthlyLimit)
		addCredit(credits, s.Month, t1, split.Tier1)
		addCredit(credits, s.Month, t2, split.Tier2)
	}
	return credits
}

func addCredit(credits map[string]float64, month string, payout PayoutType, amount float64) {
	if amount == 0 {
		return
	}
	offset, ok := payout.Offset()
	if !ok {
		return
	}
	target, err := model.AddMonths(month, offset)
	if err != nil {
		return
	}
	credits[target] += amount
}

// BuildStatements derives one statement per valid monthly summary of card.
func BuildStatements(card model.Card, summaries []model.MonthlySummary, today time.Time) []Statement {
	loc := today.Location()
	credits := StatementCredits(card, summaries)

	out := make([]Statement, 0, len(summaries))
	for _, s := range summaries {
		if s.CardID != card.ID {
			continue
		}
		dates, err := ComputeStatementDates(s.Month, card.StatementDay, card.PaymentDueDay, loc)
		if err != nil {
			continue
		}
		out = append(out, Statement{
			MonthlySummary: s,
			CardName:       card.Name,
			CardStatus:     card.Status,
			StatementDate:  dates.StatementDate,
			PaymentDate:    dates.PaymentDate,
			DaysLeft:       DaysLeft(dates.PaymentDate, today),
			Credits:        credits[model.NormalizeMonth(s.Month)],
		})
	}
	return out
}

type Partition struct {
	Main     *Statement  `json:"main"`
	Upcoming []Statement `json:"upcoming"`
	Past     []Statement `json:"past"`
}

// PartitionStatements selects a card's main statement and splits the rest
// into upcoming (due date not yet passed) and past.
func PartitionStatements(statements []Statement, today time.Time) Partition {
	var active []int
	for i, s := range statements {
		if s.InWindow(today) {
			active = append(active, i)
		}
	}

	if len(active) > 0 {
		mainIdx := active[0]
		for _, i := range active[1:] {
			if statements[i].PaymentDate.Before(statements[mainIdx].PaymentDate) {
				mainIdx = i
			}
		}
		main := statements[mainIdx]

		others := make([]Statement, 0, len(statements)-1)
		for i, s := range statements {
			if i != mainIdx {
				others = append(others, s)
			}
		}
		upcoming, past := splitByDue(others)
		return Partition{Main: &main, Upcoming: upcoming, Past: past}
	}

	upcoming, past := splitByDue(statements)
	p := Partition{Upcoming: upcoming, Past: past}

	if i := firstUnpaid(upcoming); i >= 0 {
		p.Main, p.Upcoming = take(upcoming, i)
	} else if i := firstUnpaid(past); i >= 0 {
		p.Main, p.Past = take(past, i)
	} else if len(upcoming) > 0 {
		p.Main, p.Upcoming = take(upcoming, 0)
	} else if len(past) > 0 {
		p.Main, p.Past = take(past, 0)
	}
	return p
}

func splitByDue(statements []Statement) (upcoming, past []Statement) {
	upcoming, past = []Statement{}, []Statement{}
	for _, s := range statements {
		if s.DaysLeft != nil {
			upcoming = append(upcoming, s)
		} else {
			past = append(past, s)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if *upcoming[i].DaysLeft != *upcoming[j].DaysLeft {
			return *upcoming[i].DaysLeft < *upcoming[j].DaysLeft
		}
		return upcoming[i].Month < upcoming[j].Month
	})
	sort.SliceStable(past, func(i, j int) bool {
		if !past[i].PaymentDate.Equal(past[j].PaymentDate) {
			return past[i].PaymentDate.After(past[j].PaymentDate)
		}
		return past[i].Month > past[j].Month
	})
	return upcoming, past
}

func firstUnpaid(statements []Statement) int {
	for i, s := range statements {
		if s.Unpaid() {
			return i
		}
	}
	return -1
}

func take(statements []Statement, i int) (*Statement, []Statement) {
	picked := statements[i]
	rest := make([]Statement, 0, len(statements)-1)
	rest = append(rest, statements[:i]...)
	rest = append(rest, statements[i+1:]...)
	return &picked, rest
}

// CardStatements is one card's partitioned statement history.
type CardStatements struct {
	Card model.Card `json:"card"`
	Partition
	PastDue []Statement `json:"past_due"`
}

func NewCardStatements(card model.Card, p Partition) CardStatements {
	pastDue := []Statement{}
	for _, s := range p.Past {
		if s.Unpaid() {
			pastDue = append(pastDue, s)
		}
	}
	return CardStatements{Card: card, Partition: p, PastDue: pastDue}
}

func (c CardStatements) NextUpcoming() *Statement {
	if len(c.Upcoming) == 0 {
		return nil
	}
	s := c.Upcoming[0]
	return &s
}

type AccountBuckets struct {
	PastDue   []CardStatements `json:"past_due"`
	Upcoming  []CardStatements `json:"upcoming"`
	Completed []CardStatements `json:"completed"`
	Closed    []CardStatements `json:"closed"`
}

// BucketAccounts places each card with a main statement into exactly one
// bucket. Closed cards always land in Closed.
func BucketAccounts(accounts []CardStatements) AccountBuckets {
	b := AccountBuckets{
		PastDue:   []CardStatements{},
		Upcoming:  []CardStatements{},
		Completed: []CardStatements{},
		Closed:    []CardStatements{},
	}
	for _, a := range accounts {
		if a.Main == nil {
			continue
		}
		if a.Card.Status == model.CardClosed {
			b.Closed = append(b.Closed, a)
			continue
		}
		remaining := a.Main.Remaining()
		switch {
		case remaining <= 0:
			b.Completed = append(b.Completed, a)
		case a.Main.DaysLeft == nil:
			b.PastDue = append(b.PastDue, a)
		default:
			b.Upcoming = append(b.Upcoming, a)
		}
	}
	return b
}

// SortAccounts orders cards with a live main statement first (soonest due),
// then the rest by most recent due date.
func SortAccounts(accounts []CardStatements) {
	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i].Main, accounts[j].Main
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		switch {
		case a.DaysLeft != nil && b.DaysLeft == nil:
			return true
		case a.DaysLeft == nil && b.DaysLeft != nil:
			return false
		case a.DaysLeft != nil && b.DaysLeft != nil:
			if *a.DaysLeft != *b.DaysLeft {
				return *a.DaysLeft < *b.DaysLeft
			}
		default:
			if !a.PaymentDate.Equal(b.PaymentDate) {
				return a.PaymentDate.After(b.PaymentDate)
			}
		}
		return accounts[i].Card.ID < accounts[j].Card.ID
	})
}
