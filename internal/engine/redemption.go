package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Period is one outstanding monthly balance offered to the allocator.
type Period struct {
	ID              string  `json:"id"`
	Month           string  `json:"month"`
	Total           float64 `json:"total"`
	AlreadyRedeemed float64 `json:"already_redeemed"`
	Notes           string  `json:"notes,omitempty"`
}

func (p Period) Available() float64 {
	return math.Max(0, p.Total-p.AlreadyRedeemed)
}

type Delta struct {
	PeriodID          string  `json:"period_id"`
	Month             string  `json:"month"`
	Taken             float64 `json:"taken"`
	NewAmountRedeemed float64 `json:"new_amount_redeemed"`
	Notes             string  `json:"notes,omitempty"`
}

type Allocation struct {
	Deltas      []Delta `json:"deltas"`
	Requested   float64 `json:"requested"`
	Allocated   float64 `json:"allocated"`
	Unallocated float64 `json:"unallocated"`
}

// Outstanding sums what is still redeemable across periods.
func Outstanding(periods []Period) float64 {
	sum := decimal.Zero
	for _, p := range periods {
		if avail := decimal.NewFromFloat(p.Total).Sub(decimal.NewFromFloat(p.AlreadyRedeemed)); avail.IsPositive() {
			sum = sum.Add(avail)
		}
	}
	return sum.InexactFloat64()
}

// AllocateRedemption spreads amount across periods oldest first. periods
// must already be in chronological order. Anything left once every period
// is exhausted is reported as Unallocated and otherwise dropped. A non-empty
// note is appended to each touched period's notes.
func AllocateRedemption(amount float64, periods []Period, note string) Allocation {
	out := Allocation{Deltas: []Delta{}}
	if !ValidAmount(amount) {
		return out
	}
	out.Requested = amount

	remaining := decimal.NewFromFloat(amount)
	allocated := decimal.Zero

	for _, p := range periods {
		if !remaining.IsPositive() {
			break
		}
		redeemed := decimal.NewFromFloat(p.AlreadyRedeemed)
		available := decimal.NewFromFloat(p.Total).Sub(redeemed)
		take := decimal.Min(available, remaining)
		if !take.IsPositive() {
			continue
		}

		out.Deltas = append(out.Deltas, Delta{
			PeriodID:          p.ID,
			Month:             p.Month,
			Taken:             take.InexactFloat64(),
			NewAmountRedeemed: redeemed.Add(take).InexactFloat64(),
			Notes:             annotate(p.Notes, take, note),
		})
		remaining = remaining.Sub(take)
		allocated = allocated.Add(take)
	}

	out.Allocated = allocated.InexactFloat64()
	out.Unallocated = remaining.InexactFloat64()
	return out
}

func annotate(existing string, take decimal.Decimal, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	entry := fmt.Sprintf("[Redeemed %s: %s]", take.StringFixed(2), note)
	if strings.TrimSpace(existing) == "" {
		return entry
	}
	return existing + "\n" + entry
}
