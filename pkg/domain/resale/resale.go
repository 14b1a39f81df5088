// Package resale provides the resale-plan value objects shared by the
// investment lifecycle: the immutable plan snapshot copied into an investment
// at purchase time, and the order-level aggregation over resale line items.
//
// Invariants:
//   - A PlanSnapshot is written once and never mutated; later edits to the
//     plan template must not affect existing investments.
//   - All monetary arithmetic is decimal; rounding happens only at
//     presentation, never on intermediate sums.
package resale

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PlanSnapshot is a denormalized copy of a resale plan's terms taken at the
// moment an investment is created.
type PlanSnapshot struct {
	Months        int             // holding period in calendar months
	ProfitPercent decimal.Decimal // e.g. 10 for a 10% return
	Label         string          // human-readable plan name, e.g. "6-month resale"
}

// ExpectedReturn computes principal plus the plan's profit on it.
func (p PlanSnapshot) ExpectedReturn(principal decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(p.ProfitPercent).Div(oneHundred))
}

// MaturityDate returns the date the holding period ends for an investment
// made at investedAt.
func (p PlanSnapshot) MaturityDate(investedAt time.Time) time.Time {
	return investedAt.AddDate(0, p.Months, 0)
}

// ItemView is a read-only projection of a resale-flagged order line item.
// The aggregation works on these views rather than navigating the order
// object graph.
type ItemView struct {
	ExpectedReturn decimal.Decimal
	Months         int
	ProfitPercent  decimal.Decimal
}

// Summary is the derived order-level resale aggregate, used when no explicit
// order-level override is stored.
type Summary struct {
	ExpectedReturn decimal.Decimal // sum of item expected returns
	ReturnDate     time.Time       // investment date + max months across items
	ProfitPercent  decimal.Decimal // arithmetic mean of item percentages
}

// AggregateOrder derives the resale summary for an order from its resale
// line items. Returns nil when the order has no resale items.
func AggregateOrder(investedAt time.Time, items []ItemView) *Summary {
	if len(items) == 0 {
		return nil
	}
	total := decimal.Zero
	pctSum := decimal.Zero
	maxMonths := 0
	for _, it := range items {
		total = total.Add(it.ExpectedReturn)
		pctSum = pctSum.Add(it.ProfitPercent)
		if it.Months > maxMonths {
			maxMonths = it.Months
		}
	}
	return &Summary{
		ExpectedReturn: total,
		ReturnDate:     investedAt.AddDate(0, maxMonths, 0),
		ProfitPercent:  pctSum.Div(decimal.NewFromInt(int64(len(items)))),
	}
}
