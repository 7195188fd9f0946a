// Package payoff implements the debt payoff planning engine.
//
// The engine is a pure function of its inputs: given a set of debts, a
// monthly budget and an allocation strategy, it simulates month-by-month
// amortization until every balance is extinguished and returns the full
// payment schedule. It performs no I/O and holds no state between calls, so
// concurrent invocations need no coordination and repeated calls with the
// same inputs produce identical plans.
package payoff

import (
	"time"

	"budgetbalancer/internal/core"
)

const (
	// zeroThreshold absorbs floating-point drift: a balance below this is
	// considered paid off.
	zeroThreshold = 0.01

	// maxPayoffYears caps the simulation; inputs that cannot converge
	// within this horizon fail with PayoffExceededError.
	maxPayoffYears = 100

	monthsPerYear           = 12
	percentToDecimalDivisor = 100.0
)

// Strategy selects how budget left over after minimum payments is allocated.
type Strategy int

const (
	// Avalanche targets the highest interest rate first. The ordering is
	// fixed once before the simulation starts.
	Avalanche Strategy = iota

	// Snowball targets the lowest remaining balance first, re-evaluated
	// every simulated month as balances shift.
	Snowball
)

func (s Strategy) String() string {
	switch s {
	case Avalanche:
		return "avalanche"
	case Snowball:
		return "snowball"
	default:
		return "unknown"
	}
}

// ParseStrategy converts the wire-level strategy name into a Strategy.
// Anything other than "avalanche" or "snowball" is an InvalidStrategyError.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "avalanche":
		return Avalanche, nil
	case "snowball":
		return Snowball, nil
	default:
		return 0, &InvalidStrategyError{Given: name}
	}
}

// Input is one planning request.
type Input struct {
	Debts         []core.Debt
	Strategy      Strategy
	MonthlyBudget float64

	// Start anchors the schedule's calendar dates (month m is dated
	// Start + 30*(m-1) days). The zero value means "now".
	Start time.Time
}

// Plan is the complete result of one planning call.
type Plan struct {
	Strategy         string           `json:"strategy"`
	PayoffDate       string           `json:"payoff_date"`
	TotalInterest    float64          `json:"total_interest"`
	MonthlyBreakdown []MonthlyPayment `json:"monthly_breakdown"`
	DebtSummaries    []DebtSummary    `json:"debt_summaries"`
}

// MonthlyPayment is one simulated month's breakdown.
type MonthlyPayment struct {
	Month            int             `json:"month"`
	Date             string          `json:"date"`
	Payments         []PaymentDetail `json:"payments"`
	TotalPaid        float64         `json:"total_paid"`
	RemainingBalance float64         `json:"remaining_balance"`
}

// PaymentDetail records what one debt received in a month.
type PaymentDetail struct {
	DebtID   int64   `json:"debt_id"`
	DebtName string  `json:"debt_name"`
	Amount   float64 `json:"amount"`
}

// DebtSummary aggregates one debt's outcome over the whole plan.
type DebtSummary struct {
	DebtID            int64   `json:"debt_id"`
	DebtName          string  `json:"debt_name"`
	PayoffMonth       int     `json:"payoff_month"`
	TotalInterestPaid float64 `json:"total_interest_paid"`
}

// debtState is the mutable per-call working state for one debt. It is built
// from the immutable input record and discarded when the call returns.
type debtState struct {
	id                int64
	name              string
	balance           float64
	interestRate      float64
	minPayment        float64
	totalInterestPaid float64
	payoffMonth       int // 0 until the balance first drops below threshold
}

func (d *debtState) active() bool {
	return d.balance >= zeroThreshold
}

func newWorkingSet(debts []core.Debt) []*debtState {
	states := make([]*debtState, len(debts))
	for i, d := range debts {
		states[i] = &debtState{
			id:           d.ID,
			name:         d.Name,
			balance:      d.Balance,
			interestRate: d.InterestRate,
			minPayment:   d.MinPayment,
		}
	}
	return states
}
