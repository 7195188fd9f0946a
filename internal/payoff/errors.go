package payoff

import (
	"errors"
	"fmt"
)

// ErrNoDebts is returned when a plan is requested with an empty debt set.
var ErrNoDebts = errors.New("payoff: no debts provided")

// InsufficientFundsError reports a monthly budget that cannot cover the sum
// of the minimum payments.
type InsufficientFundsError struct {
	Budget          float64
	MinimumRequired float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("payoff: monthly budget %.2f is below the %.2f required to cover minimum payments", e.Budget, e.MinimumRequired)
}

// InvalidStrategyError reports a strategy name outside the supported set.
type InvalidStrategyError struct {
	Given string
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("payoff: unknown strategy %q (want avalanche or snowball)", e.Given)
}

// PayoffExceededError reports a simulation that did not converge within the
// safety horizon, which happens when interest accrual outpaces payments.
type PayoffExceededError struct {
	Years int
}

func (e *PayoffExceededError) Error() string {
	return fmt.Sprintf("payoff: balances not extinguished within %d years, payments cannot outpace interest", e.Years)
}
