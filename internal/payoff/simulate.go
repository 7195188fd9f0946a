package payoff

import (
	"math"
	"sort"
	"time"

	"budgetbalancer/internal/core"
)

// Calculate runs the payoff simulation and returns the full plan. The two
// strategies share one simulation loop and differ only in how the working
// set is ordered: avalanche fixes a highest-rate-first order once up front,
// snowball re-sorts lowest-balance-first at the top of every month.
func Calculate(in Input) (*Plan, error) {
	if len(in.Debts) == 0 {
		return nil, ErrNoDebts
	}

	var totalMin float64
	for _, d := range in.Debts {
		totalMin += d.MinPayment
	}
	if in.MonthlyBudget < totalMin {
		return nil, &InsufficientFundsError{Budget: in.MonthlyBudget, MinimumRequired: totalMin}
	}

	states := newWorkingSet(in.Debts)
	switch in.Strategy {
	case Avalanche:
		sort.SliceStable(states, func(i, j int) bool {
			return states[i].interestRate > states[j].interestRate
		})
	case Snowball:
		// ordered inside the loop
	default:
		return nil, &InvalidStrategyError{Given: in.Strategy.String()}
	}

	start := in.Start
	if start.IsZero() {
		start = time.Now()
	}

	var (
		schedule      []MonthlyPayment
		totalInterest float64
		month         int
	)

	for anyActive(states) {
		month++
		if month > maxPayoffYears*monthsPerYear {
			return nil, &PayoffExceededError{Years: maxPayoffYears}
		}

		if in.Strategy == Snowball {
			sortSnowball(states)
		}

		// Interest accrues on every open balance before any payment lands.
		for _, d := range states {
			if !d.active() {
				continue
			}
			interest := MonthlyInterest(d.balance, d.interestRate)
			d.balance += interest
			d.totalInterestPaid += interest
			totalInterest += interest
		}

		remaining := in.MonthlyBudget
		var payments []PaymentDetail

		for _, d := range states {
			if !d.active() {
				continue
			}
			pay := math.Min(d.minPayment, d.balance)
			d.balance -= pay
			remaining -= pay
			payments = append(payments, PaymentDetail{DebtID: d.id, DebtName: d.name, Amount: pay})
			if d.balance < zeroThreshold && d.payoffMonth == 0 {
				d.payoffMonth = month
			}
		}

		// Whatever the minimums left over goes to the single highest-priority
		// open debt. No cascade: a surplus that clears that debt waits until
		// next month before touching the next one.
		if remaining > zeroThreshold {
			for _, d := range states {
				if !d.active() {
					continue
				}
				extra := math.Min(remaining, d.balance)
				d.balance -= extra
				merged := false
				for i := range payments {
					if payments[i].DebtID == d.id {
						payments[i].Amount += extra
						merged = true
						break
					}
				}
				if !merged {
					payments = append(payments, PaymentDetail{DebtID: d.id, DebtName: d.name, Amount: extra})
				}
				if d.balance < zeroThreshold && d.payoffMonth == 0 {
					d.payoffMonth = month
				}
				break
			}
		}

		var totalPaid, remainingBalance float64
		for _, p := range payments {
			totalPaid += p.Amount
		}
		for _, d := range states {
			remainingBalance += d.balance
		}

		schedule = append(schedule, MonthlyPayment{
			Month:            month,
			Date:             monthDate(start, month),
			Payments:         payments,
			TotalPaid:        totalPaid,
			RemainingBalance: remainingBalance,
		})
	}

	payoffDate := start.Format(core.DateLayout)
	if len(schedule) > 0 {
		payoffDate = schedule[len(schedule)-1].Date
	}

	return &Plan{
		Strategy:         in.Strategy.String(),
		PayoffDate:       payoffDate,
		TotalInterest:    totalInterest,
		MonthlyBreakdown: schedule,
		DebtSummaries:    summarize(in.Debts, states),
	}, nil
}

func anyActive(states []*debtState) bool {
	for _, d := range states {
		if d.active() {
			return true
		}
	}
	return false
}

// sortSnowball orders open debts by ascending balance, keeping insertion
// order between equal balances, with settled debts trailing.
func sortSnowball(states []*debtState) {
	sort.SliceStable(states, func(i, j int) bool {
		a, b := states[i], states[j]
		if a.active() != b.active() {
			return a.active()
		}
		return a.balance < b.balance
	})
}

// monthDate returns the calendar date of the m-th simulated month. Months
// are modeled as fixed 30-day periods rather than calendar months.
func monthDate(start time.Time, m int) string {
	return start.AddDate(0, 0, 30*(m-1)).Format(core.DateLayout)
}

// summarize reports per-debt outcomes in the caller's original debt order,
// independent of the strategy's internal ordering.
func summarize(debts []core.Debt, states []*debtState) []DebtSummary {
	byID := make(map[int64]*debtState, len(states))
	for _, d := range states {
		byID[d.id] = d
	}
	summaries := make([]DebtSummary, 0, len(debts))
	for _, d := range debts {
		s := byID[d.ID]
		summaries = append(summaries, DebtSummary{
			DebtID:            s.id,
			DebtName:          s.name,
			PayoffMonth:       s.payoffMonth,
			TotalInterestPaid: s.totalInterestPaid,
		})
	}
	return summaries
}
