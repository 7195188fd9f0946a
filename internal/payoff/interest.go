package payoff

import "math"

// MonthlyInterest returns one month of interest on balance at the given
// annual percentage rate. Non-positive balances and negative rates accrue
// nothing.
func MonthlyInterest(balance, annualRate float64) float64 {
	if balance <= 0 || annualRate < 0 {
		return 0
	}
	monthlyRate := annualRate / percentToDecimalDivisor / monthsPerYear
	return balance * monthlyRate
}

// TotalInterest derives the interest paid over a series of payments from
// the balance movement: whatever the payments covered beyond principal
// reduction was interest. Never negative.
func TotalInterest(initialBalance, finalBalance, totalPayments float64) float64 {
	if totalPayments <= 0 {
		return 0
	}
	principalPaid := initialBalance - finalBalance
	if totalPayments > principalPaid {
		return totalPayments - principalPaid
	}
	return 0
}

// EffectiveAnnualRate converts a nominal annual percentage rate with monthly
// compounding into the effective annual percentage rate.
func EffectiveAnnualRate(annualRate float64) float64 {
	monthlyRate := annualRate / percentToDecimalDivisor / monthsPerYear
	return (math.Pow(1+monthlyRate, monthsPerYear) - 1) * percentToDecimalDivisor
}

// ApplyPayment accrues one month of interest on balance and then applies
// payment. It returns the interest accrued, the portion of the payment that
// reduced principal, and the new balance. A payment larger than the accrued
// balance leaves the balance at zero rather than negative.
func ApplyPayment(balance, annualRate, payment float64) (interest, principal, newBalance float64) {
	interest = MonthlyInterest(balance, annualRate)
	accrued := balance + interest
	if payment >= accrued {
		return interest, balance, 0
	}
	principal = payment - interest
	return interest, principal, accrued - payment
}
