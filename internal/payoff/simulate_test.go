package payoff

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"budgetbalancer/internal/core"
)

var testStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func debt(id int64, name string, balance, rate, min float64) core.Debt {
	return core.Debt{ID: id, Name: name, Balance: balance, InterestRate: rate, MinPayment: min}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"avalanche", Avalanche, false},
		{"snowball", Snowball, false},
		{"", 0, true},
		{"Avalanche", 0, true},
		{"hybrid", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			var invalid *InvalidStrategyError
			if !errors.As(err, &invalid) {
				t.Errorf("ParseStrategy(%q) error = %v, want InvalidStrategyError", tt.in, err)
			} else if invalid.Given != tt.in {
				t.Errorf("ParseStrategy(%q) Given = %q", tt.in, invalid.Given)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestCalculateRejectsEmptyDebts(t *testing.T) {
	_, err := Calculate(Input{Strategy: Avalanche, MonthlyBudget: 100, Start: testStart})
	if !errors.Is(err, ErrNoDebts) {
		t.Fatalf("err = %v, want ErrNoDebts", err)
	}
}

func TestCalculateRejectsInsufficientBudget(t *testing.T) {
	_, err := Calculate(Input{
		Debts:         []core.Debt{debt(1, "card", 1000, 15, 50), debt(2, "loan", 2000, 8, 75)},
		Strategy:      Avalanche,
		MonthlyBudget: 100,
		Start:         testStart,
	})
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientFundsError", err)
	}
	if insufficient.Budget != 100 || insufficient.MinimumRequired != 125 {
		t.Errorf("got Budget=%v MinimumRequired=%v, want 100 and 125", insufficient.Budget, insufficient.MinimumRequired)
	}
}

func TestCalculateSingleDebtFirstMonth(t *testing.T) {
	plan, err := Calculate(Input{
		Debts:         []core.Debt{debt(1, "card", 1000, 15, 50)},
		Strategy:      Avalanche,
		MonthlyBudget: 50,
		Start:         testStart,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.MonthlyBreakdown) == 0 {
		t.Fatal("empty schedule")
	}

	// Month one: interest 12.50 accrues to 1012.50, the 50 payment leaves 962.50.
	first := plan.MonthlyBreakdown[0]
	if first.Month != 1 {
		t.Errorf("first month = %d, want 1", first.Month)
	}
	if first.Date != "2026-01-01" {
		t.Errorf("first date = %q, want 2026-01-01", first.Date)
	}
	if !approx(first.TotalPaid, 50, 1e-9) {
		t.Errorf("total paid = %v, want 50", first.TotalPaid)
	}
	if !approx(first.RemainingBalance, 962.50, 1e-9) {
		t.Errorf("remaining balance = %v, want 962.50", first.RemainingBalance)
	}

	second := plan.MonthlyBreakdown[1]
	if second.Date != "2026-01-31" {
		t.Errorf("second date = %q, want 2026-01-31 (thirty day months)", second.Date)
	}
}

func TestCalculateConservation(t *testing.T) {
	debts := []core.Debt{
		debt(1, "card", 4500, 22.5, 90),
		debt(2, "loan", 12000, 6.8, 250),
		debt(3, "store", 800, 29.9, 35),
	}
	for _, strategy := range []Strategy{Avalanche, Snowball} {
		t.Run(strategy.String(), func(t *testing.T) {
			plan, err := Calculate(Input{Debts: debts, Strategy: strategy, MonthlyBudget: 600, Start: testStart})
			if err != nil {
				t.Fatal(err)
			}

			var paid float64
			for _, m := range plan.MonthlyBreakdown {
				var monthPaid float64
				for _, p := range m.Payments {
					monthPaid += p.Amount
				}
				if monthPaid > 600+1e-9 {
					t.Errorf("month %d paid %v, exceeds budget", m.Month, monthPaid)
				}
				if !approx(monthPaid, m.TotalPaid, 1e-9) {
					t.Errorf("month %d TotalPaid %v != sum of payments %v", m.Month, m.TotalPaid, monthPaid)
				}
				paid += monthPaid
			}

			// Everything paid equals principal plus interest, modulo the
			// sub-cent residue the threshold lets each debt strand.
			principal := 4500.0 + 12000.0 + 800.0
			if !approx(paid, principal+plan.TotalInterest, zeroThreshold*float64(len(debts))) {
				t.Errorf("paid %v, want principal+interest %v", paid, principal+plan.TotalInterest)
			}

			var summedInterest float64
			for _, s := range plan.DebtSummaries {
				summedInterest += s.TotalInterestPaid
				if s.PayoffMonth < 1 || s.PayoffMonth > len(plan.MonthlyBreakdown) {
					t.Errorf("debt %d payoff month %d out of range", s.DebtID, s.PayoffMonth)
				}
			}
			if !approx(summedInterest, plan.TotalInterest, 1e-6) {
				t.Errorf("summary interest %v != plan total %v", summedInterest, plan.TotalInterest)
			}

			last := plan.MonthlyBreakdown[len(plan.MonthlyBreakdown)-1]
			if last.RemainingBalance >= zeroThreshold {
				t.Errorf("final remaining balance %v not extinguished", last.RemainingBalance)
			}
			if plan.PayoffDate != last.Date {
				t.Errorf("payoff date %q != last month date %q", plan.PayoffDate, last.Date)
			}
		})
	}
}

func TestCalculateAvalancheTargetsHighestRate(t *testing.T) {
	plan, err := Calculate(Input{
		Debts: []core.Debt{
			debt(1, "low rate", 5000, 5, 100),
			debt(2, "high rate", 5000, 25, 100),
		},
		Strategy:      Avalanche,
		MonthlyBudget: 500,
		Start:         testStart,
	})
	if err != nil {
		t.Fatal(err)
	}

	first := plan.MonthlyBreakdown[0]
	got := paymentFor(t, first, 2)
	// 100 minimum plus the 300 surplus, merged into one record.
	if !approx(got, 400, 1e-9) {
		t.Errorf("high rate debt received %v in month one, want 400", got)
	}
	if n := len(first.Payments); n != 2 {
		t.Errorf("month one has %d payment records, want 2 (surplus merged)", n)
	}
}

func TestCalculateSnowballTargetsLowestBalance(t *testing.T) {
	plan, err := Calculate(Input{
		Debts: []core.Debt{
			debt(1, "big", 8000, 25, 150),
			debt(2, "small", 600, 5, 25),
		},
		Strategy:      Snowball,
		MonthlyBudget: 400,
		Start:         testStart,
	})
	if err != nil {
		t.Fatal(err)
	}

	first := plan.MonthlyBreakdown[0]
	got := paymentFor(t, first, 2)
	if !approx(got, 250, 1e-9) {
		t.Errorf("small debt received %v in month one, want 250 (25 minimum + 225 surplus)", got)
	}

	// Once the small debt clears, the surplus rolls to the remaining one.
	var smallPayoff int
	for _, s := range plan.DebtSummaries {
		if s.DebtID == 2 {
			smallPayoff = s.PayoffMonth
		}
	}
	if smallPayoff == 0 {
		t.Fatal("small debt never paid off")
	}
	after := plan.MonthlyBreakdown[smallPayoff] // month after payoff, zero-indexed
	if len(after.Payments) != 1 || after.Payments[0].DebtID != 1 {
		t.Errorf("month %d payments = %+v, want single payment to debt 1", smallPayoff+1, after.Payments)
	}
}

func TestCalculateSurplusDoesNotCascade(t *testing.T) {
	// The surplus clears the priority debt mid-month with room to spare; the
	// leftover must not flow to the second debt until next month.
	plan, err := Calculate(Input{
		Debts: []core.Debt{
			debt(1, "tiny", 100, 30, 10),
			debt(2, "other", 5000, 10, 100),
		},
		Strategy:      Snowball,
		MonthlyBudget: 1000,
		Start:         testStart,
	})
	if err != nil {
		t.Fatal(err)
	}

	first := plan.MonthlyBreakdown[0]
	if got := paymentFor(t, first, 1); !approx(got, 102.50, 1e-9) {
		t.Errorf("tiny debt received %v, want 102.50 (full accrued balance)", got)
	}
	if got := paymentFor(t, first, 2); !approx(got, 100, 1e-9) {
		t.Errorf("other debt received %v in month one, want bare minimum 100", got)
	}
}

func TestCalculateAvalancheOrderFixedUpFront(t *testing.T) {
	// Equal rates keep their input order for the entire plan.
	plan, err := Calculate(Input{
		Debts: []core.Debt{
			debt(1, "first", 3000, 18, 60),
			debt(2, "second", 1000, 18, 40),
		},
		Strategy:      Avalanche,
		MonthlyBudget: 300,
		Start:         testStart,
	})
	if err != nil {
		t.Fatal(err)
	}
	first := plan.MonthlyBreakdown[0]
	if !approx(paymentFor(t, first, 1), 260, 1e-9) {
		t.Errorf("debt 1 received %v, want 260 despite debt 2's smaller balance", paymentFor(t, first, 1))
	}
}

func TestCalculatePayoffExceeded(t *testing.T) {
	// Interest outpaces the budget, so balances grow without bound.
	_, err := Calculate(Input{
		Debts:         []core.Debt{debt(1, "runaway", 1_000_000, 50, 100)},
		Strategy:      Avalanche,
		MonthlyBudget: 100,
		Start:         testStart,
	})
	var exceeded *PayoffExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("err = %v, want PayoffExceededError", err)
	}
	if exceeded.Years != 100 {
		t.Errorf("Years = %d, want 100", exceeded.Years)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{
		Debts: []core.Debt{
			debt(1, "a", 2500, 19.9, 50),
			debt(2, "b", 2500, 19.9, 50),
			debt(3, "c", 700, 4, 20),
		},
		Strategy:      Snowball,
		MonthlyBudget: 300,
		Start:         testStart,
	}
	first, err := Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different plans")
	}
}

func TestCalculateInputDebtsUntouched(t *testing.T) {
	debts := []core.Debt{debt(1, "card", 1000, 15, 50)}
	if _, err := Calculate(Input{Debts: debts, Strategy: Avalanche, MonthlyBudget: 200, Start: testStart}); err != nil {
		t.Fatal(err)
	}
	if debts[0].Balance != 1000 {
		t.Errorf("input balance mutated to %v", debts[0].Balance)
	}
}

func paymentFor(t *testing.T, m MonthlyPayment, debtID int64) float64 {
	t.Helper()
	for _, p := range m.Payments {
		if p.DebtID == debtID {
			return p.Amount
		}
	}
	t.Fatalf("month %d has no payment for debt %d", m.Month, debtID)
	return 0
}
