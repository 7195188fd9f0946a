package services

import (
	"testing"
	"time"

	"budgetbalancer/internal/core"
)

func fixedScheduler(t time.Time) *PaymentScheduler {
	s := NewPaymentScheduler()
	s.now = func() time.Time { return t }
	return s
}

func TestFutureSchedules(t *testing.T) {
	s := fixedScheduler(time.Date(2026, time.November, 20, 0, 0, 0, 0, time.UTC))
	debts := []core.Debt{
		{ID: 1, Name: "Card A", Balance: 1000, MinPayment: 50},
		{ID: 2, Name: "Card B", Balance: 2000, MinPayment: 75},
		{ID: 3, Name: "Paid off", Balance: 0, MinPayment: 0},
	}

	schedules := s.FutureSchedules(debts, 3)
	if len(schedules) != 3 {
		t.Fatalf("got %d schedules, want 3", len(schedules))
	}

	wantMonths := []string{"2026-11", "2026-12", "2027-01"}
	for i, sched := range schedules {
		if sched.Month != wantMonths[i] {
			t.Errorf("schedule[%d].Month = %q, want %q (year rollover)", i, sched.Month, wantMonths[i])
		}
		if sched.TotalAmount != 125 {
			t.Errorf("schedule[%d].TotalAmount = %v, want 125", i, sched.TotalAmount)
		}
		if len(sched.Payments) != 2 {
			t.Fatalf("schedule[%d] has %d payments, want 2 (zero balances excluded)", i, len(sched.Payments))
		}
	}

	first := schedules[0].Payments
	if first[0].DueDate != "2026-11-15" || first[1].DueDate != "2026-11-15" {
		t.Errorf("due dates = %q, %q, want 2026-11-15", first[0].DueDate, first[1].DueDate)
	}
	if !first[0].IsMinimum || first[0].Amount != 50 || first[1].Amount != 75 {
		t.Errorf("payments = %+v, want minimums of 50 and 75", first)
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before due day", time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC), "2026-05-15"},
		{"on due day", time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC), "2026-05-15"},
		{"after due day", time.Date(2026, time.May, 16, 0, 0, 0, 0, time.UTC), "2026-06-15"},
		{"december rollover", time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC), "2027-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixedScheduler(tt.now).NextDueDate(); got != tt.want {
				t.Errorf("NextDueDate() = %q, want %q", got, tt.want)
			}
		})
	}
}
