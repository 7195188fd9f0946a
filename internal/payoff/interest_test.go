package payoff

import (
	"math"
	"testing"
)

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestMonthlyInterest(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		rate    float64
		want    float64
	}{
		{"one thousand at fifteen percent", 1000, 15, 12.50},
		{"zero balance", 0, 20, 0},
		{"zero rate", 5000, 0, 0},
		{"small balance", 100, 12, 1},
		{"negative balance accrues nothing", -1000, 15, 0},
		{"negative rate accrues nothing", 1000, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyInterest(tt.balance, tt.rate)
			if !approx(got, tt.want, 1e-9) {
				t.Errorf("MonthlyInterest(%v, %v) = %v, want %v", tt.balance, tt.rate, got, tt.want)
			}
		})
	}
}

func TestTotalInterest(t *testing.T) {
	tests := []struct {
		name           string
		initial, final float64
		payments       float64
		want           float64
	}{
		{"paid off with interest", 1000, 0, 1150, 150},
		{"partial payoff", 1000, 500, 600, 100},
		{"no payments", 1000, 1000, 0, 0},
		{"payments below principal reduction", 1000, 0, 900, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalInterest(tt.initial, tt.final, tt.payments)
			if !approx(got, tt.want, 1e-9) {
				t.Errorf("TotalInterest(%v, %v, %v) = %v, want %v",
					tt.initial, tt.final, tt.payments, got, tt.want)
			}
		})
	}
}

func TestEffectiveAnnualRate(t *testing.T) {
	// 12% nominal compounded monthly is 12.6825% effective.
	got := EffectiveAnnualRate(12)
	if !approx(got, 12.6825, 0.0001) {
		t.Errorf("EffectiveAnnualRate(12) = %v, want 12.6825", got)
	}
	if got := EffectiveAnnualRate(0); got != 0 {
		t.Errorf("EffectiveAnnualRate(0) = %v, want 0", got)
	}
}

func TestApplyPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		interest, principal, balance := ApplyPayment(1000, 15, 50)
		if !approx(interest, 12.50, 1e-9) {
			t.Errorf("interest = %v, want 12.50", interest)
		}
		if !approx(principal, 37.50, 1e-9) {
			t.Errorf("principal = %v, want 37.50", principal)
		}
		if !approx(balance, 962.50, 1e-9) {
			t.Errorf("balance = %v, want 962.50", balance)
		}
	})

	t.Run("payment covers balance", func(t *testing.T) {
		interest, principal, balance := ApplyPayment(100, 12, 500)
		if !approx(interest, 1, 1e-9) {
			t.Errorf("interest = %v, want 1", interest)
		}
		if principal != 100 {
			t.Errorf("principal = %v, want 100", principal)
		}
		if balance != 0 {
			t.Errorf("balance = %v, want 0", balance)
		}
	})
}
