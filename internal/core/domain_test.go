package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDebtValidate(t *testing.T) {
	tests := []struct {
		name string
		debt NewDebt
		want error
	}{
		{"valid", NewDebt{Name: "Card", Balance: 1000, InterestRate: 18, MinPayment: 25}, nil},
		{"zero balance ok", NewDebt{Name: "Card", Balance: 0, InterestRate: 0, MinPayment: 0}, nil},
		{"empty name", NewDebt{Balance: 100}, ErrEmptyName},
		{"negative balance", NewDebt{Name: "Card", Balance: -1}, ErrInvalidBalance},
		{"negative min payment", NewDebt{Name: "Card", MinPayment: -5}, ErrInvalidMinPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.debt.Validate()
			if !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDebtValidateRateRange(t *testing.T) {
	for _, rate := range []float64{-0.1, 100.01, 250} {
		d := NewDebt{Name: "Card", Balance: 100, InterestRate: rate}
		var rateErr *InterestRateError
		if err := d.Validate(); !errors.As(err, &rateErr) {
			t.Errorf("rate %v: expected InterestRateError, got %v", rate, err)
		}
	}
	d := NewDebt{Name: "Card", Balance: 100, InterestRate: 100}
	if err := d.Validate(); err != nil {
		t.Errorf("rate 100 should be accepted, got %v", err)
	}
}

func TestNewTransactionValidate(t *testing.T) {
	base := NewTransaction{
		AccountID:   1,
		CategoryID:  1,
		Date:        "2025-06-15",
		Amount:      -42.50,
		Description: "Grocery run",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	bad := base
	bad.Date = "06/15/2025"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	bad = base
	bad.Description = "   "
	if err := bad.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}

	bad = base
	bad.Description = strings.Repeat("x", MaxDescriptionLength+1)
	if err := bad.Validate(); err == nil {
		t.Error("overlong description accepted")
	}

	bad = base
	bad.Amount = MaxTransactionAmount + 1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestNewSpendingTargetValidate(t *testing.T) {
	end := "2025-12-31"
	valid := NewSpendingTarget{CategoryID: 1, Amount: 300, Period: PeriodMonthly, StartDate: "2025-01-01", EndDate: &end}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid target rejected: %v", err)
	}

	bad := valid
	bad.Period = "weekly"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	before := "2024-12-31"
	bad = valid
	bad.EndDate = &before
	if err := bad.Validate(); err == nil {
		t.Error("end date before start date accepted")
	}
}

func TestTransactionHash(t *testing.T) {
	a := TransactionHash("2025-06-15", -12.34, "Coffee")
	b := TransactionHash("2025-06-15", -12.34, "Coffee")
	if a != b {
		t.Error("identical inputs must hash identically")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if c := TransactionHash("2025-06-16", -12.34, "Coffee"); c == a {
		t.Error("different date should change hash")
	}
	if c := TransactionHash("2025-06-15", -12.35, "Coffee"); c == a {
		t.Error("different amount should change hash")
	}
}
