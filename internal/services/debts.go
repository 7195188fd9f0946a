package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/payoff"
	"budgetbalancer/internal/storage"
)

// PayoffPlanResponse is a stored plan rendered against current balances.
type PayoffPlanResponse struct {
	PlanID int64 `json:"plan_id"`
	*payoff.Plan
}

// RecordPaymentResult confirms a recorded payment.
type RecordPaymentResult struct {
	PaymentID      int64   `json:"payment_id"`
	UpdatedBalance float64 `json:"updated_balance"`
}

// BalancePoint is one debt balance observation over time.
type BalancePoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// DebtProgress is one debt's payment history and balance trajectory.
type DebtProgress struct {
	Debt           core.Debt          `json:"debt"`
	Payments       []core.DebtPayment `json:"payments"`
	TotalPaid      float64            `json:"total_paid"`
	BalanceHistory []BalancePoint     `json:"balance_history"`
}

// StrategyOutcome summarizes one strategy's plan for comparison.
type StrategyOutcome struct {
	Strategy      string  `json:"strategy"`
	PayoffDate    string  `json:"payoff_date"`
	TotalInterest float64 `json:"total_interest"`
	PayoffMonths  int     `json:"payoff_months"`
}

// ComparisonSavings is what avalanche saves over snowball, floored at zero.
type ComparisonSavings struct {
	InterestSaved float64 `json:"interest_saved"`
	MonthsSaved   int     `json:"months_saved"`
}

// StrategyComparison holds both strategies' outcomes side by side.
type StrategyComparison struct {
	Avalanche StrategyOutcome   `json:"avalanche"`
	Snowball  StrategyOutcome   `json:"snowball"`
	Savings   ComparisonSavings `json:"savings"`
}

// PaymentError reports an invalid debt payment.
type PaymentError struct {
	Payment float64
	Balance float64
}

func (e *PaymentError) Error() string {
	if e.Payment <= 0 {
		return fmt.Sprintf("debt: payment amount %.2f must be positive", e.Payment)
	}
	return fmt.Sprintf("debt: payment %.2f exceeds balance %.2f", e.Payment, e.Balance)
}

// DebtService manages the debt book and its payoff plans. Plans persist
// only strategy and budget; every read re-runs the engine against live
// balances, so a recorded payment immediately reshapes stored plans.
type DebtService struct {
	storage   *storage.SQLiteRepository
	scheduler *PaymentScheduler
	now       func() time.Time
}

func NewDebtService(storage *storage.SQLiteRepository) *DebtService {
	return &DebtService{
		storage:   storage,
		scheduler: NewPaymentScheduler(),
		now:       time.Now,
	}
}

func (s *DebtService) CreateDebt(ctx context.Context, in core.NewDebt) (core.Debt, error) {
	if err := in.Validate(); err != nil {
		return core.Debt{}, err
	}
	return s.storage.CreateDebt(ctx, in)
}

func (s *DebtService) ListDebts(ctx context.Context) ([]core.Debt, error) {
	return s.storage.ListDebts(ctx)
}

func (s *DebtService) UpdateDebt(ctx context.Context, id int64, balance, interestRate, minPayment *float64) (core.Debt, error) {
	if balance != nil && *balance < 0 {
		return core.Debt{}, core.ErrInvalidBalance
	}
	if minPayment != nil && *minPayment < 0 {
		return core.Debt{}, core.ErrInvalidMinPayment
	}
	if interestRate != nil && (*interestRate < core.MinInterestRate || *interestRate > core.MaxInterestRate) {
		return core.Debt{}, &core.InterestRateError{
			Min: core.MinInterestRate, Max: core.MaxInterestRate, Actual: *interestRate,
		}
	}
	if _, err := s.storage.GetDebt(ctx, id); err != nil {
		return core.Debt{}, err
	}
	return s.storage.UpdateDebt(ctx, id, balance, interestRate, minPayment)
}

func (s *DebtService) DeleteDebt(ctx context.Context, id int64) error {
	return s.storage.DeleteDebt(ctx, id)
}

// openDebts returns debts with a positive balance, the engine's input set.
func (s *DebtService) openDebts(ctx context.Context) ([]core.Debt, error) {
	debts, err := s.storage.ListDebts(ctx)
	if err != nil {
		return nil, err
	}
	open := debts[:0]
	for _, d := range debts {
		if d.Balance > 0 {
			open = append(open, d)
		}
	}
	return open, nil
}

// CreatePlan runs the engine for the given strategy and budget, stores the
// plan metadata and returns the full schedule.
func (s *DebtService) CreatePlan(ctx context.Context, strategyName string, monthlyAmount float64) (PayoffPlanResponse, error) {
	strategy, err := payoff.ParseStrategy(strategyName)
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	debts, err := s.openDebts(ctx)
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	plan, err := payoff.Calculate(payoff.Input{
		Debts:         debts,
		Strategy:      strategy,
		MonthlyBudget: monthlyAmount,
		Start:         s.now(),
	})
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	stored, err := s.storage.CreateDebtPlan(ctx, plan.Strategy, monthlyAmount)
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	slog.InfoContext(ctx, "Payoff plan calculated",
		"plan_id", stored.ID,
		"strategy", plan.Strategy,
		"months", len(plan.MonthlyBreakdown),
		"total_interest", plan.TotalInterest)

	return PayoffPlanResponse{PlanID: stored.ID, Plan: plan}, nil
}

// GetPlan re-renders a stored plan against current balances.
func (s *DebtService) GetPlan(ctx context.Context, planID int64) (PayoffPlanResponse, error) {
	stored, err := s.storage.GetDebtPlan(ctx, planID)
	if err != nil {
		return PayoffPlanResponse{}, err
	}
	strategy, err := payoff.ParseStrategy(stored.Strategy)
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	debts, err := s.openDebts(ctx)
	if err != nil {
		return PayoffPlanResponse{}, err
	}

	plan, err := payoff.Calculate(payoff.Input{
		Debts:         debts,
		Strategy:      strategy,
		MonthlyBudget: stored.MonthlyAmount,
		Start:         s.now(),
	})
	if err != nil {
		return PayoffPlanResponse{}, err
	}
	return PayoffPlanResponse{PlanID: planID, Plan: plan}, nil
}

func (s *DebtService) ListPlans(ctx context.Context) ([]core.DebtPlan, error) {
	return s.storage.ListDebtPlans(ctx)
}

// RecordPayment writes a payment against a debt and reduces its balance.
// A payment must be positive and cannot exceed the current balance.
func (s *DebtService) RecordPayment(ctx context.Context, debtID int64, amount float64, date string, planID *int64) (RecordPaymentResult, error) {
	if amount <= 0 {
		return RecordPaymentResult{}, &PaymentError{Payment: amount}
	}
	if err := core.ValidateDate(date); err != nil {
		return RecordPaymentResult{}, err
	}

	debt, err := s.storage.GetDebt(ctx, debtID)
	if err != nil {
		return RecordPaymentResult{}, err
	}
	if amount > debt.Balance {
		return RecordPaymentResult{}, &PaymentError{Payment: amount, Balance: debt.Balance}
	}

	payment, updated, err := s.storage.RecordDebtPayment(ctx, debtID, amount, date, planID)
	if err != nil {
		return RecordPaymentResult{}, err
	}

	slog.InfoContext(ctx, "Debt payment recorded",
		"debt_id", debtID, "payment_id", payment.ID, "amount", amount, "balance", updated)

	return RecordPaymentResult{PaymentID: payment.ID, UpdatedBalance: updated}, nil
}

// Progress reports a debt's payment history and the balance trajectory
// implied by it. Passing empty dates returns the full history.
func (s *DebtService) Progress(ctx context.Context, debtID int64, startDate, endDate string) (DebtProgress, error) {
	debt, err := s.storage.GetDebt(ctx, debtID)
	if err != nil {
		return DebtProgress{}, err
	}

	var payments []core.DebtPayment
	if startDate != "" && endDate != "" {
		payments, err = s.storage.ListDebtPaymentsInRange(ctx, debtID, startDate, endDate)
	} else {
		payments, err = s.storage.ListDebtPayments(ctx, debtID)
	}
	if err != nil {
		return DebtProgress{}, err
	}

	var totalPaid float64
	for _, p := range payments {
		totalPaid += p.Amount
	}

	history := make([]BalancePoint, 0, len(payments))
	balance := debt.OriginalBalance
	for _, p := range payments {
		balance -= p.Amount
		history = append(history, BalancePoint{Date: p.Date, Balance: max(balance, 0)})
	}

	return DebtProgress{
		Debt:           debt,
		Payments:       payments,
		TotalPaid:      totalPaid,
		BalanceHistory: history,
	}, nil
}

// CompareStrategies runs both strategies against the same debt set and
// budget, concurrently since the engine is pure, and reports what avalanche
// saves over snowball.
func (s *DebtService) CompareStrategies(ctx context.Context, monthlyAmount float64) (StrategyComparison, error) {
	debts, err := s.openDebts(ctx)
	if err != nil {
		return StrategyComparison{}, err
	}

	start := s.now()
	var avalanche, snowball *payoff.Plan
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avalanche, err = payoff.Calculate(payoff.Input{
			Debts: debts, Strategy: payoff.Avalanche, MonthlyBudget: monthlyAmount, Start: start,
		})
		return err
	})
	g.Go(func() error {
		var err error
		snowball, err = payoff.Calculate(payoff.Input{
			Debts: debts, Strategy: payoff.Snowball, MonthlyBudget: monthlyAmount, Start: start,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return StrategyComparison{}, err
	}

	return StrategyComparison{
		Avalanche: outcome(avalanche),
		Snowball:  outcome(snowball),
		Savings: ComparisonSavings{
			InterestSaved: max(snowball.TotalInterest-avalanche.TotalInterest, 0),
			MonthsSaved:   max(len(snowball.MonthlyBreakdown)-len(avalanche.MonthlyBreakdown), 0),
		},
	}, nil
}

func outcome(p *payoff.Plan) StrategyOutcome {
	return StrategyOutcome{
		Strategy:      p.Strategy,
		PayoffDate:    p.PayoffDate,
		TotalInterest: p.TotalInterest,
		PayoffMonths:  len(p.MonthlyBreakdown),
	}
}

// Schedule projects upcoming minimum payments for the open debts.
func (s *DebtService) Schedule(ctx context.Context, monthsAhead int) ([]PaymentSchedule, error) {
	debts, err := s.storage.ListDebts(ctx)
	if err != nil {
		return nil, err
	}
	if monthsAhead < 1 {
		monthsAhead = 1
	}
	return s.scheduler.FutureSchedules(debts, monthsAhead), nil
}
