package storage

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbalancer/internal/core"
)

const (
	debtColumns    = "id, name, balance, original_balance, interest_rate, min_payment, created_at, updated_at"
	paymentColumns = "id, debt_id, amount, date, plan_id, created_at"
)

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var d core.Debt
	err := row.Scan(&d.ID, &d.Name, &d.Balance, &d.OriginalBalance,
		&d.InterestRate, &d.MinPayment, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func scanPayment(row interface{ Scan(...any) error }) (core.DebtPayment, error) {
	var p core.DebtPayment
	err := row.Scan(&p.ID, &p.DebtID, &p.Amount, &p.Date, &p.PlanID, &p.CreatedAt)
	return p, err
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, in core.NewDebt) (core.Debt, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO debts (name, balance, original_balance, interest_rate, min_payment) VALUES (?, ?, ?, ?, ?)",
		in.Name, in.Balance, in.Balance, in.InterestRate, in.MinPayment)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Debt{}, fmt.Errorf("debt insert id: %w", err)
	}
	slog.InfoContext(ctx, "Debt created", "id", id, "name", in.Name, "balance", in.Balance)
	return r.GetDebt(ctx, id)
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	d, err := scanDebt(r.db.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE id = ?", id))
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt %d: %w", id, notFound(err))
	}
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts ORDER BY balance DESC")
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// UpdateDebt patches the given fields. Nil fields are left alone.
func (r *SQLiteRepository) UpdateDebt(ctx context.Context, id int64, balance, interestRate, minPayment *float64) (core.Debt, error) {
	if balance != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE debts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", *balance, id); err != nil {
			return core.Debt{}, fmt.Errorf("update debt balance: %w", err)
		}
	}
	if interestRate != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE debts SET interest_rate = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", *interestRate, id); err != nil {
			return core.Debt{}, fmt.Errorf("update debt interest rate: %w", err)
		}
	}
	if minPayment != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE debts SET min_payment = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", *minPayment, id); err != nil {
			return core.Debt{}, fmt.Errorf("update debt min payment: %w", err)
		}
	}
	return r.GetDebt(ctx, id)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete debt %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete debt %d: %w", id, ErrNotFound)
	}
	slog.InfoContext(ctx, "Debt deleted", "id", id)
	return nil
}

// RecordDebtPayment inserts a payment and decrements the debt balance in
// one transaction, so the payment history and the stored balance cannot
// diverge. Returns the payment and the balance after the decrement.
func (r *SQLiteRepository) RecordDebtPayment(ctx context.Context, debtID int64, amount float64, date string, planID *int64) (core.DebtPayment, float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("begin record payment: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO debt_payments (debt_id, amount, date, plan_id) VALUES (?, ?, ?, ?)",
		debtID, amount, date, planID)
	if err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("create debt payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("debt payment insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE debts SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		amount, debtID); err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("decrement debt balance: %w", err)
	}

	p, err := scanPayment(tx.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM debt_payments WHERE id = ?", id))
	if err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("get debt payment %d: %w", id, notFound(err))
	}
	var balance float64
	if err := tx.QueryRowContext(ctx,
		"SELECT balance FROM debts WHERE id = ?", debtID).Scan(&balance); err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("read debt balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.DebtPayment{}, 0, fmt.Errorf("commit record payment: %w", err)
	}
	return p, balance, nil
}

func (r *SQLiteRepository) ListDebtPayments(ctx context.Context, debtID int64) ([]core.DebtPayment, error) {
	return r.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM debt_payments WHERE debt_id = ? ORDER BY date DESC", debtID)
}

func (r *SQLiteRepository) ListDebtPaymentsInRange(ctx context.Context, debtID int64, startDate, endDate string) ([]core.DebtPayment, error) {
	return r.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM debt_payments WHERE debt_id = ? AND date >= ? AND date <= ? ORDER BY date DESC",
		debtID, startDate, endDate)
}

func (r *SQLiteRepository) queryPayments(ctx context.Context, query string, args ...any) ([]core.DebtPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list debt payments: %w", err)
	}
	defer rows.Close()

	var payments []core.DebtPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CreateDebtPlan stores only the plan's strategy and budget. Schedules are
// recomputed from live balances whenever the plan is read.
func (r *SQLiteRepository) CreateDebtPlan(ctx context.Context, strategy string, monthlyAmount float64) (core.DebtPlan, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO debt_plans (strategy, monthly_amount) VALUES (?, ?)",
		strategy, monthlyAmount)
	if err != nil {
		return core.DebtPlan{}, fmt.Errorf("create debt plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.DebtPlan{}, fmt.Errorf("debt plan insert id: %w", err)
	}
	slog.InfoContext(ctx, "Debt plan created", "id", id, "strategy", strategy, "monthly_amount", monthlyAmount)
	return r.GetDebtPlan(ctx, id)
}

func (r *SQLiteRepository) GetDebtPlan(ctx context.Context, id int64) (core.DebtPlan, error) {
	var p core.DebtPlan
	err := r.db.QueryRowContext(ctx,
		"SELECT id, strategy, monthly_amount, created_at FROM debt_plans WHERE id = ?", id).
		Scan(&p.ID, &p.Strategy, &p.MonthlyAmount, &p.CreatedAt)
	if err != nil {
		return core.DebtPlan{}, fmt.Errorf("get debt plan %d: %w", id, notFound(err))
	}
	return p, nil
}

func (r *SQLiteRepository) ListDebtPlans(ctx context.Context) ([]core.DebtPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, strategy, monthly_amount, created_at FROM debt_plans ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list debt plans: %w", err)
	}
	defer rows.Close()

	var plans []core.DebtPlan
	for rows.Next() {
		var p core.DebtPlan
		if err := rows.Scan(&p.ID, &p.Strategy, &p.MonthlyAmount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan debt plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
