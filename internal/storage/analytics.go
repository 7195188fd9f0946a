package storage

import (
	"context"
	"fmt"
)

// CategorySpendingRow is one category's spending total over a period.
// Amounts are absolute values of negative (spending) transactions.
type CategorySpendingRow struct {
	CategoryID       int64
	CategoryName     string
	CategoryIcon     *string
	Amount           float64
	TransactionCount int64
}

// DailySpendingRow is one day's spending total.
type DailySpendingRow struct {
	Date             string
	Amount           float64
	TransactionCount int64
}

// SpendingByCategory sums spending per category in [startDate, endDate],
// most expensive first. Categories without spending are omitted. A non-nil
// accountID restricts the view to one account.
func (r *SQLiteRepository) SpendingByCategory(ctx context.Context, startDate, endDate string, accountID *int64) ([]CategorySpendingRow, error) {
	query := `SELECT
	    c.id,
	    c.name,
	    c.icon,
	    CAST(COALESCE(SUM(ABS(t.amount)), 0) AS REAL) AS total_amount,
	    COUNT(t.id) AS transaction_count
	FROM categories c
	LEFT JOIN transactions t ON t.category_id = c.id
	    AND t.date >= ?
	    AND t.date <= ?
	    AND t.amount < 0`
	args := []any{startDate, endDate}
	if accountID != nil {
		query += " AND t.account_id = ?"
		args = append(args, *accountID)
	}
	query += `
	GROUP BY c.id, c.name, c.icon
	HAVING total_amount > 0
	ORDER BY total_amount DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	defer rows.Close()

	var result []CategorySpendingRow
	for rows.Next() {
		var row CategorySpendingRow
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.CategoryIcon,
			&row.Amount, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// DailySpending sums spending per calendar day in [startDate, endDate]. A
// non-nil categoryID restricts the view to one category. Days with no
// spending produce no row.
func (r *SQLiteRepository) DailySpending(ctx context.Context, startDate, endDate string, categoryID *int64) ([]DailySpendingRow, error) {
	query := `SELECT
	    date,
	    CAST(COALESCE(SUM(ABS(amount)), 0) AS REAL) AS total,
	    COUNT(*) AS count
	FROM transactions
	WHERE date >= ? AND date <= ? AND amount < 0`
	args := []any{startDate, endDate}
	if categoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *categoryID)
	}
	query += " GROUP BY date ORDER BY date"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily spending: %w", err)
	}
	defer rows.Close()

	var result []DailySpendingRow
	for rows.Next() {
		var row DailySpendingRow
		if err := rows.Scan(&row.Date, &row.Amount, &row.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan daily spending: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// MonthSpending sums spending for the calendar month containing monthStart
// (any day of that month in DateLayout form). A non-nil categoryID
// restricts the view to one category.
func (r *SQLiteRepository) MonthSpending(ctx context.Context, monthStart string, categoryID *int64) (float64, int64, error) {
	query := `SELECT
	    CAST(COALESCE(SUM(ABS(amount)), 0) AS REAL) AS total,
	    COUNT(*) AS count
	FROM transactions
	WHERE strftime('%Y-%m', date) = strftime('%Y-%m', ?) AND amount < 0`
	args := []any{monthStart}
	if categoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *categoryID)
	}

	var (
		amount float64
		count  int64
	)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&amount, &count); err != nil {
		return 0, 0, fmt.Errorf("month spending: %w", err)
	}
	return amount, count, nil
}

// TotalIncome sums positive transaction amounts in [startDate, endDate].
func (r *SQLiteRepository) TotalIncome(ctx context.Context, startDate, endDate string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT CAST(COALESCE(SUM(amount), 0) AS REAL)
		 FROM transactions
		 WHERE date >= ? AND date <= ? AND amount > 0`,
		startDate, endDate).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total income: %w", err)
	}
	return total, nil
}

// TotalSpending sums the absolute value of negative transaction amounts in
// [startDate, endDate].
func (r *SQLiteRepository) TotalSpending(ctx context.Context, startDate, endDate string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT CAST(COALESCE(SUM(ABS(amount)), 0) AS REAL)
		 FROM transactions
		 WHERE date >= ? AND date <= ? AND amount < 0`,
		startDate, endDate).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total spending: %w", err)
	}
	return total, nil
}

// CategorySpendingInRange sums one category's spending in [startDate, endDate].
func (r *SQLiteRepository) CategorySpendingInRange(ctx context.Context, categoryID int64, startDate, endDate string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT CAST(COALESCE(SUM(ABS(amount)), 0) AS REAL)
		 FROM transactions
		 WHERE category_id = ? AND date >= ? AND date <= ? AND amount < 0`,
		categoryID, startDate, endDate).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("category spending in range: %w", err)
	}
	return total, nil
}

// DebtTotals sums every debt's outstanding balance and minimum payment.
func (r *SQLiteRepository) DebtTotals(ctx context.Context) (totalDebt, totalMinPayment float64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
		    CAST(COALESCE(SUM(balance), 0) AS REAL),
		    CAST(COALESCE(SUM(min_payment), 0) AS REAL)
		 FROM debts`).Scan(&totalDebt, &totalMinPayment)
	if err != nil {
		return 0, 0, fmt.Errorf("debt totals: %w", err)
	}
	return totalDebt, totalMinPayment, nil
}

// ActiveSpendingTargets returns targets whose window overlaps the period.
func (r *SQLiteRepository) ActiveSpendingTargets(ctx context.Context, startDate, endDate string) ([]TargetRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.category_id, c.name, t.amount
		 FROM spending_targets t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.start_date <= ? AND (t.end_date IS NULL OR t.end_date >= ?)`,
		endDate, startDate)
	if err != nil {
		return nil, fmt.Errorf("active spending targets: %w", err)
	}
	defer rows.Close()

	var targets []TargetRow
	for rows.Next() {
		var t TargetRow
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.CategoryName, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan target row: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// TargetRow is one active spending target joined with its category name.
type TargetRow struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	Amount       float64
}

// TotalAccountBalance sums the balances of every account.
func (r *SQLiteRepository) TotalAccountBalance(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT CAST(COALESCE(SUM(balance), 0) AS REAL) FROM accounts").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total account balance: %w", err)
	}
	return total, nil
}
