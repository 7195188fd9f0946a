package storage

import (
	"context"
	"fmt"

	"budgetbalancer/internal/core"
)

const targetColumns = "id, category_id, amount, period, start_date, end_date, created_at"

func scanTarget(row interface{ Scan(...any) error }) (core.SpendingTarget, error) {
	var t core.SpendingTarget
	err := row.Scan(&t.ID, &t.CategoryID, &t.Amount, &t.Period, &t.StartDate, &t.EndDate, &t.CreatedAt)
	return t, err
}

func (r *SQLiteRepository) CreateSpendingTarget(ctx context.Context, in core.NewSpendingTarget) (core.SpendingTarget, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO spending_targets (category_id, amount, period, start_date, end_date) VALUES (?, ?, ?, ?, ?)",
		in.CategoryID, in.Amount, in.Period, in.StartDate, in.EndDate)
	if err != nil {
		return core.SpendingTarget{}, fmt.Errorf("create spending target: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.SpendingTarget{}, fmt.Errorf("spending target insert id: %w", err)
	}
	return r.GetSpendingTarget(ctx, id)
}

func (r *SQLiteRepository) GetSpendingTarget(ctx context.Context, id int64) (core.SpendingTarget, error) {
	t, err := scanTarget(r.db.QueryRowContext(ctx,
		"SELECT "+targetColumns+" FROM spending_targets WHERE id = ?", id))
	if err != nil {
		return core.SpendingTarget{}, fmt.Errorf("get spending target %d: %w", id, notFound(err))
	}
	return t, nil
}

func (r *SQLiteRepository) ListSpendingTargets(ctx context.Context) ([]core.SpendingTarget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+targetColumns+" FROM spending_targets ORDER BY category_id")
	if err != nil {
		return nil, fmt.Errorf("list spending targets: %w", err)
	}
	defer rows.Close()

	var targets []core.SpendingTarget
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spending target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// UpdateSpendingTarget patches the given fields. Nil fields are left alone.
func (r *SQLiteRepository) UpdateSpendingTarget(ctx context.Context, id int64, amount *float64, endDate *string) (core.SpendingTarget, error) {
	if amount != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE spending_targets SET amount = ? WHERE id = ?", *amount, id); err != nil {
			return core.SpendingTarget{}, fmt.Errorf("update spending target amount: %w", err)
		}
	}
	if endDate != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE spending_targets SET end_date = ? WHERE id = ?", *endDate, id); err != nil {
			return core.SpendingTarget{}, fmt.Errorf("update spending target end date: %w", err)
		}
	}
	return r.GetSpendingTarget(ctx, id)
}

func (r *SQLiteRepository) DeleteSpendingTarget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM spending_targets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete spending target %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete spending target %d: %w", id, ErrNotFound)
	}
	return nil
}
