package storage

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbalancer/internal/core"
)

const accountColumns = "id, name, type, balance, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, in core.NewAccount) (core.Account, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (name, type, balance) VALUES (?, ?, ?)",
		in.Name, in.Type, in.InitialBalance)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", id, "name", in.Name, "type", in.Type)
	return r.GetAccount(ctx, id)
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, notFound(err))
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, id int64, name *string, balance *float64) (core.Account, error) {
	if name != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE accounts SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", *name, id); err != nil {
			return core.Account{}, fmt.Errorf("update account name: %w", err)
		}
	}
	if balance != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", *balance, id); err != nil {
			return core.Account{}, fmt.Errorf("update account balance: %w", err)
		}
	}
	return r.GetAccount(ctx, id)
}

// DeleteAccount removes an account and reports how many transactions the
// cascade took with it.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	var transactions int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE account_id = ?", id).Scan(&transactions); err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete account %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("delete account %d: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete account: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted", "id", id, "transactions", transactions)
	return transactions, nil
}
