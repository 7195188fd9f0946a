package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetbalancer/internal/core"
)

const transactionColumns = "id, account_id, category_id, date, amount, description, merchant, hash, created_at"

// TransactionFilter narrows ListTransactions. Nil fields are ignored.
type TransactionFilter struct {
	AccountID  *int64
	CategoryID *int64
	StartDate  *string
	EndDate    *string
	Search     *string // matched against description and merchant
	Page       int
	PageSize   int
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Date, &t.Amount,
		&t.Description, &t.Merchant, &t.Hash, &t.CreatedAt)
	return t, err
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (account_id, category_id, date, amount, description, merchant, hash) VALUES (?, ?, ?, ?, ?, ?, ?)",
		in.AccountID, in.CategoryID, in.Date, in.Amount, in.Description, in.Merchant, in.Hash)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	return r.GetTransaction(ctx, id)
}

// InsertTransactions writes a batch inside one transaction so a failed
// import never leaves a partial file behind. Rows whose hash already exists
// are skipped; the count of inserted rows is returned.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, batch []core.NewTransaction) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO transactions (account_id, category_id, date, amount, description, merchant, hash) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	deltas := make(map[int64]float64)
	for _, in := range batch {
		res, err := stmt.ExecContext(ctx,
			in.AccountID, in.CategoryID, in.Date, in.Amount, in.Description, in.Merchant, in.Hash)
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("import rows affected: %w", err)
		}
		inserted += n
		if n > 0 {
			deltas[in.AccountID] += in.Amount
		}
	}

	// Account balances track the transactions that actually landed.
	for accountID, delta := range deltas {
		if _, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			delta, accountID); err != nil {
			return 0, fmt.Errorf("adjust account balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported", "batch", len(batch), "inserted", inserted)
	return inserted, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, notFound(err))
	}
	return t, nil
}

// ListTransactions returns one page of matching transactions, newest first,
// along with the total number of matches.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, int64, error) {
	where, args := buildTransactionWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = core.DefaultPageSize
	}
	if pageSize > core.MaxPageSize {
		pageSize = core.MaxPageSize
	}

	query := "SELECT " + transactionColumns + " FROM transactions" + where +
		" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func buildTransactionWhere(f TransactionFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.AccountID != nil {
		clauses = append(clauses, "account_id = ?")
		args = append(args, *f.AccountID)
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, *f.EndDate)
	}
	if f.Search != nil && *f.Search != "" {
		clauses = append(clauses, "(description LIKE ? OR COALESCE(merchant, '') LIKE ?)")
		pattern := "%" + *f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) UpdateTransactionCategory(ctx context.Context, id, categoryID int64) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ?", categoryID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, ErrNotFound)
	}
	return r.GetTransaction(ctx, id)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// ExistingHashes reports which of the given content hashes are already
// stored, letting an import mark duplicates before writing anything.
func (r *SQLiteRepository) ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(hashes))
	if len(hashes) == 0 {
		return existing, nil
	}

	// Chunked to stay under SQLite's bound-parameter limit.
	const chunk = 500
	for start := 0; start < len(hashes); start += chunk {
		end := min(start+chunk, len(hashes))
		part := hashes[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(part)), ",")
		args := make([]any, len(part))
		for i, h := range part {
			args[i] = h
		}

		rows, err := r.db.QueryContext(ctx,
			"SELECT hash FROM transactions WHERE hash IN ("+placeholders+")", args...)
		if err != nil {
			return nil, fmt.Errorf("existing hashes: %w", err)
		}
		for rows.Next() {
			var h string
			if err := rows.Scan(&h); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan hash: %w", err)
			}
			existing[h] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("existing hashes: %w", err)
		}
		rows.Close()
	}
	return existing, nil
}
