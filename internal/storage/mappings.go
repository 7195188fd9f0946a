package storage

import (
	"context"
	"fmt"

	"budgetbalancer/internal/core"
)

const mappingColumns = "id, source_name, date_col, amount_col, description_col, merchant_col, created_at"

func scanMapping(row interface{ Scan(...any) error }) (core.ColumnMapping, error) {
	var m core.ColumnMapping
	err := row.Scan(&m.ID, &m.SourceName, &m.DateCol, &m.AmountCol,
		&m.DescriptionCol, &m.MerchantCol, &m.CreatedAt)
	return m, err
}

// SaveColumnMapping creates or replaces the mapping for a source. Sources
// are bank export formats, so re-saving after a bank renames a column just
// works.
func (r *SQLiteRepository) SaveColumnMapping(ctx context.Context, in core.NewColumnMapping) (core.ColumnMapping, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO column_mappings (source_name, date_col, amount_col, description_col, merchant_col)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_name) DO UPDATE SET
		   date_col = excluded.date_col,
		   amount_col = excluded.amount_col,
		   description_col = excluded.description_col,
		   merchant_col = excluded.merchant_col`,
		in.SourceName, in.DateCol, in.AmountCol, in.DescriptionCol, in.MerchantCol)
	if err != nil {
		return core.ColumnMapping{}, fmt.Errorf("save column mapping: %w", err)
	}
	return r.GetColumnMapping(ctx, in.SourceName)
}

func (r *SQLiteRepository) GetColumnMapping(ctx context.Context, sourceName string) (core.ColumnMapping, error) {
	m, err := scanMapping(r.db.QueryRowContext(ctx,
		"SELECT "+mappingColumns+" FROM column_mappings WHERE source_name = ?", sourceName))
	if err != nil {
		return core.ColumnMapping{}, fmt.Errorf("get column mapping %q: %w", sourceName, notFound(err))
	}
	return m, nil
}

func (r *SQLiteRepository) ListColumnMappings(ctx context.Context) ([]core.ColumnMapping, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+mappingColumns+" FROM column_mappings ORDER BY source_name")
	if err != nil {
		return nil, fmt.Errorf("list column mappings: %w", err)
	}
	defer rows.Close()

	var mappings []core.ColumnMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan column mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *SQLiteRepository) DeleteColumnMapping(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM column_mappings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete column mapping %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete column mapping %d: %w", id, ErrNotFound)
	}
	return nil
}
