package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetbalancer/internal/core"
)

const ruleColumns = "id, pattern, category_id, priority, created_at"

func scanRule(row interface{ Scan(...any) error }) (core.CategoryRule, error) {
	var cr core.CategoryRule
	err := row.Scan(&cr.ID, &cr.Pattern, &cr.CategoryID, &cr.Priority, &cr.CreatedAt)
	return cr, err
}

func (r *SQLiteRepository) CreateRule(ctx context.Context, in core.NewCategoryRule) (core.CategoryRule, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO category_rules (pattern, category_id, priority) VALUES (?, ?, ?)",
		strings.ToLower(in.Pattern), in.CategoryID, in.Priority)
	if err != nil {
		return core.CategoryRule{}, fmt.Errorf("create rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.CategoryRule{}, fmt.Errorf("rule insert id: %w", err)
	}
	return r.GetRule(ctx, id)
}

func (r *SQLiteRepository) GetRule(ctx context.Context, id int64) (core.CategoryRule, error) {
	cr, err := scanRule(r.db.QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM category_rules WHERE id = ?", id))
	if err != nil {
		return core.CategoryRule{}, fmt.Errorf("get rule %d: %w", id, notFound(err))
	}
	return cr, nil
}

// ListRules returns every rule ordered by descending priority, with ties
// broken by creation order. The categorizer depends on this ordering.
func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.CategoryRule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM category_rules ORDER BY priority DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []core.CategoryRule
	for rows.Next() {
		cr, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, cr)
	}
	return rules, rows.Err()
}

// UpdateRule patches a rule's pattern, category or priority. Nil fields are
// left alone. Patterns are stored lowercased, matching CreateRule's input.
func (r *SQLiteRepository) UpdateRule(ctx context.Context, id int64, pattern *string, categoryID, priority *int64) (core.CategoryRule, error) {
	if _, err := r.GetRule(ctx, id); err != nil {
		return core.CategoryRule{}, err
	}
	if pattern != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE category_rules SET pattern = ? WHERE id = ?", strings.ToLower(*pattern), id); err != nil {
			return core.CategoryRule{}, fmt.Errorf("update rule pattern: %w", err)
		}
	}
	if categoryID != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE category_rules SET category_id = ? WHERE id = ?", *categoryID, id); err != nil {
			return core.CategoryRule{}, fmt.Errorf("update rule category: %w", err)
		}
	}
	if priority != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE category_rules SET priority = ? WHERE id = ?", *priority, id); err != nil {
			return core.CategoryRule{}, fmt.Errorf("update rule priority: %w", err)
		}
	}
	return r.GetRule(ctx, id)
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM category_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete rule %d: %w", id, ErrNotFound)
	}
	return nil
}
