package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbalancer/internal/core"
)

// ErrPredefinedCategory is returned on attempts to modify or delete a
// built-in category.
var ErrPredefinedCategory = errors.New("storage: predefined categories cannot be modified")

const categoryColumns = "id, name, type, parent_id, icon, created_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.ParentID, &c.Icon, &c.CreatedAt)
	return c, err
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in core.NewCategory) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, type, icon) VALUES (?, ?, ?)",
		in.Name, core.Custom, in.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", id, "name", in.Name)
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return c, nil
}

// ListCategories returns all categories, or only those of the given type
// when typeFilter is set.
func (r *SQLiteRepository) ListCategories(ctx context.Context, typeFilter *core.CategoryType) ([]core.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories ORDER BY id"
	var args []any
	if typeFilter != nil {
		query = "SELECT " + categoryColumns + " FROM categories WHERE type = ? ORDER BY id"
		args = append(args, *typeFilter)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames or re-icons a custom category. Nil fields are left
// alone. Predefined categories are immutable.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, name, icon *string) (core.Category, error) {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.Type == core.Predefined {
		return core.Category{}, ErrPredefinedCategory
	}

	if name != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE categories SET name = ? WHERE id = ?", *name, id); err != nil {
			return core.Category{}, fmt.Errorf("update category name: %w", err)
		}
	}
	if icon != nil {
		if _, err := r.db.ExecContext(ctx,
			"UPDATE categories SET icon = ? WHERE id = ?", *icon, id); err != nil {
			return core.Category{}, fmt.Errorf("update category icon: %w", err)
		}
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes a custom category. Its transactions are reassigned
// to Uncategorized first so the RESTRICT constraint never fires.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.Type == core.Predefined {
		return ErrPredefinedCategory
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE category_id = ?",
		core.DefaultCategoryID, id); err != nil {
		return fmt.Errorf("reassign transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id, "name", c.Name)
	return nil
}
