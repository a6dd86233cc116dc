package storage

import (
	"context"
	"database/sql"
	"errors"

	"ledger/internal/core"
)

// ListCategories returns every category ordered by name ascending.
func (t *Tx) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name, icon_name FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, core.NewStorageError("list categories", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IconName); err != nil {
			return nil, core.NewStorageError("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list categories", err)
	}
	return out, nil
}

// GetCategory is a point lookup by key.
func (t *Tx) GetCategory(ctx context.Context, id int64) (core.Category, bool, error) {
	var c core.Category
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, icon_name FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.IconName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, false, nil
	}
	if err != nil {
		return core.Category{}, false, core.NewStorageError("get category", err)
	}
	return c, true, nil
}

// FindCategoryByName matches name exactly (case-sensitive, untrimmed).
func (t *Tx) FindCategoryByName(ctx context.Context, name string) (core.Category, bool, error) {
	var c core.Category
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, icon_name FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.IconName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, false, nil
	}
	if err != nil {
		return core.Category{}, false, core.NewStorageError("find category", err)
	}
	return c, true, nil
}

// GetCategoriesByIDs is a batch fetch keyed by id. Missing ids are absent
// from the result.
func (t *Tx) GetCategoriesByIDs(ctx context.Context, ids []int64) (map[int64]core.Category, error) {
	out := make(map[int64]core.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, batch := range idBatches(ids) {
		if err := t.categoriesByIDs(ctx, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Tx) categoriesByIDs(ctx context.Context, ids []int64, out map[int64]core.Category) error {
	query, args := inClause(`SELECT id, name, icon_name FROM categories WHERE id IN `, ids)
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return core.NewStorageError("get categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IconName); err != nil {
			return core.NewStorageError("scan category", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return core.NewStorageError("get categories", err)
	}
	return nil
}

// InsertCategory stores a category and returns its assigned key.
func (t *Tx) InsertCategory(ctx context.Context, name, icon string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO categories (name, icon_name) VALUES (?, ?)`, name, icon)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.NewDuplicateNameError(core.EntityCategory, name)
		}
		return 0, core.NewStorageError("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert category", err)
	}
	return id, nil
}

// UpdateCategory reports false when no row has c.ID.
func (t *Tx) UpdateCategory(ctx context.Context, c core.Category) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `UPDATE categories SET name = ?, icon_name = ? WHERE id = ?`, c.Name, c.IconName, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, core.NewDuplicateNameError(core.EntityCategory, c.Name)
		}
		return false, core.NewStorageError("update category", err)
	}
	return affected(res, "update category")
}

// DeleteCategory removes the row only; callers clear references first.
func (t *Tx) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, core.NewStorageError("delete category", err)
	}
	return affected(res, "delete category")
}

func (t *Tx) ClearCategories(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return core.NewStorageError("clear categories", err)
	}
	return nil
}
