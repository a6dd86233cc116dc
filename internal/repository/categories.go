package repository

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

type CategoryRepository struct {
	base
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListCategories(ctx)
		return err
	})
	return out, err
}

// Add creates a category. The name must not already exist (exact match).
func (r *CategoryRepository) Add(ctx context.Context, name, icon string) (core.Category, error) {
	if err := core.ValidateName(core.EntityCategory, name); err != nil {
		return core.Category{}, err
	}

	c := core.Category{Name: name, IconName: icon}
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, exists, err := tx.FindCategoryByName(ctx, name); err != nil {
			return err
		} else if exists {
			return core.NewDuplicateNameError(core.EntityCategory, name)
		}
		id, err := tx.InsertCategory(ctx, name, icon)
		c.ID = id
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	r.logger.InfoContext(ctx, "Category created", log.NewFields().
		WithOperation(log.OpCreate).WithRecord(core.EntityCategory, c.ID).With(log.FieldName, c.Name).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityCategory, log.OpCreate, c.ID))
	return c, nil
}

// Update renames a category and sets its icon.
func (r *CategoryRepository) Update(ctx context.Context, id int64, name, icon string) (core.Category, error) {
	if err := core.ValidateName(core.EntityCategory, name); err != nil {
		return core.Category{}, err
	}

	c := core.Category{ID: id, Name: name, IconName: icon}
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, found, err := tx.GetCategory(ctx, id); err != nil {
			return err
		} else if !found {
			return core.NewNotFoundError(core.EntityCategory, id)
		}
		if other, exists, err := tx.FindCategoryByName(ctx, name); err != nil {
			return err
		} else if exists && other.ID != id {
			return core.NewDuplicateNameError(core.EntityCategory, name)
		}
		_, err := tx.UpdateCategory(ctx, c)
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	r.logger.InfoContext(ctx, "Category updated", log.NewFields().
		WithOperation(log.OpUpdate).WithRecord(core.EntityCategory, id).With(log.FieldName, name).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityCategory, log.OpUpdate, id))
	return c, nil
}

// Delete clears every transaction reference to the category and removes
// it, in one atomic scope.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	var cleared int64
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, found, err := tx.GetCategory(ctx, id); err != nil {
			return err
		} else if !found {
			return core.NewNotFoundError(core.EntityCategory, id)
		}
		var err error
		if cleared, err = tx.ClearCategoryRefs(ctx, id); err != nil {
			return err
		}
		_, err = tx.DeleteCategory(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Category deleted", log.NewFields().
		WithOperation(log.OpDelete).WithRecord(core.EntityCategory, id).With("cleared_refs", cleared).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityCategory, log.OpDelete, id))
	return nil
}
