package repository

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

type PaymentMethodRepository struct {
	base
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]core.PaymentMethod, error) {
	var out []core.PaymentMethod
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListPaymentMethods(ctx)
		return err
	})
	return out, err
}

func (r *PaymentMethodRepository) Add(ctx context.Context, name string) (core.PaymentMethod, error) {
	if err := core.ValidateName(core.EntityPaymentMethod, name); err != nil {
		return core.PaymentMethod{}, err
	}

	p := core.PaymentMethod{Name: name}
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, exists, err := tx.FindPaymentMethodByName(ctx, name); err != nil {
			return err
		} else if exists {
			return core.NewDuplicateNameError(core.EntityPaymentMethod, name)
		}
		id, err := tx.InsertPaymentMethod(ctx, name)
		p.ID = id
		return err
	})
	if err != nil {
		return core.PaymentMethod{}, err
	}

	r.logger.InfoContext(ctx, "Payment method created", log.NewFields().
		WithOperation(log.OpCreate).WithRecord(core.EntityPaymentMethod, p.ID).With(log.FieldName, name).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityPaymentMethod, log.OpCreate, p.ID))
	return p, nil
}

func (r *PaymentMethodRepository) Update(ctx context.Context, id int64, name string) (core.PaymentMethod, error) {
	if err := core.ValidateName(core.EntityPaymentMethod, name); err != nil {
		return core.PaymentMethod{}, err
	}

	p := core.PaymentMethod{ID: id, Name: name}
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, found, err := tx.GetPaymentMethod(ctx, id); err != nil {
			return err
		} else if !found {
			return core.NewNotFoundError(core.EntityPaymentMethod, id)
		}
		if other, exists, err := tx.FindPaymentMethodByName(ctx, name); err != nil {
			return err
		} else if exists && other.ID != id {
			return core.NewDuplicateNameError(core.EntityPaymentMethod, name)
		}
		_, err := tx.UpdatePaymentMethod(ctx, p)
		return err
	})
	if err != nil {
		return core.PaymentMethod{}, err
	}

	r.logger.InfoContext(ctx, "Payment method updated", log.NewFields().
		WithOperation(log.OpUpdate).WithRecord(core.EntityPaymentMethod, id).With(log.FieldName, name).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityPaymentMethod, log.OpUpdate, id))
	return p, nil
}

// Delete nulls every transaction reference and removes the payment method
// in one atomic scope.
func (r *PaymentMethodRepository) Delete(ctx context.Context, id int64) error {
	var cleared int64
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		if _, found, err := tx.GetPaymentMethod(ctx, id); err != nil {
			return err
		} else if !found {
			return core.NewNotFoundError(core.EntityPaymentMethod, id)
		}
		var err error
		if cleared, err = tx.ClearPaymentMethodRefs(ctx, id); err != nil {
			return err
		}
		_, err = tx.DeletePaymentMethod(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Payment method deleted", log.NewFields().
		WithOperation(log.OpDelete).WithRecord(core.EntityPaymentMethod, id).With("cleared_refs", cleared).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityPaymentMethod, log.OpDelete, id))
	return nil
}
