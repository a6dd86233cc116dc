package storage

import (
	"context"
	"database/sql"
	"errors"

	"ledger/internal/core"
)

// ListPaymentMethods returns every payment method ordered by name ascending.
func (t *Tx) ListPaymentMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name FROM payment_methods ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, core.NewStorageError("list payment methods", err)
	}
	defer rows.Close()

	out := []core.PaymentMethod{}
	for rows.Next() {
		var p core.PaymentMethod
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, core.NewStorageError("scan payment method", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list payment methods", err)
	}
	return out, nil
}

func (t *Tx) GetPaymentMethod(ctx context.Context, id int64) (core.PaymentMethod, bool, error) {
	var p core.PaymentMethod
	err := t.tx.QueryRowContext(ctx, `SELECT id, name FROM payment_methods WHERE id = ?`, id).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaymentMethod{}, false, nil
	}
	if err != nil {
		return core.PaymentMethod{}, false, core.NewStorageError("get payment method", err)
	}
	return p, true, nil
}

func (t *Tx) FindPaymentMethodByName(ctx context.Context, name string) (core.PaymentMethod, bool, error) {
	var p core.PaymentMethod
	err := t.tx.QueryRowContext(ctx, `SELECT id, name FROM payment_methods WHERE name = ?`, name).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaymentMethod{}, false, nil
	}
	if err != nil {
		return core.PaymentMethod{}, false, core.NewStorageError("find payment method", err)
	}
	return p, true, nil
}

func (t *Tx) GetPaymentMethodsByIDs(ctx context.Context, ids []int64) (map[int64]core.PaymentMethod, error) {
	out := make(map[int64]core.PaymentMethod, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, batch := range idBatches(ids) {
		if err := t.paymentMethodsByIDs(ctx, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Tx) paymentMethodsByIDs(ctx context.Context, ids []int64, out map[int64]core.PaymentMethod) error {
	query, args := inClause(`SELECT id, name FROM payment_methods WHERE id IN `, ids)
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return core.NewStorageError("get payment methods", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p core.PaymentMethod
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return core.NewStorageError("scan payment method", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return core.NewStorageError("get payment methods", err)
	}
	return nil
}

func (t *Tx) InsertPaymentMethod(ctx context.Context, name string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO payment_methods (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, core.NewDuplicateNameError(core.EntityPaymentMethod, name)
		}
		return 0, core.NewStorageError("insert payment method", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert payment method", err)
	}
	return id, nil
}

func (t *Tx) UpdatePaymentMethod(ctx context.Context, p core.PaymentMethod) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `UPDATE payment_methods SET name = ? WHERE id = ?`, p.Name, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, core.NewDuplicateNameError(core.EntityPaymentMethod, p.Name)
		}
		return false, core.NewStorageError("update payment method", err)
	}
	return affected(res, "update payment method")
}

func (t *Tx) DeletePaymentMethod(ctx context.Context, id int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = ?`, id)
	if err != nil {
		return false, core.NewStorageError("delete payment method", err)
	}
	return affected(res, "delete payment method")
}

func (t *Tx) ClearPaymentMethods(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM payment_methods`); err != nil {
		return core.NewStorageError("clear payment methods", err)
	}
	return nil
}
