package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const transactionColumns = `id, date, description, value, type, condition, installments, category_id, payment_method_id`

// TransactionScan is a range scan over transactions ordered by date. Only
// the structured fields of Filter are applied here; free-text search needs
// resolved names and happens after enrichment.
type TransactionScan struct {
	Filter     core.TransactionFilter
	Descending bool
}

// ScanTransactions returns the transactions matching scan, ordered by date
// then id.
func (t *Tx) ScanTransactions(ctx context.Context, scan TransactionScan) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	f := scan.Filter
	if f.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, f.StartDate.StartOfDay().String())
	}
	if f.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, f.EndDate.EndOfDay().String())
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.PaymentMethodID != nil {
		where = append(where, "payment_method_id = ?")
		args = append(args, *f.PaymentMethodID)
	}
	if f.Condition != "" {
		where = append(where, "condition = ?")
		args = append(args, string(f.Condition))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if scan.Descending {
		query += ` ORDER BY date DESC, id DESC`
	} else {
		query += ` ORDER BY date ASC, id ASC`
	}
	return t.queryTransactions(ctx, "scan transactions", query, args...)
}

// ListTransactions returns every raw transaction in insertion order.
func (t *Tx) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return t.queryTransactions(ctx, "list transactions", `SELECT `+transactionColumns+` FROM transactions ORDER BY id ASC`)
}

func (t *Tx) GetTransaction(ctx context.Context, id int64) (core.Transaction, bool, error) {
	out, err := t.queryTransactions(ctx, "get transaction", `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	if err != nil {
		return core.Transaction{}, false, err
	}
	if len(out) == 0 {
		return core.Transaction{}, false, nil
	}
	return out[0], true, nil
}

// GetTransactionsByIDs is a batch fetch; missing ids are skipped.
func (t *Tx) GetTransactionsByIDs(ctx context.Context, ids []int64) ([]core.Transaction, error) {
	if len(ids) == 0 {
		return []core.Transaction{}, nil
	}
	out := []core.Transaction{}
	for _, batch := range idBatches(ids) {
		query, args := inClause(`SELECT `+transactionColumns+` FROM transactions WHERE id IN `, batch)
		rows, err := t.queryTransactions(ctx, "get transactions", query, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// InsertTransaction ignores tx.ID and returns the assigned key.
func (t *Tx) InsertTransaction(ctx context.Context, tr core.Transaction) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO transactions (date, description, value, type, condition, installments, category_id, payment_method_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.Date.String(), tr.Description, tr.Value.String(), string(tr.Type), string(tr.Condition),
		tr.Installments, nullInt(tr.CategoryID), nullInt(tr.PaymentMethodID))
	if err != nil {
		if isRowViolation(err) {
			return 0, core.NewValidationError("invalid transaction: %s", constraintDetail(err))
		}
		return 0, core.NewStorageError("insert transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.NewStorageError("insert transaction", err)
	}
	return id, nil
}

// UpdateTransaction replaces every mutable field of the row with tr.ID.
func (t *Tx) UpdateTransaction(ctx context.Context, tr core.Transaction) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE transactions SET date = ?, description = ?, value = ?, type = ?, condition = ?,
		 installments = ?, category_id = ?, payment_method_id = ? WHERE id = ?`,
		tr.Date.String(), tr.Description, tr.Value.String(), string(tr.Type), string(tr.Condition),
		tr.Installments, nullInt(tr.CategoryID), nullInt(tr.PaymentMethodID), tr.ID)
	if err != nil {
		if isRowViolation(err) {
			return false, core.NewValidationError("invalid transaction: %s", constraintDetail(err))
		}
		return false, core.NewStorageError("update transaction", err)
	}
	return affected(res, "update transaction")
}

// DeleteTransactions removes the given ids and returns how many existed.
// Long lists are deleted in batches within the same scope.
func (t *Tx) DeleteTransactions(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	for _, batch := range idBatches(ids) {
		query, args := inClause(`DELETE FROM transactions WHERE id IN `, batch)
		res, err := t.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return total, core.NewStorageError("delete transactions", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, core.NewStorageError("delete transactions", err)
		}
		total += n
	}
	return total, nil
}

// ClearCategoryRefs nulls category_id on every transaction pointing at id.
func (t *Tx) ClearCategoryRefs(ctx context.Context, id int64) (int64, error) {
	return t.clearRefs(ctx, "category_id", id)
}

// ClearPaymentMethodRefs nulls payment_method_id on every transaction
// pointing at id.
func (t *Tx) ClearPaymentMethodRefs(ctx context.Context, id int64) (int64, error) {
	return t.clearRefs(ctx, "payment_method_id", id)
}

func (t *Tx) clearRefs(ctx context.Context, column string, id int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, fmt.Sprintf(`UPDATE transactions SET %s = NULL WHERE %s = ?`, column, column), id)
	if err != nil {
		return 0, core.NewStorageError("clear "+column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.NewStorageError("clear "+column, err)
	}
	return n, nil
}

func (t *Tx) ClearTransactions(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return core.NewStorageError("clear transactions", err)
	}
	return nil
}

func (t *Tx) queryTransactions(ctx context.Context, op, query string, args ...any) ([]core.Transaction, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewStorageError(op, err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, core.NewStorageError(op, err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError(op, err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tr          core.Transaction
		date, value string
		typ, cond   string
		catID, pmID sql.NullInt64
	)
	if err := rows.Scan(&tr.ID, &date, &tr.Description, &value, &typ, &cond, &tr.Installments, &catID, &pmID); err != nil {
		return core.Transaction{}, err
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", tr.ID, err)
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return core.Transaction{}, errors.Join(fmt.Errorf("transaction %d: bad value %q", tr.ID, value), err)
	}

	tr.Date = d
	tr.Value = v
	tr.Type = core.TransactionType(typ)
	tr.Condition = core.Condition(cond)
	if catID.Valid {
		id := catID.Int64
		tr.CategoryID = &id
	}
	if pmID.Valid {
		id := pmID.Int64
		tr.PaymentMethodID = &id
	}
	return tr, nil
}
