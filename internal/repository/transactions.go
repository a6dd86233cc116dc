package repository

import (
	"context"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

type TransactionRepository struct {
	base
}

// Add validates t and stores it, returning the new id. t.ID is ignored.
func (r *TransactionRepository) Add(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		var err error
		id, err = tx.InsertTransaction(ctx, t)
		return err
	})
	if err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "Transaction created", log.NewFields().
		WithOperation(log.OpCreate).WithRecord(core.EntityTransaction, id).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityTransaction, log.OpCreate, id))
	return id, nil
}

// Update replaces every mutable field of transaction id.
func (r *TransactionRepository) Update(ctx context.Context, id int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.ID = id

	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		ok, err := tx.UpdateTransaction(ctx, t)
		if err != nil {
			return err
		}
		if !ok {
			return core.NewNotFoundError(core.EntityTransaction, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithOperation(log.OpUpdate).WithRecord(core.EntityTransaction, id).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityTransaction, log.OpUpdate, id))
	return nil
}

// Delete removes transaction id. A missing id is not an error.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	return r.DeleteMany(ctx, []int64{id})
}

// DeleteMany removes every listed transaction. Unknown ids are skipped and
// an empty list does nothing.
func (r *TransactionRepository) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var n int64
	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		var err error
		n, err = tx.DeleteTransactions(ctx, ids)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Transactions deleted", log.NewFields().
		WithOperation(log.OpDelete).With(log.FieldEntity, core.EntityTransaction).
		With(log.FieldCount, n).ToSlice()...)
	if n > 0 {
		r.notify(ctx, core.NewChangeEvent(core.EntityTransaction, log.OpDelete, ids...))
	}
	return nil
}

// GetByID returns the enriched transaction, or nil when id does not exist.
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*core.TransactionWithNames, error) {
	var out *core.TransactionWithNames
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		t, found, err := tx.GetTransaction(ctx, id)
		if err != nil || !found {
			return err
		}
		rows, err := enrich(ctx, tx, []core.Transaction{t})
		if err != nil {
			return err
		}
		out = &rows[0]
		return nil
	})
	return out, err
}

// ListAll returns every transaction without names, ordered by id.
func (r *TransactionRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		out, err = tx.ListTransactions(ctx)
		return err
	})
	return out, err
}

// Query returns the transactions matching f, most recent first. Structured
// fields are applied by the store; the free-text query runs afterwards over
// description and the resolved category and payment method names.
func (r *TransactionRepository) Query(ctx context.Context, f core.TransactionFilter) ([]core.TransactionWithNames, error) {
	var out []core.TransactionWithNames
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		rows, err := tx.ScanTransactions(ctx, storage.TransactionScan{Filter: f, Descending: true})
		if err != nil {
			return err
		}
		out, err = enrich(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return MatchText(out, f.Query), nil
}

// Snapshot is the config and every enriched transaction, read in one
// scope so they are mutually consistent.
type Snapshot struct {
	Config       core.UserConfig
	Transactions []core.TransactionWithNames
}

// Snapshot returns the whole ledger in ascending date order. Reports derive
// both the carried-forward balance and the period from it, so one request
// reads the table once. A missing config reads as the defaults.
func (r *TransactionRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		cfg, found, err := tx.GetUserConfig(ctx)
		if err != nil {
			return err
		}
		if !found {
			cfg = core.DefaultUserConfig()
		}
		snap.Config = cfg

		rows, err := tx.ScanTransactions(ctx, storage.TransactionScan{})
		if err != nil {
			return err
		}
		snap.Transactions, err = enrich(ctx, tx, rows)
		return err
	})
	return snap, err
}

// MatchText keeps the rows whose description, category name or payment
// method name contains q, ignoring case. A blank q keeps everything.
func MatchText(rows []core.TransactionWithNames, q string) []core.TransactionWithNames {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	out := make([]core.TransactionWithNames, 0, len(rows))
	for _, row := range rows {
		if contains(row.Description, q) || containsPtr(row.CategoryName, q) || containsPtr(row.PaymentMethodName, q) {
			out = append(out, row)
		}
	}
	return out
}

func contains(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

func containsPtr(s *string, lowered string) bool {
	return s != nil && contains(*s, lowered)
}

// enrich resolves category and payment method names with one batch fetch
// per collection. Null or dangling references leave the names nil.
func enrich(ctx context.Context, tx *storage.Tx, rows []core.Transaction) ([]core.TransactionWithNames, error) {
	var catIDs, pmIDs []int64
	seenCat, seenPM := map[int64]bool{}, map[int64]bool{}
	for _, t := range rows {
		if t.CategoryID != nil && !seenCat[*t.CategoryID] {
			seenCat[*t.CategoryID] = true
			catIDs = append(catIDs, *t.CategoryID)
		}
		if t.PaymentMethodID != nil && !seenPM[*t.PaymentMethodID] {
			seenPM[*t.PaymentMethodID] = true
			pmIDs = append(pmIDs, *t.PaymentMethodID)
		}
	}

	cats, err := tx.GetCategoriesByIDs(ctx, catIDs)
	if err != nil {
		return nil, err
	}
	pms, err := tx.GetPaymentMethodsByIDs(ctx, pmIDs)
	if err != nil {
		return nil, err
	}

	out := make([]core.TransactionWithNames, len(rows))
	for i, t := range rows {
		out[i].Transaction = t
		if t.CategoryID != nil {
			if c, ok := cats[*t.CategoryID]; ok {
				name, icon := c.Name, c.IconName
				out[i].CategoryName, out[i].CategoryIcon = &name, &icon
			}
		}
		if t.PaymentMethodID != nil {
			if p, ok := pms[*t.PaymentMethodID]; ok {
				name := p.Name
				out[i].PaymentMethodName = &name
			}
		}
	}
	return out, nil
}
