package storage

import (
	"context"

	"ledger/internal/core"
)

// RestoreResult counts what ReplaceAll wrote.
type RestoreResult struct {
	Categories     int `json:"categories"`
	PaymentMethods int `json:"paymentMethods"`
	Transactions   int `json:"transactions"`
	// OrphanedRefs counts foreign keys that pointed outside the document
	// and were written as null.
	OrphanedRefs int `json:"orphanedRefs"`
}

// ReplaceAll clears every collection and writes doc in their place. Record
// ids in doc are not reused: categories and payment methods get fresh keys,
// and transaction references are remapped through old-id -> new-id maps
// built from array position. Unmapped references become null.
//
// Per-entity validation is skipped on purpose; the schema's constraints
// still apply and any violation fails the whole scope. Rows breaking them
// are reported as ValidationError naming their position in doc.
func (t *Tx) ReplaceAll(ctx context.Context, doc core.Document) (RestoreResult, error) {
	var res RestoreResult

	if err := t.ClearTransactions(ctx); err != nil {
		return res, err
	}
	if err := t.ClearCategories(ctx); err != nil {
		return res, err
	}
	if err := t.ClearPaymentMethods(ctx); err != nil {
		return res, err
	}
	if err := t.ClearUserConfig(ctx); err != nil {
		return res, err
	}

	cfg := core.DefaultUserConfig()
	if doc.UserConfig != nil {
		cfg = *doc.UserConfig
	}
	if err := t.PutUserConfig(ctx, cfg); err != nil {
		return res, err
	}

	categoryIDs := make(map[int64]int64, len(doc.Categories))
	for i, c := range doc.Categories {
		id, err := t.InsertCategory(ctx, c.Name, c.IconName)
		if err != nil {
			return res, rowError("categories", i, err)
		}
		categoryIDs[c.ID] = id
		res.Categories++
	}

	paymentMethodIDs := make(map[int64]int64, len(doc.PaymentMethods))
	for i, p := range doc.PaymentMethods {
		id, err := t.InsertPaymentMethod(ctx, p.Name)
		if err != nil {
			return res, rowError("paymentMethods", i, err)
		}
		paymentMethodIDs[p.ID] = id
		res.PaymentMethods++
	}

	for i, tr := range doc.Transactions {
		var orphaned int
		tr.CategoryID, orphaned = remap(tr.CategoryID, categoryIDs)
		res.OrphanedRefs += orphaned
		tr.PaymentMethodID, orphaned = remap(tr.PaymentMethodID, paymentMethodIDs)
		res.OrphanedRefs += orphaned
		tr.ID = 0

		if _, err := t.InsertTransaction(ctx, tr); err != nil {
			return res, rowError("transactions", i, err)
		}
		res.Transactions++
	}

	return res, nil
}

// rowError turns a rejected document row into a ValidationError carrying
// its collection and index. Storage failures pass through.
func rowError(collection string, i int, err error) error {
	if core.IsValidation(err) || core.IsDuplicateName(err) {
		return core.NewValidationError("%s[%d]: %v", collection, i, err)
	}
	return err
}

func remap(old *int64, ids map[int64]int64) (*int64, int) {
	if old == nil {
		return nil, 0
	}
	id, ok := ids[*old]
	if !ok {
		return nil, 1
	}
	return &id, 0
}
