package services

import (
	"context"
	"io"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/repository"
	"ledger/internal/storage"
)

// BackupService exports and restores the whole ledger. Restore writes
// through the store directly since it must bypass per-record checks.
type BackupService struct {
	store        *storage.Store
	notifier     repository.ChangeNotifier
	seedExamples bool
	logger       *log.Logger
}

func NewBackupService(store *storage.Store, notifier repository.ChangeNotifier, seedExamples bool, logger *log.Logger) *BackupService {
	return &BackupService{
		store:        store,
		notifier:     notifier,
		seedExamples: seedExamples,
		logger:       log.OrDefault(logger).WithComponent(log.ComponentBackup),
	}
}

// Export reads every collection in one scope.
func (s *BackupService) Export(ctx context.Context) (core.Document, error) {
	doc := core.Document{Version: core.DocumentVersion}
	err := s.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		if doc.Categories, err = tx.ListCategories(ctx); err != nil {
			return err
		}
		if doc.PaymentMethods, err = tx.ListPaymentMethods(ctx); err != nil {
			return err
		}
		if doc.Transactions, err = tx.ListTransactions(ctx); err != nil {
			return err
		}
		cfg, found, err := tx.GetUserConfig(ctx)
		if err != nil {
			return err
		}
		if !found {
			cfg = core.DefaultUserConfig()
		}
		doc.UserConfig = &cfg
		return nil
	})
	if err != nil {
		return core.Document{}, err
	}

	s.logger.InfoContext(ctx, "Ledger exported", log.NewFields().
		WithOperation(log.OpExport).With(log.FieldCount, len(doc.Transactions)).ToSlice()...)
	return doc, nil
}

func (s *BackupService) ExportJSON(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	return core.EncodeDocument(w, doc)
}

// Import replaces the whole ledger with doc. On any failure the previous
// content is left untouched.
func (s *BackupService) Import(ctx context.Context, doc core.Document) (storage.RestoreResult, error) {
	if err := doc.Validate(); err != nil {
		return storage.RestoreResult{}, err
	}
	return s.replace(ctx, doc, log.OpImport)
}

func (s *BackupService) ImportJSON(ctx context.Context, r io.Reader) (storage.RestoreResult, error) {
	doc, err := core.DecodeDocument(r)
	if err != nil {
		return storage.RestoreResult{}, err
	}
	return s.replace(ctx, doc, log.OpImport)
}

// ResetToDefaults replaces the ledger with the first-boot content.
func (s *BackupService) ResetToDefaults(ctx context.Context) error {
	_, err := s.replace(ctx, storage.SeedDocument(s.seedExamples), log.OpReset)
	return err
}

func (s *BackupService) replace(ctx context.Context, doc core.Document, op string) (storage.RestoreResult, error) {
	var res storage.RestoreResult
	err := s.store.Update(ctx, func(tx *storage.Tx) error {
		var err error
		res, err = tx.ReplaceAll(ctx, doc)
		return err
	})
	if err != nil {
		s.logger.LogError(ctx, "Ledger restore failed, previous data kept", err, op, nil)
		return storage.RestoreResult{}, err
	}

	s.logger.InfoContext(ctx, "Ledger restored", log.NewFields().
		WithOperation(op).
		With("categories", res.Categories).
		With("payment_methods", res.PaymentMethods).
		With("transactions", res.Transactions).
		With("orphaned_refs", res.OrphanedRefs).ToSlice()...)
	if s.notifier != nil {
		s.notifier.NotifyChange(ctx, core.NewChangeEvent(core.EntityLedger, op))
	}
	return res, nil
}
