// Package repository holds the typed CRUD operations over the store. They
// are the only mutation path for records, and each multi-step operation runs
// inside one atomic store scope.
package repository

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// ChangeNotifier is told about mutations after they commit. It must not
// fail the caller; a committed change stays committed.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, ev core.ChangeEvent)
}

type base struct {
	store    *storage.Store
	logger   *log.Logger
	notifier ChangeNotifier
}

func (b base) notify(ctx context.Context, ev core.ChangeEvent) {
	if b.notifier != nil {
		b.notifier.NotifyChange(ctx, ev)
	}
}

// Repositories bundles every record repository over one store.
type Repositories struct {
	Categories     *CategoryRepository
	PaymentMethods *PaymentMethodRepository
	Transactions   *TransactionRepository
	Config         *UserConfigRepository
}

// New builds all repositories. logger and notifier may be nil.
func New(store *storage.Store, logger *log.Logger, notifier ChangeNotifier) *Repositories {
	b := base{
		store:    store,
		logger:   log.OrDefault(logger).WithComponent(log.ComponentRepository),
		notifier: notifier,
	}
	return &Repositories{
		Categories:     &CategoryRepository{base: b},
		PaymentMethods: &PaymentMethodRepository{base: b},
		Transactions:   &TransactionRepository{base: b},
		Config:         &UserConfigRepository{base: b},
	}
}
