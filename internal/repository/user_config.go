package repository

import (
	"context"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

type UserConfigRepository struct {
	base
}

// Get returns the singleton config, writing the defaults if it is missing.
func (r *UserConfigRepository) Get(ctx context.Context) (core.UserConfig, error) {
	var cfg core.UserConfig
	var found bool
	err := r.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		cfg, found, err = tx.GetUserConfig(ctx)
		return err
	})
	if err != nil || found {
		return cfg, err
	}

	err = r.store.Update(ctx, func(tx *storage.Tx) error {
		// Another writer may have won the race between the two scopes.
		if cfg, found, err = tx.GetUserConfig(ctx); err != nil || found {
			return err
		}
		cfg = core.DefaultUserConfig()
		return tx.PutUserConfig(ctx, cfg)
	})
	return cfg, err
}

// Update overwrites the singleton config in place.
func (r *UserConfigRepository) Update(ctx context.Context, cfg core.UserConfig) (core.UserConfig, error) {
	cfg.ID = core.UserConfigID
	if !cfg.InitialBalance.Equal(cfg.InitialBalance.Round(2)) {
		return core.UserConfig{}, core.NewValidationError("initial balance %s has more than 2 decimal places", cfg.InitialBalance)
	}
	if len(cfg.CompanyName) > 200 {
		return core.UserConfig{}, core.NewValidationError("company name too long (max 200 characters)")
	}

	err := r.store.Update(ctx, func(tx *storage.Tx) error {
		return tx.PutUserConfig(ctx, cfg)
	})
	if err != nil {
		return core.UserConfig{}, err
	}

	r.logger.InfoContext(ctx, "User config updated", log.NewFields().
		WithOperation(log.OpUpdate).WithRecord(core.EntityUserConfig, core.UserConfigID).ToSlice()...)
	r.notify(ctx, core.NewChangeEvent(core.EntityUserConfig, log.OpUpdate, core.UserConfigID))
	return cfg, nil
}
