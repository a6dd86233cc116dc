package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// GetUserConfig reads the singleton row; found is false before first boot.
func (t *Tx) GetUserConfig(ctx context.Context) (core.UserConfig, bool, error) {
	var (
		cfg     core.UserConfig
		balance string
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, company_name, initial_balance, company_logo FROM user_config WHERE id = ?`, core.UserConfigID).
		Scan(&cfg.ID, &cfg.CompanyName, &balance, &cfg.CompanyLogo)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserConfig{}, false, nil
	}
	if err != nil {
		return core.UserConfig{}, false, core.NewStorageError("get user config", err)
	}
	cfg.InitialBalance, err = decimal.NewFromString(balance)
	if err != nil {
		return core.UserConfig{}, false, core.NewStorageError("get user config", err)
	}
	return cfg, true, nil
}

// PutUserConfig writes the singleton row under its fixed key, whatever
// cfg.ID holds.
func (t *Tx) PutUserConfig(ctx context.Context, cfg core.UserConfig) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO user_config (id, company_name, initial_balance, company_logo) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET company_name = excluded.company_name,
		   initial_balance = excluded.initial_balance, company_logo = excluded.company_logo`,
		core.UserConfigID, cfg.CompanyName, cfg.InitialBalance.String(), cfg.CompanyLogo)
	if err != nil {
		return core.NewStorageError("put user config", err)
	}
	return nil
}

func (t *Tx) ClearUserConfig(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM user_config`); err != nil {
		return core.NewStorageError("clear user config", err)
	}
	return nil
}
