package app

import (
	"context"

	"go.uber.org/zap"
)

type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, password string) error
}

// BootstrapAdmin creates ADMIN_USERNAME on first start so the API can be
// reached at all.
func BootstrapAdmin(ctx context.Context, cfg Config, accounts AdminEnsurer) {
	if cfg.AdminUsername == "" {
		return
	}
	if cfg.AdminPassword == "" {
		zap.L().Warn("ADMIN_USERNAME set without ADMIN_PASSWORD, a generated password will be mailed")
	}
	if err := accounts.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		zap.L().Error("bootstrap admin", zap.String("username", cfg.AdminUsername), zap.Error(err))
	}
}
