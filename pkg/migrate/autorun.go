package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/freshcart-backend/pkg/config"
	"github.com/angelmondragon/freshcart-backend/pkg/db"
	"github.com/angelmondragon/freshcart-backend/pkg/logger"
)

// ownerKind is the only service allowed to migrate on boot. The worker and
// cron-worker start alongside the api in dev and would race it for the goose
// version table.
const ownerKind = "api"

// ShouldRunDev reports whether this process owns dev auto-migration.
func ShouldRunDev(cfg *config.Config) bool {
	if cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return false
	}
	return cfg.Service.Kind == ownerKind
}

// MaybeRunDev applies pending migrations in dev when auto-migrate is on and
// the process is the api. Other service kinds log and skip.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "serviceKind": cfg.Service.Kind}
	ctx = logg.WithFields(ctx, meta)
	if !ShouldRunDev(cfg) {
		logg.Info(ctx, "skipping dev auto-migrate; owned by the api service")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
