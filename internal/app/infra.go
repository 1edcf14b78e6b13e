package app

import (
	"context"
	"errors"

	"github.com/dominic-source/kadabite-app/internal/audit"
	"github.com/dominic-source/kadabite-app/internal/config"
	"github.com/dominic-source/kadabite-app/internal/db"
	"github.com/dominic-source/kadabite-app/internal/environment"
	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/redis"
	"github.com/dominic-source/kadabite-app/internal/session"
)

// Infra holds the stores chosen from configuration. Redis and postgres are
// both optional; without them the process keeps state in memory and skips
// the audit trail.
type Infra struct {
	DB    *db.DB
	Redis *redis.Client

	Sessions    session.Store
	Preferences environment.PreferenceStore
	Audit       audit.Recorder
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{
		Sessions:    session.NewMemoryStore(),
		Preferences: environment.NewMemoryStore(),
		Audit:       audit.NopRecorder{},
	}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, err
		}
		infra.DB = database
		infra.Audit = audit.NewDBRecorder(database)
		logger.Info("database ready", nil)
	} else {
		logger.Warn("DATABASE_DSN not set, sign-in audit disabled", nil)
	}

	if cfg.RedisAddr != "" {
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.Redis = client
		infra.Sessions = session.NewRedisStore(client.Client)
		infra.Preferences = environment.NewRedisStore(client.Client)
		logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})
	} else {
		logger.Warn("REDIS_ADDR not set, sessions kept in memory", nil)
	}

	return infra, nil
}

// Close releases every open connection.
func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	return errors.Join(errs...)
}
