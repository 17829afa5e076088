// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/inkwell/internal/app/store/mongostore"
	"github.com/dalemusser/inkwell/internal/app/store/sqlstore"
	"github.com/dalemusser/inkwell/internal/app/system/indexes"
	"github.com/dalemusser/inkwell/internal/app/system/timeouts"
	"github.com/dalemusser/inkwell/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured store backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	switch appCfg.StoreBackend {
	case backendSQLite:
		st, err := sqlstore.Open(appCfg.SQLiteDSN, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("connected to SQLite", zap.String("dsn", appCfg.SQLiteDSN))
		return DBDeps{Store: st, SQL: st.DB()}, nil

	default:
		return connectMongo(ctx, appCfg, logger)
	}
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeouts.Ping())
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		Store:         mongostore.New(db),
		MongoClient:   client,
		MongoDatabase: db,
	}, nil
}

// EnsureSchema creates Mongo collections, validators and indexes, or runs
// SQL migrations.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase != nil {
		if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
			logger.Error("ensure validators failed", zap.Error(err))
			return err
		}
		if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
			logger.Error("ensure indexes failed", zap.Error(err))
			return err
		}
		logger.Info("mongo indexes ensured")
		return nil
	}

	if st, ok := deps.Store.(*sqlstore.Store); ok {
		if err := st.Migrate(ctx); err != nil {
			logger.Error("sql migration failed", zap.Error(err))
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("sql schema migrated")
	}
	return nil
}
