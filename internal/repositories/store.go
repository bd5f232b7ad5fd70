package repositories

import (
	"context"
	"fmt"

	"catalog/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is an open connection to the configured product store.
// Close releases it; a Store must not be used after Close.
type Store struct {
	Products ProductRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the underlying store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects to the store selected by cfg.Driver and prepares its
// schema (indexes for MongoDB, AutoMigrate for the GORM drivers).
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		return openMongo(ctx, cfg, logger)
	case config.StorePostgres:
		return openGORM(postgres.Open(cfg.DSN), cfg.Driver, logger)
	case config.StoreSQLite:
		return openGORM(sqlite.Open(cfg.DSN), cfg.Driver, logger)
	case config.StoreMemory:
		logger.Warn("Using in-memory product store; data is lost on restart")
		return &Store{Products: NewMemoryProductRepository()}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	repo := NewMongoProductRepository(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("Connected to MongoDB",
		zap.String("database", cfg.MongoDatabase),
		zap.String("collection", cfg.MongoCollection))

	return &Store{
		Products: repo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

func openGORM(dialector gorm.Dialector, driver string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s connection pool: %w", driver, err)
	}

	repo := NewGORMProductRepository(db)
	if err := repo.Migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("Connected to SQL database", zap.String("driver", driver))

	return &Store{
		Products: repo,
		ping:     sqlDB.PingContext,
		close: func(context.Context) error {
			return sqlDB.Close()
		},
	}, nil
}
