package internal

import (
	"context"
	"fmt"
	"time"

	mongodb_adapter "property-search-service/internal/adapters/mongodb"
	postgres_adapter "property-search-service/internal/adapters/postgres"
	"property-search-service/internal/configs"
	"property-search-service/internal/core/port"
	"property-search-service/pkg/mongodb"
	"property-search-service/pkg/postgres"
)

const connectTimeout = 15 * time.Second

// OpenListingStore подключается к хранилищу, выбранному в STORE_BACKEND.
// Возвращаемая функция закрывает соединение, вызывать ее нужно и при ошибке EnsureIndexes.
func OpenListingStore(ctx context.Context, cfg *configs.AppConfig, logger port.LoggerPort) (port.ListingStorePort, func(), error) {
	storeLogger := logger.WithFields(port.Fields{"component": "listing_store", "backend": cfg.StoreBackend})

	switch cfg.StoreBackend {
	case configs.StoreBackendPostgres:
		pool, err := postgres.NewClient(ctx, postgres.Config{
			DatabaseURL:    cfg.Postgres.URL,
			ConnectTimeout: connectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		store, err := postgres_adapter.NewListingStore(pool, cfg.Postgres.Table, storeLogger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case configs.StoreBackendMongo:
		client, err := mongodb.NewClient(ctx, mongodb.Config{
			URI:            cfg.Mongo.URI,
			AppName:        cfg.AppName,
			ConnectTimeout: connectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				storeLogger.Error("Error disconnecting MongoDB client", err, nil)
			}
		}
		store, err := mongodb_adapter.NewListingStore(client, cfg.Mongo.Database, cfg.Mongo.Collection, storeLogger)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
