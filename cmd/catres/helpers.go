package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hareba/catres/internal/budget"
	"github.com/hareba/catres/internal/cache"
	"github.com/hareba/catres/internal/config"
	"github.com/hareba/catres/internal/engine"
	"github.com/hareba/catres/internal/fees"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/rules"
	"github.com/hareba/catres/internal/service"
	"github.com/hareba/catres/internal/storage"
	"github.com/hareba/catres/internal/suggest"
)

const defaultDailyBudget = 50

// initStorage opens and migrates the pattern store at the configured
// path.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/catres/catres.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initCache builds the configured result cache backend.
func initCache(ctx context.Context) (service.Cache, error) {
	switch backend := viper.GetString("cache.backend"); backend {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Address:  viper.GetString("cache.redis.address"),
			Password: viper.GetString("cache.redis.password"),
			DB:       viper.GetInt("cache.redis.db"),
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", backend)
	}
}

// buildEngine wires the full resolution pipeline from configuration.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	resultCache, err := initCache(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	suggester := suggest.NewClient(suggest.Config{
		Endpoint: viper.GetString("suggester.endpoint"),
		APIKey:   viper.GetString("suggester.api_key"),
		Timeout:  viper.GetDuration("suggester.timeout"),
	})

	maxCalls := defaultDailyBudget
	if viper.IsSet("suggester.daily_budget") {
		maxCalls = viper.GetInt("suggester.daily_budget")
	}
	tracker := budget.NewTracker(store, maxCalls)

	var opts []engine.Option
	if ttl := viper.GetDuration("cache.ttl"); ttl > 0 {
		opts = append(opts, engine.WithCacheTTL(ttl))
	}

	return engine.New(
		store,
		resultCache,
		suggester,
		tracker,
		fees.NewDefaultRepository(),
		rules.NewDefaultClassifier(),
		opts...,
	), nil
}

// queryFromFlags assembles a product query from command arguments.
func queryFromFlags(title, brand, sourceCategory string, price float64) model.ProductQuery {
	return model.ProductQuery{
		Title:          title,
		Brand:          brand,
		SourceCategory: sourceCategory,
		Price:          price,
	}
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
