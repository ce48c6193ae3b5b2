// Package app wires configuration into a running storefront: catalog
// stores, result cache, services and the HTTP kernel.
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close()
//	return a.Serve(ctx)
//
// Tests and the CLI can skip Boot and assemble an Application from
// in-memory stores with New.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// indexer is implemented by stores that need server-side indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Application holds the wired dependencies of one process.
type Application struct {
	Products   repositories.ProductStore
	Categories repositories.CategoryStore
	Cache      cache.Store

	Search        *services.SearchService
	Catalog       *services.CatalogService
	CategoryAdmin *services.CategoryService

	closers []func() error
}

// New assembles an Application around the given stores and cache, with
// search TTL and browse limit read from config.
func New(products repositories.ProductStore, categories repositories.CategoryStore, store cache.Store) *Application {
	return &Application{
		Products:      products,
		Categories:    categories,
		Cache:         store,
		Search:        services.NewSearchService(products, categories, store, config.SearchCacheTTL(), config.BrowseFetchLimit()),
		Catalog:       services.NewCatalogService(products, categories),
		CategoryAdmin: services.NewCategoryService(categories),
	}
}

// Boot loads config and connects the configured store and cache drivers.
// The memory cache gets a janitor bound to ctx.
func Boot(ctx context.Context) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.EnableMongo(uri, config.MongoDatabase()); err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			closers = append(closers, func() error { logger.Close(); return nil })
		}
	}

	var (
		products   repositories.ProductStore
		categories repositories.CategoryStore
	)
	switch config.DatabaseDriver() {
	case "mongo":
		conn, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, conn.Close)
		products = repositories.NewMongoProducts(conn.DB)
		categories = repositories.NewMongoCategories(conn.DB)
	default:
		products = repositories.NewMemoryProducts()
		categories = repositories.NewMemoryCategories()
	}

	var store cache.Store
	switch config.CacheDriver() {
	case "redis":
		r, err := cache.NewRedis(ctx, config.RedisAddr(), config.RedisPassword(), config.CachePrefix())
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, r.Close)
		store = r
	default:
		m := cache.NewMemory()
		m.StartJanitor(ctx, time.Minute)
		store = m
	}

	a := New(products, categories, store)
	a.closers = closers

	logger.Info("application booted",
		"env", config.AppEnv(),
		"db", config.DatabaseDriver(),
		"cache", store.Driver(),
		"search_ttl", config.SearchCacheTTL().String(),
	)
	return a, nil
}

// EnsureIndexes creates the store indexes when the driver has any.
func (a *Application) EnsureIndexes(ctx context.Context) error {
	var errs []error
	for _, s := range []any{a.Products, a.Categories} {
		if ix, ok := s.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases connections in reverse order of acquisition.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
