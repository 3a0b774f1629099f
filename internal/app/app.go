// Package app wires configuration, stores and feature packages into a
// runnable server for one service or for all of them.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"microshop/internal/client"
	"microshop/internal/core/cache"
	"microshop/internal/core/config"
	"microshop/internal/core/database"
	"microshop/internal/core/httpclient"
	"microshop/internal/core/identity"
	"microshop/internal/core/logger"
	"microshop/internal/core/server"
	authadapter "microshop/internal/features/auth/adapters"
	authhandler "microshop/internal/features/auth/handler"
	authservice "microshop/internal/features/auth/service"
	catalogadapter "microshop/internal/features/catalog/adapters"
	cataloghandler "microshop/internal/features/catalog/handler"
	catalogservice "microshop/internal/features/catalog/service"
	orderadapter "microshop/internal/features/orders/adapters"
	orderhandler "microshop/internal/features/orders/handler"
	orderports "microshop/internal/features/orders/ports"
	orderservice "microshop/internal/features/orders/service"
	shippingadapter "microshop/internal/features/shipping/adapters"
	shippinghandler "microshop/internal/features/shipping/handler"
	shippingservice "microshop/internal/features/shipping/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service names accepted by Build.
const (
	ServiceAuth     = "auth"
	ServiceCatalog  = "catalog"
	ServiceOrders   = "orders"
	ServiceShipping = "shipping"
	ServiceAll      = "all"
)

// Services lists every single service in mount order.
var Services = []string{ServiceAuth, ServiceCatalog, ServiceOrders, ServiceShipping}

// MountPrefixes is where each service lives when all run in one process.
var MountPrefixes = map[string]string{
	ServiceAuth:     "/auth",
	ServiceCatalog:  "/products",
	ServiceOrders:   "/orders",
	ServiceShipping: "/shipping",
}

func init() {
	// Money travels as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// App is a built server plus the resources it must release.
type App struct {
	Server  *server.Server
	closers []func(context.Context) error
}

// builder holds the resources shared by the services of one process.
// Stores are opened on first use.
type builder struct {
	cfg    *config.AppConfig
	tokens *identity.Tokens
	auth   fiber.Handler
	app    *App

	db    *sql.DB
	mongo *mongo.Client
}

// Build creates the server for name, one of Services or ServiceAll.
// Standalone services are mounted at "/", ServiceAll mounts each under MountPrefixes.
func Build(ctx context.Context, cfg *config.AppConfig, name string) (*App, error) {
	names, err := resolve(name)
	if err != nil {
		return nil, err
	}

	tokens := identity.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	b := &builder{
		cfg:    cfg,
		tokens: tokens,
		auth:   identity.Middleware(tokens),
		app:    &App{Server: server.New(cfg, name)},
	}

	for _, n := range names {
		var router fiber.Router = b.app.Server.App
		if name == ServiceAll {
			router = b.app.Server.App.Group(MountPrefixes[n])
		}

		if err := b.mount(ctx, n, router); err != nil {
			_ = b.app.Shutdown(ctx)
			return nil, fmt.Errorf("failed to build %s service: %w", n, err)
		}
		logger.Get().Info("Service mounted", zap.String("service", n), zap.String("prefix", prefixFor(name, n)))
	}

	return b.app, nil
}

// Run starts serving and blocks until the server stops.
func (a *App) Run() error {
	return a.Server.Run()
}

// Shutdown stops the server and releases every store, newest first.
func (a *App) Shutdown(ctx context.Context) error {
	errs := []error{a.Server.Shutdown(ctx)}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

func resolve(name string) ([]string, error) {
	if name == ServiceAll {
		return Services, nil
	}
	for _, s := range Services {
		if s == name {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("unknown service %q (want one of auth, catalog, orders, shipping, all)", name)
}

func prefixFor(name, service string) string {
	if name == ServiceAll {
		return MountPrefixes[service]
	}
	return "/"
}

func (b *builder) mount(ctx context.Context, name string, r fiber.Router) error {
	switch name {
	case ServiceAuth:
		return b.mountAuth(ctx, r)
	case ServiceCatalog:
		return b.mountCatalog(ctx, r)
	case ServiceOrders:
		return b.mountOrders(ctx, r)
	case ServiceShipping:
		return b.mountShipping(ctx, r)
	}
	return fmt.Errorf("unknown service %q", name)
}

func (b *builder) mountAuth(ctx context.Context, r fiber.Router) error {
	db, err := b.sqlite()
	if err != nil {
		return err
	}

	repo, err := authadapter.NewSQLiteUserRepository(ctx, db)
	if err != nil {
		return err
	}
	if b.cfg.SeedSampleData {
		b.seeded(ServiceAuth)(repo.Seed(ctx))
	}

	authhandler.NewAuthHandler(authservice.NewAuthService(repo, b.tokens)).Register(r, b.auth)
	return nil
}

func (b *builder) mountCatalog(ctx context.Context, r fiber.Router) error {
	db, err := b.sqlite()
	if err != nil {
		return err
	}

	repo, err := catalogadapter.NewSQLiteProductRepository(ctx, db)
	if err != nil {
		return err
	}
	if b.cfg.SeedSampleData {
		b.seeded(ServiceCatalog)(repo.Seed(ctx))
	}

	cached := catalogadapter.NewCachedProductRepository(repo, b.cache(ctx, ServiceCatalog), b.cfg.Redis.CacheTTL())
	cataloghandler.NewProductHandler(catalogservice.NewCatalogService(cached)).Register(r, b.auth)
	return nil
}

func (b *builder) mountOrders(ctx context.Context, r fiber.Router) error {
	db, err := b.sqlite()
	if err != nil {
		return err
	}

	repo, err := orderadapter.NewSQLiteOrderRepository(ctx, db)
	if err != nil {
		return err
	}
	if b.cfg.SeedSampleData {
		b.seeded(ServiceOrders)(repo.Seed(ctx))
	}

	var prices orderports.PriceCatalog
	if b.cfg.Catalog.URL != "" {
		catalogClient := client.New(client.Endpoints{Catalog: b.cfg.Catalog.URL}, httpclient.NewClient(b.cfg.Catalog.Timeout()))
		prices = orderadapter.NewCatalogPrices(catalogClient)
		logger.Get().Info("Order items are priced by the catalog", zap.String("catalog_url", b.cfg.Catalog.URL))
	}

	var notifier orderports.Notifier = orderadapter.NoopNotifier{}
	if b.cfg.Postmark.ServerToken != "" {
		notifier = orderadapter.NewPostmarkNotifier(b.cfg.Postmark.ServerToken, b.cfg.Postmark.Sender)
	}

	orderhandler.NewOrderHandler(orderservice.NewOrderService(repo, prices, notifier)).Register(r, b.auth)
	return nil
}

func (b *builder) mountShipping(ctx context.Context, r fiber.Router) error {
	mc, err := b.mongoClient(ctx)
	if err != nil {
		return err
	}

	coll := mc.Database(b.cfg.Mongo.Database).Collection(shippingadapter.CollectionName)
	repo := shippingadapter.NewMongoShipmentRepository(coll)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if b.cfg.SeedSampleData {
		b.seeded(ServiceShipping)(repo.Seed(ctx, time.Now()))
	}

	svc := shippingservice.NewShippingService(repo, b.cache(ctx, ServiceShipping), b.cfg.Redis.CacheTTL())
	shippinghandler.NewShippingHandler(svc).Register(r, b.auth)
	return nil
}

// sqlite opens the relational store shared by auth, catalog and orders.
func (b *builder) sqlite() (*sql.DB, error) {
	if b.db != nil {
		return b.db, nil
	}

	db, err := database.OpenSQLite(b.cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	b.db = db
	b.app.closers = append(b.app.closers, func(context.Context) error { return db.Close() })
	return db, nil
}

func (b *builder) mongoClient(ctx context.Context) (*mongo.Client, error) {
	if b.mongo != nil {
		return b.mongo, nil
	}

	mc, err := database.ConnectMongo(ctx, b.cfg.Mongo.URL)
	if err != nil {
		return nil, err
	}
	b.mongo = mc
	b.app.closers = append(b.app.closers, mc.Disconnect)
	return mc, nil
}

// cache returns a Redis cache namespaced by service, or Noop when REDIS_URL
// is empty or malformed. An unreachable Redis is kept: reads fall back to the store.
func (b *builder) cache(ctx context.Context, service string) cache.Cache {
	l := logger.Get().With(zap.String("service", service))
	if b.cfg.Redis.URL == "" {
		l.Info("Caching disabled")
		return cache.Noop{}
	}

	c, err := cache.NewRedisAdapter(b.cfg.Redis.URL, service)
	if err != nil {
		l.Warn("Invalid REDIS_URL, caching disabled", zap.Error(err))
		return cache.Noop{}
	}
	if err := c.Ping(ctx); err != nil {
		l.Warn("Redis unreachable, reads will fall back to the store", zap.Error(err))
	}

	b.app.closers = append(b.app.closers, func(context.Context) error { return c.Close() })
	return c
}

func (b *builder) seeded(service string) func(int, error) {
	return func(n int, err error) {
		l := logger.Get().With(zap.String("service", service))
		if err != nil {
			l.Warn("Failed to seed sample data", zap.Int("inserted", n), zap.Error(err))
			return
		}
		if n > 0 {
			l.Info("Seeded sample data", zap.Int("inserted", n))
		}
	}
}
