// Package container wires the application dependency graph: config,
// infrastructure, repositories, services, handlers. Everything is a
// singleton built once at startup.
package container

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"inventory-backend/internal/config"
	infraCache "inventory-backend/internal/infrastructure/cache"
	"inventory-backend/internal/infrastructure/database"
	"inventory-backend/internal/infrastructure/storage"
	"inventory-backend/pkg/cache"

	authorHandler "inventory-backend/internal/domains/author/handler"
	authorRepo "inventory-backend/internal/domains/author/repository"
	authorService "inventory-backend/internal/domains/author/service"
	bookHandler "inventory-backend/internal/domains/book/handler"
	bookRepo "inventory-backend/internal/domains/book/repository"
	bookService "inventory-backend/internal/domains/book/service"
	ledgerHandler "inventory-backend/internal/domains/ledger/handler"
	ledgerRepo "inventory-backend/internal/domains/ledger/repository"
	ledgerService "inventory-backend/internal/domains/ledger/service"
)

type Container struct {
	// Infrastructure
	Config  *config.Config
	DB      *database.PostgresDB
	Cache   cache.Cache
	Storage *storage.MinIOStorage

	// Repositories
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface
	LedgerRepo ledgerRepo.RepositoryInterface

	// Services
	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	LedgerService ledgerService.ServiceInterface

	// Handlers
	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler
	StockHandler  *ledgerHandler.StockHandler
}

// NewContainer builds the full dependency graph. Any failure aborts
// startup.
func NewContainer() (*Container, error) {
	c := &Container{}

	if err := c.initConfig(); err != nil {
		return nil, fmt.Errorf("failed to init config: %w", err)
	}
	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("Container initialized")
	return c, nil
}

func (c *Container) initConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func (c *Container) initInfrastructure() error {
	ctx := context.Background()

	db := database.NewPostgresDB(c.Config.Database)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(c.Config.Redis)
	if err := redisCache.Connect(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	c.Cache = redisCache

	// Object storage is optional: imports still work without the
	// audit archive.
	minioStorage, err := storage.NewMinIOStorage(c.Config.MinIO)
	if err != nil {
		log.Warn().Err(err).Msg("MinIO unavailable, import archiving disabled")
	} else {
		c.Storage = minioStorage
	}

	return nil
}

func (c *Container) initRepositories() {
	c.AuthorRepo = authorRepo.NewPostgresRepository(c.DB.Pool, c.Cache)
	c.BookRepo = bookRepo.NewPostgresRepository(c.DB.Pool, c.Cache)
	c.LedgerRepo = ledgerRepo.NewPostgresRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	var archiver ledgerService.Archiver
	if c.Storage != nil {
		archiver = c.Storage
	}

	c.LedgerService = ledgerService.NewLedgerService(
		c.LedgerRepo,
		c.BookRepo,
		c.Cache,
		archiver,
		c.Config.Import,
	)
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.Config.Catalog)
	c.BookService = bookService.NewBookService(
		c.BookRepo,
		c.AuthorRepo,
		c.LedgerService,
		c.Config.Catalog,
	)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.StockHandler = ledgerHandler.NewStockHandler(c.LedgerService)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if redisCache, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := redisCache.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Redis connection")
			}
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleaned up")
}
