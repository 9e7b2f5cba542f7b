// Command seed loads the bundled catalog into PostgreSQL so the storefront
// can run with CATALOG_SOURCE=postgres. Re-running it is safe: products are
// upserted by id.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/litreads/internal/catalog"
	pgrepo "github.com/utafrali/litreads/internal/repository/postgres"
	pkgconfig "github.com/utafrali/litreads/pkg/config"
	"github.com/utafrali/litreads/pkg/database"
	"github.com/utafrali/litreads/pkg/logger"
)

type seedConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("litreads-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig, log *slog.Logger) error {
	cat, err := catalog.Load(ctx, catalog.EmbeddedSource{})
	if err != nil {
		return err
	}

	pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.DatabaseURL), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := pgrepo.NewCatalogRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := repo.UpsertProducts(ctx, cat.All())
	if err != nil {
		return err
	}
	log.Info("catalog seeded", slog.Int("products", n))
	return nil
}
