// Command catalog-seed fetches the remote shoe catalog once and writes it to
// the local SQLite store, so a device image can ship with a warm cache and
// the app works offline on first run.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/storage/sqlite"
)

func main() {
	var (
		catalogURL string
		dbPath     string
	)
	flag.StringVar(&catalogURL, "catalog-url", "", "remote shoe catalog endpoint (or CATALOG_URL env)")
	flag.StringVar(&dbPath, "db-path", "storefront.db", "SQLite file to seed")
	flag.Parse()

	lg := zap.Must(zap.NewProduction())
	defer func() { _ = lg.Sync() }()

	if catalogURL == "" {
		catalogURL = os.Getenv("CATALOG_URL")
	}
	if catalogURL == "" {
		lg.Fatal("Catalog URL is required: set --catalog-url or CATALOG_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	gw, err := sqlite.Open(dbPath)
	if err != nil {
		lg.Fatal("Failed to open local store", zap.Error(err))
	}
	defer gw.Close()

	loader := catalog.NewLoader(catalog.NewHTTPSource(nil, catalogURL), gw, lg)
	snap, err := loader.Refresh(ctx)
	if err != nil {
		lg.Fatal("Failed to fetch catalog", zap.Error(err))
	}
	if snap.FromCache {
		lg.Fatal("Remote fetch failed, nothing new to seed")
	}

	lg.Info("Catalog cache seeded",
		zap.String("db_path", dbPath),
		zap.Int("products", len(snap.Products)),
		zap.Strings("categories", snap.Categories),
		zap.Int("dropped", snap.Dropped),
	)
}
