// Command catalog-dump fetches the full remote catalog and writes it to a
// gzip-compressed JSON snapshot. Snapshots are useful for offline development
// and for seeding test fixtures without hammering the upstream service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shopfront/internal/domain/catalog"
	"github.com/xenking/shopfront/internal/remote"
)

func main() {
	var (
		catalogURL string
		outPath    string
		timeout    time.Duration
	)

	flag.StringVar(&catalogURL, "catalog-url", "https://fakestoreapi.com", "remote catalog base URL")
	flag.StringVar(&outPath, "out", "catalog.json.gz", "output snapshot path")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "total fetch timeout")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, catalogURL, outPath, timeout); err != nil {
		slog.Error("catalog dump failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog dump completed successfully", slog.String("out", outPath))
}

func run(ctx context.Context, catalogURL, outPath string, timeout time.Duration) error {
	client, err := remote.NewClient(remote.Config{BaseURL: catalogURL})
	if err != nil {
		return errors.Wrap(err, "create catalog client")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Info("fetching catalog", slog.String("url", catalogURL))

	var (
		products   []catalog.Product
		categories []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = client.Products(gctx); err != nil {
			return errors.Wrap(err, "fetch products")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = client.Categories(gctx); err != nil {
			return errors.Wrap(err, "fetch categories")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("catalog fetched",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
	)

	return writeSnapshot(outPath, products, categories)
}

// writeSnapshot encodes the catalog as a single JSON object and writes it
// through a gzip compressor.
func writeSnapshot(path string, products []catalog.Product, categories []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("fetched_at", func(e *jx.Encoder) {
			e.Str(time.Now().UTC().Format(time.RFC3339))
		})
		e.Field("categories", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range categories {
					e.Str(c)
				}
			})
		})
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range products {
					encodeProduct(e, &products[i])
				}
			})
		})
	})

	if _, err := gz.Write(e.Bytes()); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}

func encodeProduct(e *jx.Encoder, p *catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(p.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("rating", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("rate", func(e *jx.Encoder) { e.Float64(p.Rating.Rate) })
				e.Field("count", func(e *jx.Encoder) { e.Int(p.Rating.Count) })
			})
		})
	})
}
