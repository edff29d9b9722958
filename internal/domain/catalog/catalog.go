package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product represents a single item in the remote catalog. Products are
// read-only: they are fetched, displayed, and snapshotted into carts, but
// never written back.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Rating      Rating
}

// Rating holds the aggregate review score for a product.
// Rate is in [0, 5]; Count is the number of reviews.
type Rating struct {
	Rate  float64
	Count int
}

// Client defines the read operations the remote catalog exposes. All calls
// are side-effect-free; none retries internally. Callers are expected to
// re-invoke a failed call if they want a retry.
type Client interface {
	Products(ctx context.Context) ([]Product, error)
	ProductByID(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
}
