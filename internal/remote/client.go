// Package remote implements catalog.Client against a fakestore-style REST
// catalog service.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

// responses larger than this are treated as malformed
const maxBodySize = 8 << 20

// Compile-time check ensuring Client satisfies the domain interface.
var _ catalog.Client = (*Client)(nil)

// Config holds the remote catalog client configuration.
type Config struct {
	// BaseURL is the catalog service root, e.g. "https://fakestoreapi.com".
	BaseURL string

	// HTTPClient is the underlying client. When nil, a client with an
	// otel-instrumented transport and a 10s timeout is used.
	HTTPClient *http.Client

	// Breaker tunes the circuit breaker guarding the remote service.
	// Zero values fall back to the defaults below.
	Breaker BreakerConfig
}

// BreakerConfig controls when the catalog circuit breaker trips.
type BreakerConfig struct {
	// MaxRequests allowed through in the half-open state.
	MaxRequests uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ConsecutiveFailures == 0 {
		c.ConsecutiveFailures = 5
	}
	return c
}

// Client fetches products and categories from the remote catalog. It never
// retries: a failed call surfaces a *catalog.Error (or catalog.ErrNotFound)
// and the caller decides whether to re-invoke.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a catalog client for the given base URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}

	bc := cfg.Breaker.withDefaults()
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: bc.MaxRequests,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
		// A remote 404 is a well-formed answer, not a service failure.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.status == http.StatusNotFound
			}
			return err == nil
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		breaker: breaker,
	}, nil
}

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	const op = "products"

	body, err := c.fetch(ctx, "/products")
	if err != nil {
		return nil, transportError(op, err)
	}

	out, err := decodeProducts(body)
	if err != nil {
		return nil, &catalog.Error{Op: op, Kind: catalog.KindParse, Err: err}
	}
	return out, nil
}

// ProductByID fetches a single product. It returns catalog.ErrNotFound when
// the remote signals an unknown identifier, which callers must be able to
// tell apart from transport failures.
func (c *Client) ProductByID(ctx context.Context, id int64) (*catalog.Product, error) {
	op := fmt.Sprintf("product/%d", id)

	body, err := c.fetch(ctx, fmt.Sprintf("/products/%d", id))
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return nil, errors.Wrapf(catalog.ErrNotFound, "product %d", id)
		}
		return nil, transportError(op, err)
	}

	// Some catalog deployments answer 200 with an empty or null body for
	// unknown identifiers instead of a 404.
	if isEmptyBody(body) {
		return nil, errors.Wrapf(catalog.ErrNotFound, "product %d", id)
	}

	p, err := decodeOneProduct(body)
	if err != nil {
		return nil, &catalog.Error{Op: op, Kind: catalog.KindParse, Err: err}
	}
	return p, nil
}

// Categories fetches the distinct category labels known to the catalog.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	const op = "categories"

	body, err := c.fetch(ctx, "/products/categories")
	if err != nil {
		return nil, transportError(op, err)
	}

	out, err := decodeCategories(body)
	if err != nil {
		return nil, &catalog.Error{Op: op, Kind: catalog.KindParse, Err: err}
	}
	return out, nil
}

// fetch performs a single GET through the circuit breaker and returns the
// raw response body. Errors come back unnormalized: either a *statusError,
// a wrapped transport error, or a breaker-open error.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, path)
	})
}

func (c *Client) roundTrip(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", path)
	}
	return body, nil
}

// statusError carries a non-success HTTP status from the remote catalog.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// transportError normalizes a fetch failure into a *catalog.Error.
func transportError(op string, err error) error {
	status := 0
	var se *statusError
	if errors.As(err, &se) {
		status = se.status
	}
	return &catalog.Error{Op: op, Kind: catalog.KindTransport, Status: status, Err: err}
}

func isEmptyBody(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return s == "" || s == "null"
}
