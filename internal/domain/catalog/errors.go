package catalog

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by ProductByID when the remote catalog has no
// product with the requested identifier. Callers show a different message
// for this case, so it must stay distinguishable from transport failures.
var ErrNotFound = errors.New("product not found")

// Error kinds, in the order they are checked at the client boundary.
const (
	KindTransport = "transport" // network failure or non-success status
	KindParse     = "parse"     // response body does not match expected shape
)

// Error is the normalized failure the catalog client surfaces. It preserves
// the original cause so callers can log it, while Op/Kind/Status give enough
// context to render a human-readable message and offer a retry.
type Error struct {
	Op     string // failed operation, e.g. "products", "product/3"
	Kind   string // KindTransport or KindParse
	Status int    // HTTP status, 0 when the request never completed
	Err    error  // underlying cause, never nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
