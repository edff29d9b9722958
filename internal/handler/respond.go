package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shopfront/internal/domain/cart"
	"github.com/xenking/shopfront/internal/domain/catalog"
)

// writeJSON encodes a response built by fn and writes it with the status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the uniform {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeCatalogError maps catalog client failures onto the API surface:
// not-found stays a 404 with its own message, everything else is a 502
// the caller may retry. The original failure is logged, never swallowed.
func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	zctx.From(r.Context()).Error("Catalog request failed", zap.Error(err))

	msg := "catalog unavailable, please retry"
	var cerr *catalog.Error
	if errors.As(err, &cerr) && cerr.Kind == catalog.KindParse {
		msg = "catalog returned an unexpected response"
	}
	writeError(w, http.StatusBadGateway, msg)
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(p.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.StringFixed(2))) })
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

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(l.ID) })
		e.Field("title", func(e *jx.Encoder) { e.Str(l.Title) })
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(l.Price.StringFixed(2))) })
		e.Field("image", func(e *jx.Encoder) { e.Str(l.Image) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Num(jx.Num(l.Subtotal().StringFixed(2))) })
	})
}

// encodeCartView renders the lines with both aggregates. Totals are read
// fresh from the store; the store itself never caches them.
func encodeCartView(e *jx.Encoder, s *cart.Store) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range s.Items() {
					encodeLine(e, l)
				}
			})
		})
		e.Field("total_price", func(e *jx.Encoder) { e.Num(jx.Num(s.TotalPrice().StringFixed(2))) })
		e.Field("total_items", func(e *jx.Encoder) { e.Int(s.TotalItems()) })
	})
}
