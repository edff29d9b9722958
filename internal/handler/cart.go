package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
)

// request body limit; cart payloads are tiny
const maxRequestBody = 1 << 16

// getCart handles GET /api/cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, s)
	})
}

// addItem handles POST /api/cart/items.
//
// Body: {"id": <product id>, "quantity": <optional, default 1>}. The product
// is fetched from the catalog and its id/title/price/image snapshotted into
// the session cart; a quantity of n behaves as n repeated adds.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var (
		id    int64
		qty   = 1
		hasID bool
	)
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			id, err = d.Int64()
			hasID = true
		case "quantity":
			qty, err = d.Int()
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !hasID {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if qty < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	p, err := h.catalog.ProductByID(r.Context(), id)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}

	s := h.session(w, r)
	for range qty {
		s.AddItem(*p)
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, s)
	})
}

// updateItem handles PUT /api/cart/items/{id}.
//
// Body: {"quantity": n}. The quantity is an absolute set; n <= 0 removes the
// line, the same rule the cart store applies. Unknown ids are a no-op.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	var (
		qty    int
		hasQty bool
	)
	if err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		if key == "quantity" {
			qty, err = d.Int()
			hasQty = true
			return err
		}
		return d.Skip()
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !hasQty {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	s := h.session(w, r)
	s.UpdateQuantity(id, qty)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, s)
	})
}

// removeItem handles DELETE /api/cart/items/{id}. Removing an id that is not
// in the cart succeeds and leaves the cart unchanged.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	s := h.session(w, r)
	s.RemoveItem(id)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, s)
	})
}

// clearCart handles DELETE /api/cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Clear()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCartView(e, s)
	})
}

// decodeBody reads the request body and decodes a single JSON object,
// dispatching each key to fn.
func decodeBody(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return jx.DecodeBytes(data).Obj(fn)
}
