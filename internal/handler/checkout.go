package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
)

// checkout handles POST /api/checkout.
//
// Nothing is fulfilled or charged: the handler echoes the cart with its
// totals under a generated confirmation id and clears the cart. An empty
// cart cannot be checked out.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	// Snapshot and clear in one step so a concurrent add is never dropped
	// between reading the totals and emptying the cart.
	items, total, count := s.Take()
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	confirmation := uuid.New().String()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("confirmation_id", func(e *jx.Encoder) { e.Str(confirmation) })
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, l := range items {
						encodeLine(e, l)
					}
				})
			})
			e.Field("total_price", func(e *jx.Encoder) { e.Num(jx.Num(total.StringFixed(2))) })
			e.Field("total_items", func(e *jx.Encoder) { e.Int(count) })
		})
	})
}
