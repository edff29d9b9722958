// Package handler exposes the storefront JSON API: catalog browsing backed
// by the remote catalog client, and per-session cart operations.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenking/shopfront/internal/domain/cart"
	"github.com/xenking/shopfront/internal/domain/catalog"
)

// DefaultCookieName identifies the session cookie when none is configured.
const DefaultCookieName = "shopfront_session"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// CookieName is the session cookie name. Empty means DefaultCookieName.
	CookieName string
	// SecureCookies marks session cookies as Secure (HTTPS-only deployments).
	SecureCookies bool
}

// Handler serves the storefront API. It owns no state itself: catalog data
// comes from the catalog client, cart state lives in the session manager.
type Handler struct {
	catalog catalog.Client
	carts   *cart.Manager

	cookieName    string
	secureCookies bool
}

// New constructs a Handler with the required dependencies.
func New(cfg Config, cat catalog.Client, carts *cart.Manager) *Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Handler{
		catalog:       cat,
		carts:         carts,
		cookieName:    name,
		secureCookies: cfg.SecureCookies,
	}
}

// Routes returns the API router. All routes live under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addItem)
			r.Put("/items/{id}", h.updateItem)
			r.Delete("/items/{id}", h.removeItem)
		})

		r.Post("/checkout", h.checkout)
	})
	return r
}

// session resolves the request's cart, minting a session cookie when the
// request does not carry a valid one.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *cart.Store {
	if c, err := r.Cookie(h.cookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return h.carts.Get(c.Value)
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return h.carts.Get(id)
}
