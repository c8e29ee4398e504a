// Package handler serves the café gateway API consumed by the order,
// kitchen and display clients.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
)

// maxBodyBytes caps order submissions.
const maxBodyBytes = 1 << 20

// Handler delegates to the order service and serves the static menu.
type Handler struct {
	orders  *order.Service
	catalog *menu.Catalog
}

// New constructs a Handler.
func New(orders *order.Service, catalog *menu.Catalog) *Handler {
	return &Handler{orders: orders, catalog: catalog}
}

// RegisterRoutes mounts the API under r. Callers add the /api prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.PlaceOrder)
		r.Get("/{number}", h.GetOrder)
	})
	r.Route("/kitchen/orders", func(r chi.Router) {
		r.Get("/", h.KitchenOrders)
		r.Post("/{number}/{transition:start|ready|serve}", h.Advance)
	})
	r.Get("/display/orders", h.DisplayOrders)
}

func writeJSON(w http.ResponseWriter, code int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// Menu serves the catalog.
func (h *Handler) Menu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Encode)
}
