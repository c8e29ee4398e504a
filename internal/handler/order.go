package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
	"github.com/xenking/cafe-lumiere/pkg/httpmiddleware"
)

func writeList(w http.ResponseWriter, r *http.Request, orders []order.Order, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { order.EncodeList(e, orders) })
}

func writeOrder(w http.ResponseWriter, r *http.Request, code int, o *order.Order, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, o.Encode)
}

// ListOrders serves every order.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	writeList(w, r, orders, err)
}

// KitchenOrders serves orders that are ordered, preparing or ready.
func (h *Handler) KitchenOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Kitchen(r.Context())
	writeList(w, r, orders, err)
}

// DisplayOrders serves orders that are preparing or ready.
func (h *Handler) DisplayOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Display(r.Context())
	writeList(w, r, orders, err)
}

// GetOrder serves a single order by number.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "number"))
	writeOrder(w, r, http.StatusOK, o, err)
}

// PlaceOrder validates and forwards a submission, answering 201 with the
// created order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpmiddleware.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	var req order.NewOrder
	if err := req.Decode(jx.DecodeBytes(body)); err != nil {
		zctx.From(r.Context()).Debug("Rejected order body", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusBadRequest, "invalid order body")
		return
	}
	o, err := h.orders.Place(r.Context(), req)
	writeOrder(w, r, http.StatusCreated, o, err)
}

// Advance applies a start, ready or serve command.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	t, err := order.ParseTransition(chi.URLParam(r, "transition"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	number := chi.URLParam(r, "number")
	o, err := h.orders.Advance(r.Context(), number, t)
	if err == nil {
		zctx.From(r.Context()).Info("Order advanced",
			zap.String("order_number", number),
			zap.Stringer("status", o.Status),
		)
	}
	writeOrder(w, r, http.StatusOK, o, err)
}

// writeError maps domain and upstream errors onto the {"error": ...}
// envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	lg := zctx.From(r.Context())
	switch {
	case code >= http.StatusInternalServerError:
		lg.Error("Request failed", zap.Int("status", code), zap.Error(err))
	default:
		lg.Debug("Request rejected", zap.Int("status", code), zap.Error(err))
	}
	httpmiddleware.WriteError(w, code, msg)
}

func statusFor(err error) (int, string) {
	var (
		qtyErr        *order.InvalidQuantityError
		transitionErr *order.TransitionError
		statusErr     *orderapi.StatusError
		transportErr  *orderapi.TransportError
		payloadErr    *orderapi.PayloadError
	)
	switch {
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, order.ErrInvalidOrder):
		return http.StatusBadRequest, "Customer name and items are required"
	case errors.As(err, &qtyErr):
		return http.StatusBadRequest, qtyErr.Error()
	case errors.Is(err, order.ErrUnknownTransition):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &transitionErr):
		return http.StatusConflict, transitionErr.Error()
	case errors.As(err, &statusErr):
		msg := statusErr.Message
		if msg == "" {
			msg = statusErr.Text
		}
		return statusErr.Code, msg
	case errors.As(err, &transportErr):
		if transportErr.Timeout() {
			return http.StatusGatewayTimeout, "Request timeout"
		}
		return http.StatusServiceUnavailable, "Cannot connect to order service"
	case errors.As(err, &payloadErr):
		return http.StatusBadGateway, "Malformed response from order service"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
