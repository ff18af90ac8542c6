package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type OrdersHandler struct {
	Builder   *orders.Builder
	Lifecycle *orders.Lifecycle
	Store     orders.Store
	Redis     *redis.Client
}

type createOrderReq struct {
	UserID          string             `json:"user_id"`
	Items           []orders.ItemInput `json:"items"`
	ShippingAddress orders.Address     `json:"shipping_address"`
	BillingAddress  orders.Address     `json:"billing_address"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes"`
}

type createOrderResp struct {
	orders.CreateResult
	Idempotent bool `json:"idempotent"`
}

type transitionReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/orders/{id}/status", h.setStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// fast-path idempotency via Redis; DB stays the source of truth
	idemKey := ""
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderCreate, k)
		if orderID, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && orderID != "" {
			o, err := h.Store.Get(ctx, orderID)
			if err == nil {
				writeJSON(w, http.StatusOK, createOrderResp{
					CreateResult: orders.CreateResult{OrderID: o.ID, Number: o.Number, TotalCents: o.TotalCents},
					Idempotent:   true,
				})
				return
			}
		}
	}

	res, err := h.Builder.Create(ctx, orders.CreateRequest{
		UserID:          req.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	if idemKey != "" {
		_ = h.Redis.Set(ctx, idemKey, res.OrderID, redisx.TTLIdempotency).Err()
	}
	h.cacheStatus(ctx, res.OrderID, orders.StatusPending, orders.PaymentPending)

	writeJSON(w, http.StatusCreated, createOrderResp{CreateResult: res})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// status cache first, DB fallback
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Store.Get(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, orderID, o.Status, o.PaymentStatus)
	writeJSON(w, http.StatusOK, statusBody(o.Status, o.PaymentStatus))
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, orders.StatusCancelled)
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid json"})
		return
	}
	h.transition(w, r, orders.Status(req.Status))
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request, to orders.Status) {
	orderID := chi.URLParam(r, "id")
	actor := r.Header.Get("X-Actor-Id")
	if actor == "" {
		actor = "customer"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Transition(ctx, orderID, to, actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(ctx, orderID, o.Status, o.PaymentStatus)
	writeJSON(w, http.StatusOK, statusBody(o.Status, o.PaymentStatus))
}

func statusBody(st orders.Status, ps orders.PaymentStatus) map[string]any {
	return map[string]any{"status": st, "payment_status": ps}
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, st orders.Status, ps orders.PaymentStatus) {
	b, _ := json.Marshal(statusBody(st, ps))
	_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID), b, redisx.TTLStatusCache).Err()
}
