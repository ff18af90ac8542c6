package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/payments"
	"github.com/go-chi/chi/v5"
)

type PaymentsHandler struct {
	Settlement *payments.Settlement
	Store      payments.Store
}

type chargeReq struct {
	OrderID string            `json:"order_id"`
	Method  string            `json:"method"`
	Details map[string]string `json:"details"`
}

type refundReq struct {
	AmountCents int    `json:"amount_cents"` // 0 = full refund
	Reason      string `json:"reason"`
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/payments/charge", h.charge)
	r.Post("/payments/{id}/refund", h.refund)
	r.Get("/orders/{id}/payments", h.byOrder)
}

func (h *PaymentsHandler) charge(w http.ResponseWriter, r *http.Request) {
	var req chargeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.Method == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Settlement.Charge(ctx, req.OrderID, req.Method, req.Details)
	if err != nil {
		writeErr(w, err)
		return
	}
	// a decline is 200 with status=failed; checkout branches on it routinely
	writeJSON(w, http.StatusOK, res)
}

func (h *PaymentsHandler) refund(w http.ResponseWriter, r *http.Request) {
	var req refundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Settlement.Refund(ctx, chi.URLParam(r, "id"), req.AmountCents, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PaymentsHandler) byOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ByOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
