package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/availability"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type InventoryHandler struct {
	Ledger  *ledger.Service
	Store   ledger.Store
	Checker *availability.Checker
	Catalog catalog.Catalog
	Redis   *redis.Client
}

type stockReq struct {
	Qty int `json:"qty"`
}

type adjustReq struct {
	Change int `json:"change"`
}

type createRecordReq struct {
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level"`
}

type batchCheckReq struct {
	Items []availability.ItemRequest `json:"items"`
}

func (h *InventoryHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/inventory", h.createRecord)
	r.Get("/inventory/{productID}", h.getRecord)
	r.Post("/inventory/{productID}/restock", h.restock)
	r.Post("/inventory/{productID}/adjust", h.adjust)
	r.Get("/availability/{productID}", h.check)
	r.Post("/availability/batch", h.checkBatch)
}

func (h *InventoryHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *InventoryHandler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" || req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid record"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// product must exist in the catalog before it can be stocked
	if _, err := h.Catalog.Product(ctx, req.ProductID); err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Store.Create(ctx, ledger.Record{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	}); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *InventoryHandler) getRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Store.Get(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id":    rec.ProductID,
		"quantity":      rec.Quantity,
		"reserved":      rec.Reserved,
		"available":     rec.Available(),
		"reorder_level": rec.ReorderLevel,
		"updated_at":    rec.UpdatedAt,
	})
}

func (h *InventoryHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid json"})
		return
	}
	h.doAdjust(w, r, req.Qty, ledger.OpRestock)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid json"})
		return
	}
	h.doAdjust(w, r, req.Change, ledger.OpAdjust)
}

func (h *InventoryHandler) doAdjust(w http.ResponseWriter, r *http.Request, change int, kind ledger.OpKind) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	adj, err := h.Ledger.Adjust(ctx, chi.URLParam(r, "productID"), change, kind)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

func (h *InventoryHandler) check(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil {
		qty = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// short-lived cache; the answer is advisory anyway
	key := fmt.Sprintf(redisx.KeyAvailability, productID, qty)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	res, err := h.Checker.Check(ctx, productID, qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	if b, err := json.Marshal(res); err == nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLAvailability).Err()
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *InventoryHandler) checkBatch(w http.ResponseWriter, r *http.Request) {
	var req batchCheckReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: "invalid items"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Checker.CheckBatch(ctx, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
