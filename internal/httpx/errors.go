package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/payments"
)

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Core failures map to a stable code plus a human message; internals never
// leak past this point.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, payments.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, ledger.ErrInsufficientAvailable):
		writeJSON(w, http.StatusConflict, errBody{Code: "INSUFFICIENT_AVAILABLE", Message: err.Error()})
	case errors.Is(err, ledger.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, errBody{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, ledger.ErrNegativeResult):
		writeJSON(w, http.StatusConflict, errBody{Code: "NEGATIVE_RESULT", Message: err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errBody{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, payments.ErrNotChargeable):
		writeJSON(w, http.StatusConflict, errBody{Code: "NOT_CHARGEABLE", Message: err.Error()})
	case errors.Is(err, orders.ErrProductInactive):
		writeJSON(w, http.StatusConflict, errBody{Code: "PRODUCT_INACTIVE", Message: err.Error()})
	case errors.Is(err, orders.ErrValidation),
		errors.Is(err, payments.ErrValidation),
		errors.Is(err, ledger.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, errBody{Code: "VALIDATION_FAILED", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errBody{Code: "INTERNAL", Message: "internal error"})
	}
}
