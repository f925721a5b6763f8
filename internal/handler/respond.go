package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/milsabores/checkout/internal/domain/checkout"
	"github.com/milsabores/checkout/internal/domain/customer"
	"github.com/milsabores/checkout/internal/domain/inventory"
	"github.com/milsabores/checkout/internal/domain/order"
	"github.com/milsabores/checkout/internal/domain/product"
)

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the standard error body {"code": ..., "message": ...}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// respondDomainError maps a domain error to an HTTP status and body.
// Validation and stock failures carry the offending product so the caller can
// present an actionable message; anything unexpected is surfaced generically.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr    *inventory.InsufficientStockError
		qtyErr      *order.InvalidQuantityError
		priceErr    *order.InvalidUnitPriceError
		notFoundErr *order.ProductNotFoundError
		inactiveErr *order.InactiveProductError
	)
	switch {
	case errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, checkout.ErrNegativeAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &qtyErr),
		errors.As(err, &priceErr),
		errors.As(err, &notFoundErr),
		errors.As(err, &inactiveErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses the {id} path segment as an int64.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// encodeTime writes a timestamp field in RFC 3339.
func encodeTime(e *jx.Encoder, field string, t time.Time) {
	e.FieldStart(field)
	e.Str(t.Format(time.RFC3339))
}
