package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// RestockProduct adds stock back to a product through the inventory ledger.
func (h *Handler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	if err := h.ledger.Restock(r.Context(), id, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(id)
		e.FieldStart("added")
		e.Int(req.Quantity)
		e.ObjEnd()
	})
}
