package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/discount"
)

// GetCustomerDiscounts lists every discount rule the customer currently
// qualifies for, without applying any of them.
func (h *Handler) GetCustomerDiscounts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	eligible, err := h.checkout.EligibleDiscounts(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("customer_id")
		e.Int64(id)
		e.FieldStart("discounts")
		e.ArrStart()
		for _, el := range eligible {
			e.ObjStart()
			e.FieldStart("kind")
			e.Str(string(el.Kind))
			e.FieldStart("percent")
			e.Float64(el.Percent.InexactFloat64())
			e.FieldStart("reason")
			e.Str(el.Reason)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// ListCustomerDiscountHistory returns the customer's recorded discount
// decisions from the audit log, most recent first.
func (h *Handler) ListCustomerDiscountHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	decisions, err := h.audit.ListByCustomer(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("customer_id")
		e.Int64(id)
		e.FieldStart("count")
		e.Int(len(decisions))
		e.FieldStart("decisions")
		e.ArrStart()
		for i := range decisions {
			encodeDecision(e, &decisions[i])
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

type checkoutDiscountRequest struct {
	OrderID        int64           `json:"order_id"`
	CustomerID     int64           `json:"customer_id"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	PromoCode      string          `json:"promo_code,omitempty"`
	ApplyDiscount  *bool           `json:"apply_discount,omitempty"`
}

// ApplyCheckoutDiscount resolves and records a single discount decision for
// an already-placed order's amount.
func (h *Handler) ApplyCheckoutDiscount(w http.ResponseWriter, r *http.Request) {
	var req checkoutDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID <= 0 || req.CustomerID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id and customer_id are required")
		return
	}

	apply := true
	if req.ApplyDiscount != nil {
		apply = *req.ApplyDiscount
	}

	d, err := h.checkout.ApplyAtCheckout(r.Context(), req.OrderID, req.CustomerID, req.PromoCode, req.OriginalAmount, apply)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeDecision(e, d)
	})
}

// DiscountReport returns the full audit trail plus per-customer aggregates.
func (h *Handler) DiscountReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.audit.Report(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("decisions")
		e.ArrStart()
		for i := range report.Decisions {
			encodeDecision(e, &report.Decisions[i])
		}
		e.ArrEnd()
		e.FieldStart("summaries")
		e.ArrStart()
		for _, s := range report.Summaries {
			e.ObjStart()
			e.FieldStart("customer_id")
			e.Int64(s.CustomerID)
			e.FieldStart("decisions")
			e.Int64(s.Decisions)
			e.FieldStart("total_discount")
			e.Float64(s.TotalDiscount.InexactFloat64())
			e.FieldStart("total_original")
			e.Float64(s.TotalOriginal.InexactFloat64())
			e.FieldStart("average_percent")
			e.Float64(s.AveragePercent.InexactFloat64())
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func encodeDecision(e *jx.Encoder, d *discount.Decision) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(d.ID)
	e.FieldStart("customer_id")
	e.Int64(d.CustomerID)
	if d.OrderID != 0 {
		e.FieldStart("order_id")
		e.Int64(d.OrderID)
	}
	e.FieldStart("kind")
	e.Str(string(d.Kind))
	e.FieldStart("percent")
	e.Float64(d.Percent.InexactFloat64())
	e.FieldStart("original")
	e.Float64(d.Original.InexactFloat64())
	e.FieldStart("discount")
	e.Float64(d.Discount.InexactFloat64())
	e.FieldStart("final")
	e.Float64(d.Final.InexactFloat64())
	e.FieldStart("reason")
	e.Str(d.Reason)
	encodeTime(e, "applied_at", d.AppliedAt)
	e.ObjEnd()
}
