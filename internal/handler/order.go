package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/milsabores/checkout/internal/domain/order"
)

type placeOrderRequest struct {
	CustomerID      int64              `json:"customer_id"`
	Lines           []placeOrderLine   `json:"lines"`
	DeliveryAddress string             `json:"delivery_address"`
	DeliveryDate    string             `json:"delivery_date,omitempty"`
}

type placeOrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PlaceOrder creates an order from the request body. Header, lines, and
// stock decrements commit atomically; any failure leaves stock untouched.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID <= 0 {
		writeError(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		d, err := time.Parse(time.DateOnly, req.DeliveryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "delivery_date must be YYYY-MM-DD")
			return
		}
		deliveryDate = &d
	}

	lines := make([]order.LineRequest, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = order.LineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	o, err := h.orders.Place(r.Context(), order.PlaceOrderRequest{
		CustomerID:      req.CustomerID,
		Lines:           lines,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryDate:    deliveryDate,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(o.ID)
		e.FieldStart("total")
		e.Float64(o.Total.InexactFloat64())
		e.FieldStart("status")
		e.Str(string(o.Status))
		encodeTime(e, "created_at", o.CreatedAt)
		e.ObjEnd()
	})
}

// GetOrder returns a single order with its lines.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, o)
	})
}

// ListCustomerOrders returns a customer's orders, most recent first.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("count")
		e.Int(len(orders))
		e.FieldStart("orders")
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("customer_id")
	e.Int64(o.CustomerID)
	encodeTime(e, "created_at", o.CreatedAt)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.FieldStart("delivery_address")
	e.Str(o.DeliveryAddress)
	if o.DeliveryDate != nil {
		e.FieldStart("delivery_date")
		e.Str(o.DeliveryDate.Format(time.DateOnly))
	}
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range o.Lines {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(l.ID)
		e.FieldStart("product_id")
		e.Int64(l.ProductID)
		e.FieldStart("product_name")
		e.Str(l.ProductName)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("unit_price")
		e.Float64(l.UnitPrice.InexactFloat64())
		e.FieldStart("subtotal")
		e.Float64(l.Subtotal.InexactFloat64())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
