// Package handler exposes the checkout core over HTTP. It is a thin
// transport layer: request decoding, domain-error mapping, and response
// encoding only. No business rules live here.
package handler

import (
	"net/http"

	"github.com/milsabores/checkout/internal/domain/audit"
	"github.com/milsabores/checkout/internal/domain/checkout"
	"github.com/milsabores/checkout/internal/domain/inventory"
	"github.com/milsabores/checkout/internal/domain/order"
	"github.com/milsabores/checkout/internal/domain/product"
)

// Handler wires the domain services to HTTP routes.
type Handler struct {
	products product.Repository
	orders   *order.Service
	checkout *checkout.Coordinator
	audit    audit.Log
	ledger   inventory.Ledger
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	orders *order.Service,
	checkout *checkout.Coordinator,
	auditLog audit.Log,
	ledger inventory.Ledger,
) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		checkout: checkout,
		audit:    auditLog,
		ledger:   ledger,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/customers/{id}/orders", h.ListCustomerOrders)

	mux.HandleFunc("GET /api/customers/{id}/discounts", h.GetCustomerDiscounts)
	mux.HandleFunc("GET /api/customers/{id}/discounts/history", h.ListCustomerDiscountHistory)
	mux.HandleFunc("POST /api/checkout/discount", h.ApplyCheckoutDiscount)
	mux.HandleFunc("GET /api/admin/reports/discounts", h.DiscountReport)

	mux.HandleFunc("POST /api/admin/products/{id}/restock", h.RestockProduct)
}
