package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/milsabores/checkout/internal/domain/product"
)

// ListProducts returns every active catalog product.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("count")
		e.Int(len(products))
		e.FieldStart("products")
		e.ArrStart()
		for i := range products {
			encodeProduct(e, &products[i])
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// GetProduct returns a single active product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("image_url")
	e.Str(p.ImageURL)
	e.ObjEnd()
}
