//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// Seeded customers: Maria (1) is over 50, Pedro (2) is a student, Ana (3)
// registered the FELICES50 code, Jorge (4) has a 20% permanent discount.
const (
	customerMaria = 1
	customerAna   = 3

	productPieLimon = 3 // stock 15, reserved for discount-flow orders
)

func placeOrderFor(t *testing.T, customerID int64) placedOrderResponse {
	t.Helper()

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID: customerID,
		Lines:      []orderLineRequest{{ProductID: productPieLimon, Quantity: 1, UnitPrice: 9990}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[placedOrderResponse](t, resp)
}

func TestCheckoutDiscount_Senior(t *testing.T) {
	placed := placeOrderFor(t, customerMaria)

	resp := doPost(t, "/api/checkout/discount", checkoutDiscountRequest{
		OrderID:        placed.ID,
		CustomerID:     customerMaria,
		OriginalAmount: placed.Total,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	d := decodeJSON[decisionResponse](t, resp)
	if d.Kind != "senior50" {
		t.Errorf("kind: got %q, want senior50", d.Kind)
	}
	if d.Percent != 50 {
		t.Errorf("percent: got %v, want 50", d.Percent)
	}
	if d.Discount != 4995 || d.Final != 4995 {
		t.Errorf("amounts: got discount %v final %v, want 4995 / 4995", d.Discount, d.Final)
	}
	if d.OrderID != placed.ID {
		t.Errorf("order_id: got %d, want %d", d.OrderID, placed.ID)
	}
	if d.ID == 0 {
		t.Error("decision was not recorded in the audit log")
	}
}

func TestCheckoutDiscount_RegisteredPromoCode(t *testing.T) {
	placed := placeOrderFor(t, customerAna)

	resp := doPost(t, "/api/checkout/discount", checkoutDiscountRequest{
		OrderID:        placed.ID,
		CustomerID:     customerAna,
		OriginalAmount: 1000,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	d := decodeJSON[decisionResponse](t, resp)
	if d.Kind != "promo_code" {
		t.Errorf("kind: got %q, want promo_code", d.Kind)
	}
	if d.Final != 900 {
		t.Errorf("final: got %v, want 900", d.Final)
	}
}

func TestCheckoutDiscount_CandidateCodeBeatsPermanent(t *testing.T) {
	placed := placeOrderFor(t, customerJorge)

	// Jorge holds a 20% permanent discount, but the promo-code rule has
	// higher priority when a valid code is presented.
	resp := doPost(t, "/api/checkout/discount", checkoutDiscountRequest{
		OrderID:        placed.ID,
		CustomerID:     customerJorge,
		OriginalAmount: 1000,
		PromoCode:      "FELICES50",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	d := decodeJSON[decisionResponse](t, resp)
	if d.Kind != "promo_code" {
		t.Errorf("kind: got %q, want promo_code", d.Kind)
	}
	if d.Final != 900 {
		t.Errorf("final: got %v, want 900", d.Final)
	}
}

func TestCheckoutDiscount_Declined(t *testing.T) {
	placed := placeOrderFor(t, customerMaria)

	declined := false
	resp := doPost(t, "/api/checkout/discount", checkoutDiscountRequest{
		OrderID:        placed.ID,
		CustomerID:     customerMaria,
		OriginalAmount: placed.Total,
		ApplyDiscount:  &declined,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	d := decodeJSON[decisionResponse](t, resp)
	if d.Kind != "none" {
		t.Errorf("kind: got %q, want none", d.Kind)
	}
	if d.Final != placed.Total {
		t.Errorf("final: got %v, want %v", d.Final, placed.Total)
	}
}

func TestCheckoutDiscount_NegativeAmount(t *testing.T) {
	resp := doPost(t, "/api/checkout/discount", checkoutDiscountRequest{
		OrderID:        1,
		CustomerID:     customerMaria,
		OriginalAmount: -100,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCustomerDiscounts_SeniorListing(t *testing.T) {
	resp := doGet(t, fmt.Sprintf("/api/customers/%d/discounts", customerMaria))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[customerDiscountsResponse](t, resp)
	if list.CustomerID != customerMaria {
		t.Errorf("customer_id: got %d, want %d", list.CustomerID, customerMaria)
	}
	if len(list.Discounts) != 1 || list.Discounts[0].Kind != "senior50" {
		t.Errorf("discounts: got %+v, want exactly senior50", list.Discounts)
	}
}

func TestCustomerDiscounts_PermanentListing(t *testing.T) {
	resp := doGet(t, fmt.Sprintf("/api/customers/%d/discounts", customerJorge))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[customerDiscountsResponse](t, resp)
	found := false
	for _, d := range list.Discounts {
		if d.Kind == "permanent" && d.Percent == 20 {
			found = true
		}
	}
	if !found {
		t.Errorf("discounts: got %+v, want a 20%% permanent entry", list.Discounts)
	}
}

func TestCustomerDiscountHistory(t *testing.T) {
	// Earlier tests in this file recorded an applied senior decision and a
	// declined one for Maria.
	resp := doGet(t, fmt.Sprintf("/api/customers/%d/discounts/history", customerMaria))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	history := decodeJSON[discountHistoryResponse](t, resp)
	if history.CustomerID != customerMaria {
		t.Errorf("customer_id: got %d, want %d", history.CustomerID, customerMaria)
	}
	if history.Count < 2 || history.Count != len(history.Decisions) {
		t.Fatalf("count: got %d with %d decisions, want at least 2 and matching", history.Count, len(history.Decisions))
	}

	kinds := make(map[string]bool)
	for i, d := range history.Decisions {
		if d.CustomerID != customerMaria {
			t.Errorf("decision %d belongs to customer %d", d.ID, d.CustomerID)
		}
		kinds[d.Kind] = true
		// Most recent first; IDs grow with time within this run.
		if i > 0 && d.ID > history.Decisions[i-1].ID {
			t.Errorf("decisions out of order: id %d after id %d", d.ID, history.Decisions[i-1].ID)
		}
	}
	if !kinds["senior50"] || !kinds["none"] {
		t.Errorf("kinds: got %v, want both senior50 and none", kinds)
	}
}

func TestDiscountReport(t *testing.T) {
	// Earlier tests in this file have recorded decisions for Maria.
	resp := doGet(t, "/api/admin/reports/discounts")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	report := decodeJSON[reportResponse](t, resp)
	if len(report.Decisions) == 0 {
		t.Fatal("expected recorded decisions in the report")
	}

	var maria *summaryResponse
	for i := range report.Summaries {
		if report.Summaries[i].CustomerID == customerMaria {
			maria = &report.Summaries[i]
		}
	}
	if maria == nil {
		t.Fatal("expected a summary row for customer 1")
	}
	if maria.Decisions < 2 {
		t.Errorf("decisions: got %d, want at least 2", maria.Decisions)
	}
	if maria.TotalDiscount <= 0 {
		t.Errorf("total_discount: got %v, want > 0", maria.TotalDiscount)
	}
	if maria.TotalOriginal < maria.TotalDiscount {
		t.Errorf("total_original %v smaller than total_discount %v", maria.TotalOriginal, maria.TotalDiscount)
	}
}
