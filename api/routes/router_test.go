package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nmartins/bazario-backend/api/controllers"
	"github.com/nmartins/bazario-backend/internal/listings"
	"github.com/nmartins/bazario-backend/internal/orders"
	"github.com/nmartins/bazario-backend/internal/pricing"
	"github.com/nmartins/bazario-backend/internal/returns"
	"github.com/nmartins/bazario-backend/pkg/config"
	"github.com/nmartins/bazario-backend/pkg/docstore"
	"github.com/nmartins/bazario-backend/pkg/enums"
	"github.com/nmartins/bazario-backend/pkg/logger"
	"github.com/nmartins/bazario-backend/pkg/models"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := docstore.NewMemoryStore()

	engine, err := pricing.NewEngine(pricing.FeeConfig{
		PlatformFeePercent: decimal.NewFromInt(2),
		HandlingFeeFixed:   decimal.NewFromInt(50),
	}, func(category, subcategory string) (decimal.Decimal, bool) {
		if category == "electronics" {
			return decimal.NewFromInt(18), true
		}
		return decimal.Zero, false
	})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	ordersRepo, err := orders.NewRepository(store, orders.RepositoryConfig{})
	if err != nil {
		t.Fatalf("build orders repo: %v", err)
	}
	ordersSvc, err := orders.NewService(ordersRepo, engine, nil)
	if err != nil {
		t.Fatalf("build orders service: %v", err)
	}

	returnsRepo, err := returns.NewRepository(store, returns.RepositoryConfig{})
	if err != nil {
		t.Fatalf("build returns repo: %v", err)
	}
	returnsSvc, err := returns.NewService(returnsRepo, ordersRepo)
	if err != nil {
		t.Fatalf("build returns service: %v", err)
	}

	listingsRepo, err := listings.NewRepository(store, listings.RepositoryConfig{})
	if err != nil {
		t.Fatalf("build listings repo: %v", err)
	}
	listingsSvc, err := listings.NewService(listingsRepo)
	if err != nil {
		t.Fatalf("build listings service: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		map[string]controllers.Pinger{"memory": stubPinger{}},
		ordersSvc,
		returnsSvc,
		listingsSvc,
		nil,
	)
}

const checkoutBody = `{
	"buyer_name": "Ada",
	"contact_number": "555-0101",
	"shipping_address": {"line1": "1 Main St", "city": "Pune", "state": "MH", "postal_code": "411001"},
	"lines": [{
		"product_id": "p1",
		"name": "Headphones",
		"unit_price": 100,
		"quantity": 2,
		"category": "electronics",
		"seller_id": "s1",
		"seller_name": "AudioHub"
	}]
}`

func postJSON(router http.Handler, path, buyerID, sellerID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if buyerID != "" {
		req.Header.Set("X-Buyer-Id", buyerID)
	}
	if sellerID != "" {
		req.Header.Set("X-Seller-Id", sellerID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func getWithHeader(router http.Handler, path, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeOrder(t *testing.T, resp *httptest.ResponseRecorder) models.Order {
	t.Helper()
	var envelope struct {
		Data models.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode order envelope: %v", err)
	}
	return envelope.Data
}

func TestHealthLiveReportsEnv(t *testing.T) {
	router := newTestRouter(t)
	resp := getWithHeader(router, "/health/live", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Bazario-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestBuyerRoutesRequireIdentity(t *testing.T) {
	router := newTestRouter(t)

	if resp := getWithHeader(router, "/api/v1/orders", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without buyer header got %d", resp.Code)
	}
	if resp := postJSON(router, "/api/v1/checkout", "", "", checkoutBody); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 checkout without buyer header got %d", resp.Code)
	}
}

func TestSellerRoutesRequireIdentity(t *testing.T) {
	router := newTestRouter(t)
	resp := postJSON(router, "/api/v1/seller/listings", "", "", `{"name":"Desk Lamp","category":"home"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without seller header got %d", resp.Code)
	}
}

func TestCheckoutRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t)
	resp := postJSON(router, "/api/v1/checkout", "buyer-1", "", "{")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body got %d", resp.Code)
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	resp := postJSON(router, "/api/v1/checkout", "buyer-1", "", checkoutBody)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	order := decodeOrder(t, resp)
	if order.ID == "" {
		t.Fatalf("expected generated order id")
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending order got %s", order.Status)
	}
	if !order.Pricing.Total.Equal(decimal.NewFromInt(290)) {
		t.Fatalf("unexpected total %s", order.Pricing.Total)
	}

	list := getWithHeader(router, "/api/v1/orders", "X-Buyer-Id", "buyer-1")
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200 listing got %d", list.Code)
	}
	var listEnvelope struct {
		Data struct {
			Orders []models.Order `json:"orders"`
			Total  int            `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(list.Body).Decode(&listEnvelope); err != nil {
		t.Fatalf("decode list envelope: %v", err)
	}
	if listEnvelope.Data.Total != 1 || len(listEnvelope.Data.Orders) != 1 {
		t.Fatalf("expected one order, got total=%d", listEnvelope.Data.Total)
	}

	// Another buyer cannot see the order through the scoped index.
	other := getWithHeader(router, "/api/v1/orders/"+order.ID, "X-Buyer-Id", "buyer-2")
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign buyer got %d", other.Code)
	}

	check := getWithHeader(router, "/api/admin/v1/orders/"+order.ID+"/consistency", "", "")
	if check.Code != http.StatusOK {
		t.Fatalf("expected consistent copies got %d: %s", check.Code, check.Body.String())
	}
}

func TestAdminStatusTransitionOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	created := postJSON(router, "/api/v1/checkout", "buyer-1", "", checkoutBody)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", created.Code)
	}
	order := decodeOrder(t, created)

	shipped := postJSON(router, "/api/admin/v1/orders/"+order.ID+"/status", "", "", `{"status":"shipped"}`)
	if shipped.Code != http.StatusOK {
		t.Fatalf("expected 200 shipping got %d: %s", shipped.Code, shipped.Body.String())
	}

	// shipped -> pending is not a legal move.
	backward := postJSON(router, "/api/admin/v1/orders/"+order.ID+"/status", "", "", `{"status":"pending"}`)
	if backward.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for backward move got %d", backward.Code)
	}

	unknown := postJSON(router, "/api/admin/v1/orders/"+order.ID+"/status", "", "", `{"status":"teleported"}`)
	if unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status got %d", unknown.Code)
	}
}

func TestReturnRequiresDeliveredOrder(t *testing.T) {
	router := newTestRouter(t)

	created := postJSON(router, "/api/v1/checkout", "buyer-1", "", checkoutBody)
	order := decodeOrder(t, created)

	resp := postJSON(router, "/api/v1/orders/"+order.ID+"/return", "buyer-1", "",
		`{"reason":"the headphones arrived crushed"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for undelivered order got %d: %s", resp.Code, resp.Body.String())
	}

	// A short reason does not demote the state conflict to a 400.
	short := postJSON(router, "/api/v1/orders/"+order.ID+"/return", "buyer-1", "", `{"reason":"meh"}`)
	if short.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for undelivered order with short reason got %d: %s", short.Code, short.Body.String())
	}
}

func TestListingModerationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	submitted := postJSON(router, "/api/v1/seller/listings", "", "seller-1",
		`{"name":"Desk Lamp","description":"warm light","category":"home","price":45.50}`)
	if submitted.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", submitted.Code, submitted.Body.String())
	}
	var listingEnvelope struct {
		Data models.Listing `json:"data"`
	}
	if err := json.NewDecoder(submitted.Body).Decode(&listingEnvelope); err != nil {
		t.Fatalf("decode listing envelope: %v", err)
	}
	listing := listingEnvelope.Data
	if listing.Status != enums.ListingStatusPendingReview {
		t.Fatalf("expected pending_review got %s", listing.Status)
	}

	queue := getWithHeader(router, "/api/admin/v1/listings", "", "")
	if queue.Code != http.StatusOK {
		t.Fatalf("expected 200 queue got %d", queue.Code)
	}
	var queueEnvelope struct {
		Data struct {
			Listings []models.Listing `json:"listings"`
			Total    int              `json:"total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(queue.Body).Decode(&queueEnvelope); err != nil {
		t.Fatalf("decode queue envelope: %v", err)
	}
	if queueEnvelope.Data.Total != 1 {
		t.Fatalf("expected one pending listing got %d", queueEnvelope.Data.Total)
	}

	approved := postJSON(router, "/api/admin/v1/listings/"+listing.ID+"/approve", "", "", "")
	if approved.Code != http.StatusOK {
		t.Fatalf("expected 200 approve got %d: %s", approved.Code, approved.Body.String())
	}

	detail := getWithHeader(router, "/api/v1/listings/"+listing.ID, "", "")
	if detail.Code != http.StatusOK {
		t.Fatalf("expected 200 detail got %d", detail.Code)
	}
	var detailEnvelope struct {
		Data models.Listing `json:"data"`
	}
	if err := json.NewDecoder(detail.Body).Decode(&detailEnvelope); err != nil {
		t.Fatalf("decode detail envelope: %v", err)
	}
	if detailEnvelope.Data.Status != enums.ListingStatusActive {
		t.Fatalf("expected active listing got %s", detailEnvelope.Data.Status)
	}

	sold := postJSON(router, "/api/v1/seller/listings/"+listing.ID+"/sold", "", "seller-1", "")
	if sold.Code != http.StatusOK {
		t.Fatalf("expected 200 sold got %d: %s", sold.Code, sold.Body.String())
	}

	// Rejecting an already-active listing is a state conflict.
	reject := postJSON(router, "/api/admin/v1/listings/"+listing.ID+"/reject", "", "", `{"reason":"stock photo"}`)
	if reject.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 rejecting non-pending listing got %d", reject.Code)
	}
}
