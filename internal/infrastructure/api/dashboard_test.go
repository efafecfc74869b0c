package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopdash/internal/application"
	"shopdash/internal/domain"
	"shopdash/internal/infrastructure/encryption"
	"shopdash/internal/infrastructure/pubsub"
	"shopdash/internal/infrastructure/repository"
	"shopdash/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fakeShopifyClient stubs the Admin API for handler tests.
type fakeShopifyClient struct {
	products []goshopify.Product
	err      error
}

func (f *fakeShopifyClient) ExchangeToken(ctx context.Context, shop, code string) (string, error) {
	return "shpat_test_token", nil
}

func (f *fakeShopifyClient) GetProducts(ctx context.Context, shop, accessToken string) ([]goshopify.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type testEnv struct {
	router chi.Router
	orders ports.OrderRepository
	tokens ports.TokenRepository
	enc    *encryption.Service
}

func setupDashboard(t *testing.T, client ports.ShopifyClient) *testEnv {
	t.Helper()

	db, err := repository.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	logger := zerolog.Nop()
	orders := repository.NewOrderRepository(db, "sqlite", logger)
	tokens := repository.NewTokenRepository(db, "sqlite", logger)
	sessions := repository.NewSessionRepository(db, "sqlite", logger)

	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	enc, err := encryption.NewService(key)
	if err != nil {
		t.Fatalf("encryption.NewService: %v", err)
	}

	if client == nil {
		client = &fakeShopifyClient{}
	}

	auth := application.NewAuthService(tokens, sessions, client, enc, logger,
		"http://localhost:8080", "test-api-key", []string{"read_orders"})
	analytics := application.NewAnalyticsService(orders, nil, logger)
	products := application.NewProductsService(auth, client, logger)
	feed := pubsub.NewOrderPubSub(logger)

	dashboard := NewDashboard(analytics, products, auth, feed, logger)

	router := chi.NewRouter()
	router.Mount("/api", dashboard.Routes())

	return &testEnv{router: router, orders: orders, tokens: tokens, enc: enc}
}

func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedOrder(t *testing.T, id, shop, name, email, price string, created time.Time) {
	t.Helper()
	err := env.orders.UpsertOrder(context.Background(), &domain.Order{
		OrderID:       id,
		Shop:          shop,
		OrderName:     "#" + id,
		ProductName:   "Widget",
		CustomerName:  name,
		CustomerEmail: email,
		TotalPrice:    decimal.RequireFromString(price),
		CreatedAt:     created,
		Status:        "paid",
	})
	if err != nil {
		t.Fatalf("UpsertOrder: %v", err)
	}
}

func TestOrdersEndpoint(t *testing.T) {
	env := setupDashboard(t, nil)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	env.seedOrder(t, "1", "a.myshopify.com", "A", "a@example.com", "10.00", base)
	env.seedOrder(t, "2", "a.myshopify.com", "A", "a@example.com", "20.00", base.Add(time.Hour))
	env.seedOrder(t, "3", "b.myshopify.com", "B", "b@example.com", "30.00", base)

	rec := env.get(t, "/api/orders?shop=a.myshopify.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var orders []domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].OrderID != "2" {
		t.Errorf("first order = %s, want newest", orders[0].OrderID)
	}
	for _, order := range orders {
		if order.Shop != "a.myshopify.com" {
			t.Errorf("cross-tenant leak: %s", order.Shop)
		}
	}
}

func TestReadEndpointsRequireShop(t *testing.T) {
	env := setupDashboard(t, nil)

	for _, path := range []string{"/api/orders", "/api/customers", "/api/analytics", "/api/products", "/api/events"} {
		rec := env.get(t, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, rec.Code)
		}
	}
}

func TestEmptyShopReturnsEmptyCollections(t *testing.T) {
	env := setupDashboard(t, nil)

	rec := env.get(t, "/api/orders?shop=empty.myshopify.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestCustomersEndpoint(t *testing.T) {
	env := setupDashboard(t, nil)

	now := time.Now().UTC()
	env.seedOrder(t, "1", "a.myshopify.com", "Bea", "bea@example.com", "10.00", now)
	env.seedOrder(t, "2", "a.myshopify.com", "Al", "al@example.com", "20.00", now)
	env.seedOrder(t, "3", "a.myshopify.com", "Bea", "bea@example.com", "5.00", now)

	rec := env.get(t, "/api/customers?shop=a.myshopify.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var groups []domain.CustomerGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].CustomerName != "Al" || groups[1].CustomerName != "Bea" {
		t.Errorf("group order = %s, %s", groups[0].CustomerName, groups[1].CustomerName)
	}
	if len(groups[1].Orders) != 2 {
		t.Errorf("Bea has %d orders, want 2", len(groups[1].Orders))
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	env := setupDashboard(t, nil)

	now := time.Now().UTC()
	env.seedOrder(t, "1", "a.myshopify.com", "A", "a@example.com", "10.00", now)
	env.seedOrder(t, "2", "a.myshopify.com", "B", "b@example.com", "5.00", now)

	rec := env.get(t, "/api/analytics?shop=a.myshopify.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var analytics domain.Analytics
	if err := json.Unmarshal(rec.Body.Bytes(), &analytics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analytics.TotalOrders != 2 || analytics.TotalCustomers != 2 {
		t.Errorf("analytics = %+v", analytics)
	}
}

func TestCheckAuth(t *testing.T) {
	env := setupDashboard(t, nil)
	ctx := context.Background()

	// Missing shop answers false rather than 400
	rec := env.get(t, "/api/check-auth")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["authenticated"] {
		t.Error("expected authenticated=false without shop")
	}

	rec = env.get(t, "/api/check-auth?shop=a.myshopify.com")
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["authenticated"] {
		t.Error("expected authenticated=false before install")
	}

	encrypted, _ := env.enc.Encrypt("shpat_token")
	if err := env.tokens.SaveToken(ctx, &domain.ShopToken{Shop: "a.myshopify.com", AccessToken: encrypted}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	rec = env.get(t, "/api/check-auth?shop=a.myshopify.com")
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body["authenticated"] {
		t.Error("expected authenticated=true after install")
	}
}

func TestProductsRequiresInstall(t *testing.T) {
	env := setupDashboard(t, nil)

	rec := env.get(t, "/api/products?shop=a.myshopify.com")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 before install", rec.Code)
	}
}

func TestProductsEndpoint(t *testing.T) {
	price := decimal.RequireFromString("19.99")
	client := &fakeShopifyClient{products: []goshopify.Product{
		{
			Id:       42,
			Title:    "Blue T-Shirt",
			Images:   []goshopify.Image{{Src: "https://cdn.example.com/blue.png"}},
			Variants: []goshopify.Variant{{Price: &price}},
		},
	}}
	env := setupDashboard(t, client)

	encrypted, _ := env.enc.Encrypt("shpat_token")
	if err := env.tokens.SaveToken(context.Background(), &domain.ShopToken{Shop: "a.myshopify.com", AccessToken: encrypted}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	rec := env.get(t, "/api/products?shop=a.myshopify.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var products []domain.ProductSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].ID != 42 || products[0].Title != "Blue T-Shirt" {
		t.Errorf("product = %+v", products[0])
	}
	if products[0].Image == "" || products[0].Price == nil {
		t.Errorf("expected image and price, got %+v", products[0])
	}
}

func TestProductsUpstreamFailure(t *testing.T) {
	client := &fakeShopifyClient{err: fmt.Errorf("boom")}
	env := setupDashboard(t, client)

	encrypted, _ := env.enc.Encrypt("shpat_token")
	if err := env.tokens.SaveToken(context.Background(), &domain.ShopToken{Shop: "a.myshopify.com", AccessToken: encrypted}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	rec := env.get(t, "/api/products?shop=a.myshopify.com")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); body == "" || len(body) > 200 {
		t.Errorf("unexpected error body: %q", body)
	}
}
