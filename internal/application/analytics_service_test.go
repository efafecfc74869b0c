package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/infrastructure/repository"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// memoryCache is a map-backed ports.Cache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func setupAnalytics(t *testing.T, cache ports.Cache) (*AnalyticsService, ports.OrderRepository) {
	t.Helper()

	db, err := repository.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	orders := repository.NewOrderRepository(db, "sqlite", zerolog.Nop())
	return NewAnalyticsService(orders, cache, zerolog.Nop()), orders
}

func seedOrder(t *testing.T, orders ports.OrderRepository, id, shop, name, email, price string, created time.Time) {
	t.Helper()
	err := orders.UpsertOrder(context.Background(), &domain.Order{
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

func TestAggregate(t *testing.T) {
	svc, orders := setupAnalytics(t, nil)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC)

	seedOrder(t, orders, "1", "a.myshopify.com", "A", "a@example.com", "10.00", day1)
	seedOrder(t, orders, "2", "a.myshopify.com", "A", "a@example.com", "20.00", day1)
	seedOrder(t, orders, "3", "a.myshopify.com", "A", "a@example.com", "30.00", day2)
	seedOrder(t, orders, "4", "a.myshopify.com", "B", "b@example.com", "5.00", day2)
	// Another shop's order must not leak into the aggregate
	seedOrder(t, orders, "5", "other.myshopify.com", "X", "x@example.com", "99.00", day1)

	analytics, err := svc.Aggregate(ctx, "a.myshopify.com")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if analytics.TotalOrders != 4 {
		t.Errorf("TotalOrders = %d, want 4", analytics.TotalOrders)
	}
	if analytics.TotalCustomers != 2 {
		t.Errorf("TotalCustomers = %d, want 2", analytics.TotalCustomers)
	}

	if len(analytics.RevenueByCustomer) != 2 {
		t.Fatalf("RevenueByCustomer has %d entries, want 2", len(analytics.RevenueByCustomer))
	}
	if analytics.RevenueByCustomer[0].CustomerName != "A" ||
		!analytics.RevenueByCustomer[0].TotalSpent.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("top revenue = %+v, want A with 60.00", analytics.RevenueByCustomer[0])
	}
	if analytics.RevenueByCustomer[1].CustomerName != "B" ||
		!analytics.RevenueByCustomer[1].TotalSpent.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("second revenue = %+v, want B with 5.00", analytics.RevenueByCustomer[1])
	}

	if len(analytics.OrdersPerDay) != 2 {
		t.Fatalf("OrdersPerDay has %d entries, want 2", len(analytics.OrdersPerDay))
	}
	if analytics.OrdersPerDay[0].Day != "2026-08-01" || analytics.OrdersPerDay[0].Orders != 2 {
		t.Errorf("OrdersPerDay[0] = %+v", analytics.OrdersPerDay[0])
	}
	if analytics.OrdersPerDay[1].Day != "2026-08-02" || analytics.OrdersPerDay[1].Orders != 2 {
		t.Errorf("OrdersPerDay[1] = %+v", analytics.OrdersPerDay[1])
	}
}

func TestAggregateEmptyShop(t *testing.T) {
	svc, _ := setupAnalytics(t, nil)

	analytics, err := svc.Aggregate(context.Background(), "empty.myshopify.com")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if analytics.TotalOrders != 0 || analytics.TotalCustomers != 0 {
		t.Errorf("expected zero counts, got %+v", analytics)
	}
	if analytics.RevenueByCustomer == nil || analytics.OrdersPerDay == nil {
		t.Error("expected empty collections, not nil")
	}
}

func TestGroupByCustomer(t *testing.T) {
	svc, orders := setupAnalytics(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	seedOrder(t, orders, "1", "a.myshopify.com", "Bea", "bea@example.com", "10.00", now)
	seedOrder(t, orders, "2", "a.myshopify.com", "Al", "al@example.com", "20.00", now)
	seedOrder(t, orders, "3", "a.myshopify.com", "Bea", "bea@example.com", "30.00", now)
	// Same email, different name: a distinct pair
	seedOrder(t, orders, "4", "a.myshopify.com", "Beatrice", "bea@example.com", "1.00", now)

	groups, err := svc.GroupByCustomer(ctx, "a.myshopify.com")
	if err != nil {
		t.Fatalf("GroupByCustomer: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Ordered by customer name
	wantNames := []string{"Al", "Bea", "Beatrice"}
	for i, want := range wantNames {
		if groups[i].CustomerName != want {
			t.Errorf("groups[%d].CustomerName = %q, want %q", i, groups[i].CustomerName, want)
		}
	}

	if len(groups[1].Orders) != 2 {
		t.Errorf("Bea has %d orders, want 2", len(groups[1].Orders))
	}
	if len(groups[2].Orders) != 1 {
		t.Errorf("Beatrice has %d orders, want 1", len(groups[2].Orders))
	}
}

func TestReadsRequireShop(t *testing.T) {
	svc, _ := setupAnalytics(t, nil)
	ctx := context.Background()

	var validation *apperrors.ErrValidation

	if _, err := svc.ListOrders(ctx, ""); !errors.As(err, &validation) {
		t.Errorf("ListOrders(\"\") = %v, want ErrValidation", err)
	}
	if _, err := svc.GroupByCustomer(ctx, ""); !errors.As(err, &validation) {
		t.Errorf("GroupByCustomer(\"\") = %v, want ErrValidation", err)
	}
	if _, err := svc.Aggregate(ctx, ""); !errors.As(err, &validation) {
		t.Errorf("Aggregate(\"\") = %v, want ErrValidation", err)
	}
}

func TestAggregateUsesCache(t *testing.T) {
	cache := newMemoryCache()
	svc, orders := setupAnalytics(t, cache)
	ctx := context.Background()

	now := time.Now().UTC()
	seedOrder(t, orders, "1", "a.myshopify.com", "A", "a@example.com", "10.00", now)

	first, err := svc.Aggregate(ctx, "a.myshopify.com")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	// A second order lands but the cache has not been invalidated, so the
	// stale aggregate is served.
	seedOrder(t, orders, "2", "a.myshopify.com", "A", "a@example.com", "10.00", now)

	second, err := svc.Aggregate(ctx, "a.myshopify.com")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if second.TotalOrders != first.TotalOrders {
		t.Errorf("expected cached aggregate, got %d orders", second.TotalOrders)
	}

	// Invalidation (what ingestion does) makes the new order visible.
	if err := cache.Delete(ctx, shopCacheKeys("a.myshopify.com")...); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	third, err := svc.Aggregate(ctx, "a.myshopify.com")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if third.TotalOrders != 2 {
		t.Errorf("TotalOrders after invalidation = %d, want 2", third.TotalOrders)
	}
}
