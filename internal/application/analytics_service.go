package application

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/rs/zerolog"
)

const cacheTTL = 60 * time.Second

func ordersCacheKey(shop string) string    { return "orders:" + shop }
func customersCacheKey(shop string) string { return "customers:" + shop }
func analyticsCacheKey(shop string) string { return "analytics:" + shop }

func shopCacheKeys(shop string) []string {
	return []string{ordersCacheKey(shop), customersCacheKey(shop), analyticsCacheKey(shop)}
}

// AnalyticsService serves the dashboard's read endpoints. Grouping and
// aggregation are computed here from flat shop-scoped rows rather than in
// SQL, which keeps the queries portable across drivers.
type AnalyticsService struct {
	orders ports.OrderRepository
	cache  ports.Cache
	logger zerolog.Logger
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(orders ports.OrderRepository, cache ports.Cache, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{orders: orders, cache: cache, logger: logger}
}

// ListOrders returns a shop's orders, newest first.
func (s *AnalyticsService) ListOrders(ctx context.Context, shop string) ([]*domain.Order, error) {
	if shop == "" {
		return nil, &apperrors.ErrValidation{Message: "missing shop parameter"}
	}
	return s.orders.ListOrders(ctx, shop)
}

// GroupByCustomer returns one entry per distinct (email, name) pair within
// the shop, ordered by customer name, each with its orders.
func (s *AnalyticsService) GroupByCustomer(ctx context.Context, shop string) ([]domain.CustomerGroup, error) {
	if shop == "" {
		return nil, &apperrors.ErrValidation{Message: "missing shop parameter"}
	}

	var cached []domain.CustomerGroup
	if ok := s.cacheGet(ctx, customersCacheKey(shop), &cached); ok {
		return cached, nil
	}

	orders, err := s.orders.ListOrdersByCustomerSort(ctx, shop)
	if err != nil {
		return nil, err
	}

	groups := []domain.CustomerGroup{}
	index := map[[2]string]int{}
	for _, order := range orders {
		key := [2]string{order.CustomerEmail, order.CustomerName}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.CustomerGroup{
				CustomerName:  order.CustomerName,
				CustomerEmail: order.CustomerEmail,
			})
		}
		groups[i].Orders = append(groups[i].Orders, domain.CustomerOrder{
			OrderID:     order.OrderID,
			OrderName:   order.OrderName,
			ProductName: order.ProductName,
			TotalPrice:  order.TotalPrice,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
		})
	}

	s.cacheSet(ctx, customersCacheKey(shop), groups)
	return groups, nil
}

// Aggregate computes the shop's summary analytics: total order count,
// distinct customer count (by email), revenue per customer descending and
// orders per UTC day ascending.
func (s *AnalyticsService) Aggregate(ctx context.Context, shop string) (*domain.Analytics, error) {
	if shop == "" {
		return nil, &apperrors.ErrValidation{Message: "missing shop parameter"}
	}

	var cached domain.Analytics
	if ok := s.cacheGet(ctx, analyticsCacheKey(shop), &cached); ok {
		return &cached, nil
	}

	orders, err := s.orders.ListOrders(ctx, shop)
	if err != nil {
		return nil, err
	}

	analytics := &domain.Analytics{
		TotalOrders:       len(orders),
		RevenueByCustomer: []domain.CustomerRevenue{},
		OrdersPerDay:      []domain.DayCount{},
	}

	customers := map[string]struct{}{}
	revenueIdx := map[[2]string]int{}
	days := map[string]int{}

	for _, order := range orders {
		customers[order.CustomerEmail] = struct{}{}

		key := [2]string{order.CustomerEmail, order.CustomerName}
		i, ok := revenueIdx[key]
		if !ok {
			i = len(analytics.RevenueByCustomer)
			revenueIdx[key] = i
			analytics.RevenueByCustomer = append(analytics.RevenueByCustomer, domain.CustomerRevenue{
				CustomerName:  order.CustomerName,
				CustomerEmail: order.CustomerEmail,
			})
		}
		analytics.RevenueByCustomer[i].TotalSpent = analytics.RevenueByCustomer[i].TotalSpent.Add(order.TotalPrice)

		days[order.CreatedAt.UTC().Format("2006-01-02")]++
	}

	analytics.TotalCustomers = len(customers)

	sort.SliceStable(analytics.RevenueByCustomer, func(i, j int) bool {
		return analytics.RevenueByCustomer[i].TotalSpent.GreaterThan(analytics.RevenueByCustomer[j].TotalSpent)
	})

	for day, count := range days {
		analytics.OrdersPerDay = append(analytics.OrdersPerDay, domain.DayCount{Day: day, Orders: count})
	}
	sort.Slice(analytics.OrdersPerDay, func(i, j int) bool {
		return analytics.OrdersPerDay[i].Day < analytics.OrdersPerDay[j].Day
	})

	s.cacheSet(ctx, analyticsCacheKey(shop), analytics)
	return analytics, nil
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache entry unreadable")
		return false
	}
	return true
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
