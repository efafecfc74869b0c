package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one persisted row per Shopify order. Order IDs are globally
// unique across shops (a Shopify platform guarantee), so OrderID alone is
// the primary key and Shop is a scoping column.
type Order struct {
	OrderID       string          `json:"order_id"`
	Shop          string          `json:"shop"`
	OrderName     string          `json:"order_name"`
	ProductName   string          `json:"product_name"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        string          `json:"status"`
}

// CustomerOrder is the per-order slice of fields returned inside a
// customer grouping.
type CustomerOrder struct {
	OrderID     string          `json:"order_id"`
	OrderName   string          `json:"order_name"`
	ProductName string          `json:"product_name"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CustomerGroup is one distinct (email, name) pair within a shop with its
// orders. Customers are a derived grouping; there is no customer table.
type CustomerGroup struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Orders        []CustomerOrder `json:"orders"`
}

// CustomerRevenue is one row of the revenue-by-customer analytics list.
type CustomerRevenue struct {
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
}

// DayCount is one row of the orders-per-day analytics list. Day is a
// YYYY-MM-DD date in UTC.
type DayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

// Analytics is the summary returned by GET /api/analytics.
type Analytics struct {
	TotalOrders       int               `json:"totalOrders"`
	TotalCustomers    int               `json:"totalCustomers"`
	RevenueByCustomer []CustomerRevenue `json:"revenueByCustomer"`
	OrdersPerDay      []DayCount        `json:"ordersPerDay"`
}
