package domain

import "github.com/shopspring/decimal"

// ProductSummary is the dashboard's view of a Shopify product: first
// image, first variant price. Products are never persisted; this is a
// pass-through of the Admin API.
type ProductSummary struct {
	ID    uint64           `json:"id"`
	Title string           `json:"title"`
	Image string           `json:"image,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
}
