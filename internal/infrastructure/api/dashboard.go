package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"shopdash/internal/application"
	"shopdash/internal/domain"
	"shopdash/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Dashboard serves the JSON API the single-page dashboard consumes.
type Dashboard struct {
	analytics *application.AnalyticsService
	products  *application.ProductsService
	auth      *application.AuthService
	feed      *pubsub.OrderPubSub
	logger    zerolog.Logger
}

// NewDashboard creates the dashboard API handler set.
func NewDashboard(
	analytics *application.AnalyticsService,
	products *application.ProductsService,
	auth *application.AuthService,
	feed *pubsub.OrderPubSub,
	logger zerolog.Logger,
) *Dashboard {
	return &Dashboard{
		analytics: analytics,
		products:  products,
		auth:      auth,
		feed:      feed,
		logger:    logger,
	}
}

// Routes mounts the dashboard API under /api.
func (d *Dashboard) Routes() chi.Router {
	r := chi.NewRouter()

	// check-auth answers false for a missing shop instead of erroring,
	// so the frontend can probe before install.
	r.Get("/check-auth", d.CheckAuth)

	r.Group(func(r chi.Router) {
		r.Use(RequireShop)
		r.Get("/orders", d.Orders)
		r.Get("/customers", d.Customers)
		r.Get("/analytics", d.Analytics)
		r.Get("/products", d.Products)
		r.Get("/events", d.Events)
	})

	return r
}

func (d *Dashboard) CheckAuth(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")

	installed, err := d.auth.IsInstalled(r.Context(), shop)
	if err != nil {
		writeError(w, d.logger, "check-auth", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": installed})
}

func (d *Dashboard) Orders(w http.ResponseWriter, r *http.Request) {
	shop := domain.ShopFromContext(r.Context())

	orders, err := d.analytics.ListOrders(r.Context(), shop)
	if err != nil {
		writeError(w, d.logger, "orders", err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (d *Dashboard) Customers(w http.ResponseWriter, r *http.Request) {
	shop := domain.ShopFromContext(r.Context())

	groups, err := d.analytics.GroupByCustomer(r.Context(), shop)
	if err != nil {
		writeError(w, d.logger, "customers", err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (d *Dashboard) Analytics(w http.ResponseWriter, r *http.Request) {
	shop := domain.ShopFromContext(r.Context())

	analytics, err := d.analytics.Aggregate(r.Context(), shop)
	if err != nil {
		writeError(w, d.logger, "analytics", err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

func (d *Dashboard) Products(w http.ResponseWriter, r *http.Request) {
	shop := domain.ShopFromContext(r.Context())

	products, err := d.products.ListProducts(r.Context(), shop)
	if err != nil {
		writeError(w, d.logger, "products", err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Events streams the shop's ingested orders as Server-Sent Events until
// the client disconnects.
func (d *Dashboard) Events(w http.ResponseWriter, r *http.Request) {
	shop := domain.ShopFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	channel := d.feed.Subscribe(r.Context(), shop)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-channel.Events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				d.logger.Warn().Err(err).Msg("Failed to marshal order event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, payload)
			flusher.Flush()
		}
	}
}
