package api

import (
	"net/http"

	"shopdash/internal/domain"
)

// RequireShop extracts the shop query parameter into the request context.
// Every dashboard read is scoped by shop; a missing parameter is a client
// error, never an empty-but-OK response.
func RequireShop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing shop parameter"})
			return
		}

		ctx := domain.WithShop(r.Context(), shop)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
