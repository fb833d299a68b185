package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
// Admin routes are only mounted when adminAPIKey is set.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Health)
	mux.HandleFunc("GET /api/v1/balances/{account}", handler.GetBalance)
	mux.HandleFunc("GET /api/v1/scores/{account}", handler.GetScore)

	if adminAPIKey != "" {
		mux.Handle("GET /api/v1/accounts", requireAuth(adminAPIKey, http.HandlerFunc(handler.ListAccounts)))
		if handler.exporter != nil {
			mux.Handle("POST /api/v1/exports", requireAuth(adminAPIKey, http.HandlerFunc(handler.RunExport)))
		}
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
