// Package api is the REST and WebSocket surface the dashboard talks to.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultfolio/ledger-backend/internal/external"
	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/store"
	"github.com/vaultfolio/ledger-backend/internal/stream"
)

const maxQueryLimit = 1000

// Deps carries everything the server needs. All fields except Hub and
// Prices are required.
type Deps struct {
	Ledger *ledger.Ledger
	Prices *external.PriceClient
	Hub    *stream.Hub
	Store  store.Store
	Logger zerolog.Logger
}

type Server struct {
	ledger     *ledger.Ledger
	prices     *external.PriceClient
	hub        *stream.Hub
	store      store.Store
	httpServer *http.Server
	apiKey     string
	log        zerolog.Logger
}

func NewServer(deps Deps, port int, apiKey, corsOrigin string) *Server {
	s := &Server{
		ledger: deps.Ledger,
		prices: deps.Prices,
		hub:    deps.Hub,
		store:  deps.Store,
		apiKey: apiKey,
		log:    deps.Logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()

	// Bot routes
	mux.HandleFunc("GET /v1/bots", s.handleListBots)
	mux.HandleFunc("POST /v1/bots", s.handleCreateBot)
	mux.HandleFunc("PUT /v1/bots/{id}", s.handleSaveBot)
	mux.HandleFunc("DELETE /v1/bots/{id}", s.handleDeleteBot)
	mux.HandleFunc("POST /v1/bots/{id}/toggle", s.handleToggleBot)
	mux.HandleFunc("POST /v1/bots/{id}/execute", s.handleExecuteBot)

	// Analytics and execution log
	mux.HandleFunc("GET /v1/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /v1/executions", s.handleExecutions)

	// Prices
	mux.HandleFunc("GET /v1/prices", s.handlePrices)

	// Event stream
	if s.hub != nil {
		mux.Handle("GET /v1/stream", s.hub)
	}

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // stream connections outlive normal requests
	}

	return s
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Bool("auth", s.apiKey != "").Msg("REST API listening")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		// Browsers cannot set headers on WebSocket upgrades, so the
		// stream route accepts the key as a query parameter.
		if r.URL.Path == "/v1/stream" && r.URL.Query().Get("token") == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLedgerError maps the ledger's error taxonomy onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	var execErr *ledger.ExecutionError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &execErr):
		writeError(w, http.StatusBadGateway, execErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
