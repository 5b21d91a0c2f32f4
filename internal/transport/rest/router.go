package rest

import (
	"net/http"

	"mediqa/casesim/internal/service"
	"mediqa/casesim/internal/transport/rest/handler"
	"mediqa/casesim/internal/transport/rest/middleware"
	"mediqa/casesim/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	TabService         *service.TabService
	WSHub              *ws.Hub
	CORSAllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	tabHandler := handler.NewTabHandler(c.TabService)
	caseHandler := handler.NewCaseHandler(c.TabService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.TabService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/tabs", tabHandler.Open).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/tabs", wsHandler.TabWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Tab routes (require tab token)
	tabRoutes := v1.NewRoute().Subrouter()
	tabRoutes.Use(authMW.RequireTab)

	tabRoutes.HandleFunc("/tabs", tabHandler.Close).Methods("DELETE", "OPTIONS")
	tabRoutes.HandleFunc("/tabs/reload", tabHandler.Reload).Methods("POST", "OPTIONS")
	tabRoutes.HandleFunc("/history", tabHandler.History).Methods("GET", "OPTIONS")

	tabRoutes.HandleFunc("/case", caseHandler.Get).Methods("GET", "OPTIONS")
	tabRoutes.HandleFunc("/case/new", caseHandler.New).Methods("POST", "OPTIONS")
	tabRoutes.HandleFunc("/case/input", caseHandler.SetInput).Methods("PUT", "OPTIONS")
	tabRoutes.HandleFunc("/case/focus", caseHandler.SetFocus).Methods("PUT", "OPTIONS")
	tabRoutes.HandleFunc("/case/advance", caseHandler.Advance).Methods("POST", "OPTIONS")
	tabRoutes.HandleFunc("/case/retreat", caseHandler.Retreat).Methods("POST", "OPTIONS")
	tabRoutes.HandleFunc("/case/keys", caseHandler.Key).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
