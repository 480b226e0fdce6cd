package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"garagehub/internal/cache"
	"garagehub/internal/service"
	"garagehub/internal/transport/rest/handler"
	"garagehub/internal/transport/rest/middleware"
	"garagehub/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	AnalysisService *service.AnalysisService
	PolicyService   *service.PolicyService
	Stats           cache.StatsCache
	WSHub           *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	analysisHandler := handler.NewAnalysisHandler(c.AnalysisService)
	policyHandler := handler.NewPolicyHandler(c.PolicyService)
	statsHandler := handler.NewStatsHandler(c.Stats)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/dashboard", wsHandler.DashboardWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Tenant routes (require tenant auth)
	tenantRoutes := v1.NewRoute().Subrouter()
	tenantRoutes.Use(authMW.RequireTenant)

	tenantRoutes.HandleFunc("/analysis/surface", analysisHandler.AnalyzeSurface).Methods("POST", "OPTIONS")
	tenantRoutes.HandleFunc("/analysis/tyres", analysisHandler.AnalyzeTyres).Methods("POST", "OPTIONS")
	tenantRoutes.HandleFunc("/analysis/inspection", analysisHandler.AnalyzeInspection).Methods("POST", "OPTIONS")
	tenantRoutes.HandleFunc("/analysis", analysisHandler.List).Methods("GET", "OPTIONS")
	tenantRoutes.HandleFunc("/analysis/{analysisId}", analysisHandler.Get).Methods("GET", "OPTIONS")

	tenantRoutes.HandleFunc("/policy/tyres", policyHandler.Get).Methods("GET", "OPTIONS")

	tenantRoutes.HandleFunc("/stats", statsHandler.Get).Methods("GET", "OPTIONS")

	// Admin routes (policy writes need the admin credential)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/policy/tyres", policyHandler.Update).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
