package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garagehub/internal/cache"
	"garagehub/internal/config"
	"garagehub/internal/repository"
	"garagehub/internal/service"
	"garagehub/internal/transport/rest"
	"garagehub/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfg := config.Load()

	// Classifier config
	aiConfig := config.DefaultAIConfig()
	log.Printf("Classifier config:")
	log.Printf("  Vision model: %s", aiConfig.Models.Vision)
	log.Printf("  Text model:   %s", aiConfig.Models.Text)
	if aiConfig.IsEnabled() {
		log.Println("  API key:      configured ✓")
	} else {
		log.Println("  API key:      NOT SET (using mock classifier)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	tenantRepo := repository.NewTenantRepo(db)
	policyRepo := repository.NewPolicyRepo(db)
	analysisRepo := repository.NewAnalysisRepo(db)

	// Initialize caches
	policyCache := cache.NewPolicyCache(rdb)
	statsCache := cache.NewStatsCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(tenantRepo, cfg.JWTSecret)
	classifier := service.NewClassifierService(aiConfig)
	policySvc := service.NewPolicyService(policyRepo, policyCache)
	analysisSvc := service.NewAnalysisService(classifier, policySvc, analysisRepo, statsCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	policySvc.SetBroadcaster(wsHub)
	analysisSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		AnalysisService: analysisSvc,
		PolicyService:   policySvc,
		Stats:           statsCache,
		WSHub:           wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/analysis/surface")
		log.Println("  POST /v1/analysis/tyres")
		log.Println("  POST /v1/analysis/inspection")
		log.Println("  GET  /v1/analysis")
		log.Println("  GET  /v1/analysis/{analysisId}")
		log.Println("  GET/PUT /v1/policy/tyres")
		log.Println("  GET  /v1/stats")
		log.Println("  WS   /v1/ws/dashboard")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
