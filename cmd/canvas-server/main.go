package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"gitlab.com/secp/services/canvas/internal/canvas"
	"gitlab.com/secp/services/canvas/internal/config"
	"gitlab.com/secp/services/canvas/internal/ratelimit"
	"gitlab.com/secp/services/canvas/internal/transport"
)

type Server struct {
	cfg           *config.Config
	hub           *transport.Hub
	canvasService *canvas.Service
	rateLimiter   *ratelimit.Limiter
}

func main() {
	log.Println("[Server] Starting canvas service...")

	cfg := config.LoadConfig()

	// Redis is optional; without it connect rate limiting is disabled and
	// everything else works unchanged.
	var rateLimiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[Server] Redis unreachable at %s, rate limiting will fail open: %v", cfg.RedisAddr, err)
		}
		cancel()
		rateLimiter = ratelimit.NewLimiter(rdb, cfg.ConnectRateLimit, cfg.ConnectRateWindow)
	}

	hub := transport.NewHub()
	canvasService := canvas.NewService(hub, cfg.HistoryLimit)

	server := &Server{
		cfg:           cfg,
		hub:           hub,
		canvasService: canvasService,
		rateLimiter:   rateLimiter,
	}

	router := server.setupRouter()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[Server] HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("[Server] Server forced to shutdown: %v", err)
	}
	server.hub.Shutdown()

	log.Println("[Server] Server exited gracefully")
}

func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()

	// CORS middleware
	router.Use(corsMiddleware)

	// Handle OPTIONS preflight requests for all routes
	router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Canvas service is healthy"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.canvasService.Stats())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	transport.ServeWS(s.hub, s.canvasService, s.rateLimiter, float64(s.cfg.CursorRateLimit), w, r)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
