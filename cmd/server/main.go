package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velmart/chat/internal/config"
	"github.com/velmart/chat/internal/database"
	postgresrepo "github.com/velmart/chat/internal/repository/postgres"
	"github.com/velmart/chat/internal/service"
	"github.com/velmart/chat/internal/transport/http/handlers"
	"github.com/velmart/chat/internal/transport/http/middleware"
	"github.com/velmart/chat/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	chatService := service.NewChatService(messageRepo, userRepo)

	// Live delivery
	registry := ws.NewRegistry()
	chatService.SetNotifier(ws.NewFanout(registry))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Live chat (token auth via query param)
	mux.HandleFunc("GET /ws/chat", ws.ServeWS(registry, chatService, cfg.JWTSecret))

	// Protected - conversation reads
	mux.Handle("GET /api/v1/chats", auth(http.HandlerFunc(chatHandler.ListConversations)))
	mux.Handle("GET /api/v1/chats/{id}/messages", auth(http.HandlerFunc(chatHandler.History)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
