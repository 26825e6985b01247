package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Samuliej/mobilechat/internal/config"
	"github.com/Samuliej/mobilechat/internal/database"
	"github.com/Samuliej/mobilechat/internal/observability/metrics"
	postgresrepo "github.com/Samuliej/mobilechat/internal/repository/postgres"
	"github.com/Samuliej/mobilechat/internal/service"
	"github.com/Samuliej/mobilechat/internal/transport/http/handlers"
	"github.com/Samuliej/mobilechat/internal/transport/http/middleware"
	"github.com/Samuliej/mobilechat/internal/transport/ws"
)

func run(ctx context.Context) error {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("Connected to database")

	metrics.MustRegister()

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendRepo := postgresrepo.NewFriendshipRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)
	msgRepo := postgresrepo.NewMessageRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	friendService := service.NewFriendshipService(friendRepo, userRepo)
	chatService := service.NewChatService(convRepo, msgRepo, friendRepo, userRepo)
	feedService := service.NewFeedService(postRepo)

	// WebSocket hub + notifier
	hub := ws.NewHub()
	notifier := ws.NewHubNotifier(hub)
	friendService.SetNotifier(notifier)
	chatService.SetNotifier(notifier)

	relay := &ws.Relay{
		Friendships: friendService,
		Chat:        chatService,
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendshipHandler(friendService)
	chatHandler := handlers.NewChatHandler(chatService)
	feedHandler := handlers.NewFeedHandler(feedService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// WebSocket
	mux.Handle("GET /ws", ws.ServeWS(hub, relay, cfg.JWTSecret))

	// Protected - Users
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PATCH /api/v1/users/me", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("GET /api/v1/users/search", auth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.Get)))

	// Protected - Friendships
	mux.Handle("POST /api/v1/friends/requests", auth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("GET /api/v1/friends/requests/incoming", auth(http.HandlerFunc(friendHandler.ListIncoming)))
	mux.Handle("GET /api/v1/friends/requests/outgoing", auth(http.HandlerFunc(friendHandler.ListOutgoing)))
	mux.Handle("POST /api/v1/friends/requests/{id}/accept", auth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("POST /api/v1/friends/requests/{id}/decline", auth(http.HandlerFunc(friendHandler.DeclineRequest)))
	mux.Handle("DELETE /api/v1/friends/requests/{id}", auth(http.HandlerFunc(friendHandler.CancelRequest)))
	mux.Handle("GET /api/v1/friends", auth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("DELETE /api/v1/friends/{userId}", auth(http.HandlerFunc(friendHandler.RemoveFriend)))

	// Protected - Conversations
	mux.Handle("POST /api/v1/conversations", auth(http.HandlerFunc(chatHandler.GetOrCreateConversation)))
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(chatHandler.ListConversations)))
	mux.Handle("DELETE /api/v1/conversations/{id}", auth(http.HandlerFunc(chatHandler.DeleteConversation)))
	mux.Handle("POST /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(chatHandler.SendMessage)))
	mux.Handle("GET /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(chatHandler.ListMessages)))

	// Protected - Feed
	mux.Handle("POST /api/v1/posts", auth(http.HandlerFunc(feedHandler.CreatePost)))
	mux.Handle("GET /api/v1/posts", auth(http.HandlerFunc(feedHandler.ListFeed)))
	mux.Handle("GET /api/v1/posts/{id}", auth(http.HandlerFunc(feedHandler.GetPost)))
	mux.Handle("DELETE /api/v1/posts/{id}", auth(http.HandlerFunc(feedHandler.DeletePost)))
	mux.Handle("POST /api/v1/posts/{id}/like", auth(http.HandlerFunc(feedHandler.LikePost)))
	mux.Handle("DELETE /api/v1/posts/{id}/like", auth(http.HandlerFunc(feedHandler.UnlikePost)))
	mux.Handle("POST /api/v1/posts/{id}/comments", auth(http.HandlerFunc(feedHandler.AddComment)))
	mux.Handle("GET /api/v1/posts/{id}/comments", auth(http.HandlerFunc(feedHandler.ListComments)))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: middleware.CORS(mux),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
