package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/bookingd/internal/auth"
	"github.com/courtside/bookingd/internal/cache"
	"github.com/courtside/bookingd/internal/config"
	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/handlers"
	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/middleware"
	"github.com/courtside/bookingd/internal/notify"
	"github.com/courtside/bookingd/internal/redis"
	"github.com/courtside/bookingd/internal/service"
	"github.com/courtside/bookingd/internal/storage"
)

func main() {
	log := logger.New("server")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	dbManager, err := database.NewDBManager(ctx, database.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(ctx); err != nil {
		log.Fatal("Failed to run migrations: %v", err)
	}

	var slotCache *cache.SlotCache
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		slotCache = cache.NewSlotCache(redisClient.Underlying(), cfg.Cache.TTL)
	} else {
		log.Info("REDIS_ADDR not set, running without listings cache")
	}

	userStore := storage.NewPostgresUserStore(dbManager)
	slotStore := storage.NewPostgresSlotStore(dbManager)
	ledgerStore := storage.NewPostgresLedgerStore(dbManager)
	tokenStore := storage.NewPostgresResetTokenStore(dbManager)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	notifier := notify.NewLogNotifier(cfg.Server.FrontendURL)

	authService := service.NewAuthService(userStore, tokenStore, jwtManager, notifier, cfg.Auth.ResetTokenTTL)
	userService := service.NewUserService(userStore)
	bookingService := service.NewBookingService(slotStore, slotCache)
	ledgerService := service.NewLedgerService(ledgerStore)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, authService)
	slotHandler := handlers.NewSlotHandler(bookingService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)

	authMW := middleware.NewAuthMiddleware(authService)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dbManager.Ping(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("/api/auth/reset-password", authHandler.ResetPassword)

	mux.HandleFunc("/api/users/profile", authMW.RequireAuth(userHandler.Profile))
	mux.HandleFunc("/api/users/all", authMW.RequireAuth(userHandler.ListAll))
	mux.HandleFunc("/api/users/admin/register", authMW.RequireAuth(userHandler.Register))
	mux.HandleFunc("/api/users/admin/reset-password", authMW.RequireAuth(userHandler.ResetPassword))

	mux.HandleFunc("/api/time-slots", authMW.RequireAuth(slotHandler.Slots))
	mux.HandleFunc("/api/time-slots/", authMW.RequireAuth(slotHandler.Slots))
	mux.HandleFunc("/api/time-slots/free", authMW.RequireAuth(slotHandler.ListFree))
	mux.HandleFunc("/api/time-slots/my", authMW.RequireAuth(slotHandler.ListMine))
	mux.HandleFunc("/api/time-slots/all", authMW.RequireAuth(slotHandler.ListAll))
	mux.HandleFunc("/api/time-slots/book", authMW.RequireAuth(slotHandler.Book))
	mux.HandleFunc("/api/time-slots/unbook", authMW.RequireAuth(slotHandler.Unbook))

	mux.HandleFunc("/api/transactions", authMW.RequireAuth(transactionHandler.Create))
	mux.HandleFunc("/api/transactions/create", authMW.RequireAuth(transactionHandler.Create))
	mux.HandleFunc("/api/transactions/all", authMW.RequireAuth(transactionHandler.ListAll))
	mux.HandleFunc("/api/transactions/user/", authMW.RequireAuth(transactionHandler.ListForUser))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error: %v", err)
	}
	log.Info("Server stopped")
}
