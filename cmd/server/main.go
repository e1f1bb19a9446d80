package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/chatterbox/internal/config"
	"github.com/Dias221467/chatterbox/internal/database"
	"github.com/Dias221467/chatterbox/internal/handlers"
	"github.com/Dias221467/chatterbox/internal/repository"
	"github.com/Dias221467/chatterbox/internal/repository/memory"
	"github.com/Dias221467/chatterbox/internal/router"
	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/Dias221467/chatterbox/pkg/jwt"
	"github.com/Dias221467/chatterbox/pkg/logger"
	"github.com/rs/cors"
)

// stores bundles the store contracts used to build the services.
type stores struct {
	users         services.UserStore
	chats         services.ChatStore
	messages      services.MessageStore
	notifications services.NotificationStore
	health        handlers.Pinger
	close         func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreBackend == config.StoreMemory {
		logger.Log.Warn("Using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &stores{users: s, chats: s, messages: s, notifications: s, health: s, close: func() {}}, nil
	}

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		database.Disconnect(db)
		return nil, err
	}
	return &stores{
		users:         repository.NewUserRepository(db),
		chats:         repository.NewChatRepository(db),
		messages:      repository.NewMessageRepository(db),
		notifications: repository.NewNotificationRepository(db),
		health:        database.NewPinger(db),
		close:         func() { database.Disconnect(db) },
	}, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.InitLogger("info")
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Database connection error")
	}
	defer st.close()

	// --- Services ---
	fanout := services.NewFanoutApplier(st.users, cfg.FanoutMaxAttempts, cfg.FanoutRetryInterval)
	userService := services.NewUserService(st.users, st.notifications, fanout)
	chatService := services.NewChatService(st.users, st.chats, st.messages, fanout)
	notificationService := services.NewNotificationService(st.notifications, st.users, st.chats, fanout)

	// --- Handlers ---
	r := router.New(router.Handlers{
		Users:         handlers.NewUserHandler(userService, chatService, notificationService),
		Chats:         handlers.NewChatHandler(chatService, userService),
		Notifications: handlers.NewNotificationHandler(notificationService, userService),
		Health:        handlers.NewHealthHandler(st.health),
	}, router.Auth{
		Disabled: cfg.AuthDisabled,
		Secret:   cfg.JWTSecret,
		Options:  jwt.Options{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience},
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}
