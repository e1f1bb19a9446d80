// Package router builds the HTTP route table.
package router

import (
	"net/http"

	"github.com/Dias221467/chatterbox/internal/handlers"
	"github.com/Dias221467/chatterbox/pkg/jwt"
	"github.com/Dias221467/chatterbox/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Handlers groups the handlers served by the router.
type Handlers struct {
	Users         *handlers.UserHandler
	Chats         *handlers.ChatHandler
	Notifications *handlers.NotificationHandler
	Health        *handlers.HealthHandler
}

// Auth configures token checks on /api/v1. Disabled skips them entirely.
type Auth struct {
	Disabled bool
	Secret   string
	Options  jwt.Options
}

func New(h Handlers, auth Auth) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", h.Health.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if auth.Disabled {
		log.Warn("Authentication is disabled; /api/v1 is open")
	} else {
		api.Use(middleware.AuthMiddleware(auth.Secret, auth.Options))
	}

	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("", h.Users.CreateUserHandler).Methods(http.MethodPost)
	users.HandleFunc("/{authId}", h.Users.GetUserHandler).Methods(http.MethodGet)
	users.HandleFunc("/{authId}", h.Users.UpdateUserHandler).Methods(http.MethodPut)
	users.HandleFunc("/{authId}/newUser", h.Users.CompleteProfileHandler).Methods(http.MethodPut)
	users.HandleFunc("/{authId}/chats", h.Users.GetUserChatsHandler).Methods(http.MethodGet)
	users.HandleFunc("/{authId}/friends", h.Users.GetFriendsHandler).Methods(http.MethodGet)
	users.HandleFunc("/{authId}/notifications", h.Users.GetNotificationsHandler).Methods(http.MethodGet)

	chats := api.PathPrefix("/chats").Subrouter()
	chats.HandleFunc("", h.Chats.CreateChatHandler).Methods(http.MethodPost)
	chats.HandleFunc("/{id}", h.Chats.GetChatHandler).Methods(http.MethodGet)
	chats.HandleFunc("/{id}/messages", h.Chats.SendMessageHandler).Methods(http.MethodPost)

	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.HandleFunc("/addFriend", h.Notifications.SendFriendRequestHandler).Methods(http.MethodPost)
	notifications.HandleFunc("/{id}", h.Notifications.AcceptFriendRequestHandler).Methods(http.MethodPut)
	notifications.HandleFunc("/{id}/deny", h.Notifications.DenyFriendRequestHandler).Methods(http.MethodPut)

	return router
}
