package handlers

import (
	"net/http"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/Dias221467/chatterbox/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service     *services.UserService
	ChatService *services.ChatService
	Notifs      *services.NotificationService
	actors      actors
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, chats *services.ChatService, notifs *services.NotificationService) *UserHandler {
	return &UserHandler{
		Service:     service,
		ChatService: chats,
		Notifs:      notifs,
		actors:      actors{users: service},
	}
}

// CreateUserHandler registers the caller. POST /users
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		log.WithError(err).Warn("Failed to decode user creation request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.actors.requireAuthID(w, r, req.AuthID) {
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

// GetUserHandler returns the full document to its owner and the public profile
// to anyone else. GET /users/{authId}
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	authID := mux.Vars(r)["authId"]

	user, err := h.Service.GetUserByAuthID(r.Context(), authID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	claims := middleware.GetUserFromContext(r.Context())
	if claims != nil && claims.AuthID != authID {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.Public()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateUserHandler changes profile fields. PUT /users/{authId}
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	authID := mux.Vars(r)["authId"]
	if !h.actors.requireAuthID(w, r, authID) {
		return
	}

	var patch models.UserPatch
	if err := decodeAndValidate(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), authID, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// CompleteProfileHandler finishes onboarding. PUT /users/{authId}/newUser
func (h *UserHandler) CompleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	authID := mux.Vars(r)["authId"]
	if !h.actors.requireAuthID(w, r, authID) {
		return
	}

	var req models.CompleteProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	invitees, err := services.ParseIDs(req.PendingFriends)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Service.CompleteProfile(r.Context(), authID, req.UserPatch, invitees)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// GetUserChatsHandler lists the caller's chats with their latest message.
// GET /users/{authId}/chats
func (h *UserHandler) GetUserChatsHandler(w http.ResponseWriter, r *http.Request) {
	authID := mux.Vars(r)["authId"]
	if !h.actors.requireAuthID(w, r, authID) {
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), authID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

// GetFriendsHandler lists confirmed friends. GET /users/{authId}/friends
func (h *UserHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	friends, err := h.Service.ListFriends(r.Context(), mux.Vars(r)["authId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// GetNotificationsHandler lists the caller's inbox. GET /users/{authId}/notifications
func (h *UserHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	authID := mux.Vars(r)["authId"]
	if !h.actors.requireAuthID(w, r, authID) {
		return
	}

	notifications, err := h.Notifs.ListNotifications(r.Context(), authID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}
