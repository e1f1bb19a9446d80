package handlers

import (
	"net/http"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
	actors  actors
}

func NewNotificationHandler(service *services.NotificationService, users *services.UserService) *NotificationHandler {
	return &NotificationHandler{Service: service, actors: actors{users: users}}
}

func parseParties(body models.FriendRequestBody) (to, from primitive.ObjectID, err error) {
	if to, err = services.ParseID(body.To); err != nil {
		return
	}
	from, err = services.ParseID(body.From)
	return
}

// POST /notifications/addFriend
func (h *NotificationHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body models.FriendRequestBody
	if err := decodeAndValidate(r, &body); err != nil {
		log.WithError(err).Warn("Invalid friend request body")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, from, err := parseParties(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.actors.requireUser(w, r, from) {
		return
	}

	notif, err := h.Service.SendFriendRequest(r.Context(), to, from)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"notification": notif})
}

// PUT /notifications/{id}
func (h *NotificationHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	notifID, err := services.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var body models.FriendRequestBody
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, from, err := parseParties(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.actors.requireUser(w, r, to) {
		return
	}

	notif, err := h.Service.AcceptFriendRequest(r.Context(), notifID, to, from)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notification": notif})
}

// PUT /notifications/{id}/deny
func (h *NotificationHandler) DenyFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	notifID, err := services.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var body models.DenyRequestBody
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := services.ParseID(body.To)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.actors.requireUser(w, r, to) {
		return
	}

	if err := h.Service.DenyFriendRequest(r.Context(), notifID, to); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request denied"})
}
