package handlers

import (
	"net/http"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ChatHandler struct {
	Service *services.ChatService
	actors  actors
}

func NewChatHandler(service *services.ChatService, users *services.UserService) *ChatHandler {
	return &ChatHandler{Service: service, actors: actors{users: users}}
}

// POST /chats
func (h *ChatHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := decodeAndValidate(r, &req); err != nil {
		log.WithError(err).Warn("Invalid chat creation request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID, err := services.ParseID(req.OwnerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recipients, err := services.ParseIDs(req.RecipientsID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.actors.requireUser(w, r, ownerID) {
		return
	}

	chat, err := h.Service.CreateChat(r.Context(), ownerID, recipients, services.ChatOptions{
		Name:   req.ChatName,
		Avatar: req.ChatAvatar,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"chat": chat})
}

// GET /chats/{id}
func (h *ChatHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := services.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	callerID, err := h.actors.callerID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	chat, err := h.Service.GetChat(r.Context(), chatID, callerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chat": chat})
}

// POST /chats/{id}/messages
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := services.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req models.SendMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	senderID, err := services.ParseID(req.SenderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !h.actors.requireUser(w, r, senderID) {
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), chatID, senderID, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}
