package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a conversation between its owner and a set of receivers. The owner is
// always one of the receivers.
type Chat struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Owner      primitive.ObjectID   `bson:"owner" json:"owner"`
	ChatName   string               `bson:"chatName,omitempty" json:"chatName,omitempty"`
	ChatAvatar string               `bson:"chatAvatar,omitempty" json:"chatAvatar,omitempty"`
	Receivers  []primitive.ObjectID `bson:"receivers" json:"receivers"`
	Messages   []primitive.ObjectID `bson:"messages" json:"messages"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

// HasReceiver reports whether id takes part in the chat.
func (c *Chat) HasReceiver(id primitive.ObjectID) bool {
	return ContainsID(c.Receivers, id)
}

// ChatView is a chat with its messages expanded, newest first.
type ChatView struct {
	ID         primitive.ObjectID   `json:"id"`
	Owner      primitive.ObjectID   `json:"owner"`
	ChatName   string               `json:"chatName,omitempty"`
	ChatAvatar string               `json:"chatAvatar,omitempty"`
	Receivers  []primitive.ObjectID `json:"receivers"`
	Messages   []Message            `json:"messages"`
	CreatedAt  time.Time            `json:"created_at"`
}

func NewChatView(chat Chat, messages []Message) ChatView {
	if messages == nil {
		messages = []Message{}
	}
	return ChatView{
		ID:         chat.ID,
		Owner:      chat.Owner,
		ChatName:   chat.ChatName,
		ChatAvatar: chat.ChatAvatar,
		Receivers:  chat.Receivers,
		Messages:   messages,
		CreatedAt:  chat.CreatedAt,
	}
}

// UserChats is the chat list of a single user.
type UserChats struct {
	UserID       primitive.ObjectID `json:"userId"`
	Chats        []ChatView         `json:"chats"`
	PendingChats []ChatView         `json:"pendingChats"`
}

// CreateChatRequest is the body of POST /chats.
type CreateChatRequest struct {
	OwnerID      string   `json:"ownerID" validate:"required,len=24,hexadecimal"`
	RecipientsID []string `json:"recipientsID" validate:"required,min=1,max=256,dive,len=24,hexadecimal"`
	ChatName     string   `json:"chatName,omitempty" validate:"omitempty,max=100"`
	ChatAvatar   string   `json:"chatAvatar,omitempty" validate:"omitempty,max=2048"`
}
