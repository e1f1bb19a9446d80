package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat entry. Messages are never edited after creation.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Message   string             `bson:"message" json:"message"`
	ChatID    primitive.ObjectID `bson:"chatId" json:"chatId"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// SendMessageRequest is the body of POST /chats/{id}/messages.
type SendMessageRequest struct {
	SenderID string `json:"sender" validate:"required,len=24,hexadecimal"`
	Message  string `json:"message" validate:"required,max=4096"`
}
