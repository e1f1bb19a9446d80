package services

import (
	"context"

	"github.com/Dias221467/chatterbox/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the identity store contract. Lookups of missing documents return
// an error wrapping repository.ErrNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error)
	ApplyListMutation(ctx context.Context, m models.ListMutation) error
}

type ChatStore interface {
	CreateChat(ctx context.Context, chat *models.Chat) (*models.Chat, error)
	GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	GetChatsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Chat, error)
	AppendMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	// GetMessagesByChat returns the messages newest first.
	GetMessagesByChat(ctx context.Context, chatID primitive.ObjectID) ([]models.Message, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	GetNotificationsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Notification, error)
	MarkResolved(ctx context.Context, id primitive.ObjectID) error
}
