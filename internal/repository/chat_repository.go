package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/chatterbox/internal/database"
	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ChatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{collection: db.Collection(database.ChatsCollection)}
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat *models.Chat) (*models.Chat, error) {
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.Messages == nil {
		chat.Messages = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, chat)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert chat")
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	chat.ID = insertedID
	return chat, nil
}

func (r *ChatRepository) GetChatByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to find chat: %w", translate(err))
	}
	return &chat, nil
}

// GetChatsByIDs returns the chats in the order of ids, skipping IDs that do not resolve.
func (r *ChatRepository) GetChatsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Chat, error) {
	if len(ids) == 0 {
		return []models.Chat{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.Chat
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}

	byID := make(map[primitive.ObjectID]models.Chat, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	chats := make([]models.Chat, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			chats = append(chats, c)
		}
	}
	return chats, nil
}

// AppendMessage records messageID at the end of the chat's message list.
func (r *ChatRepository) AppendMessage(ctx context.Context, chatID, messageID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{
			"$addToSet": bson.M{"messages": messageID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append message to chat %s: %w", chatID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to append message to chat %s: %w", chatID.Hex(), ErrNotFound)
	}
	return nil
}
