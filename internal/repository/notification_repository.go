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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(database.NotificationsCollection),
	}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	if !notif.NotificationType.Valid() {
		return nil, fmt.Errorf("invalid notification type %d", notif.NotificationType)
	}

	now := time.Now()
	notif.CreatedAt = now
	notif.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	notif.ID = insertedID
	return notif, nil
}

func (r *NotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notif models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notif); err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", translate(err))
	}
	return &notif, nil
}

// GetNotificationsByIDs returns the referenced notifications, newest first
func (r *NotificationRepository) GetNotificationsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Notification, error) {
	if len(ids) == 0 {
		return []models.Notification{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkResolved sets resolved to true
func (r *NotificationRepository) MarkResolved(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"resolved": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to resolve notification: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to resolve notification %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
