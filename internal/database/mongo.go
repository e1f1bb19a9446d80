package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/chatterbox/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the repositories.
const (
	UsersCollection         = "users"
	ChatsCollection         = "chats"
	MessagesCollection      = "messages"
	NotificationsCollection = "notifications"
)

// ConnectDB connects to MongoDB, verifies the connection and returns the configured database.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// Disconnect closes the client behind db.
func Disconnect(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		logrus.WithError(err).Error("Error closing MongoDB connection")
		return
	}
	logrus.Info("MongoDB connection closed")
}

// Indexes lists the indexes every collection needs.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "authId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ChatsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "receivers", Value: 1}}},
		},
		MessagesCollection: {
			{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "from", Value: 1}}},
		},
	}
}

// EnsureIndexes creates the indexes returned by Indexes. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}
	logrus.Info("MongoDB indexes ensured")
	return nil
}

// Pinger checks the server behind a database handle.
type Pinger struct {
	db *mongo.Database
}

func NewPinger(db *mongo.Database) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.Client().Ping(ctx, nil)
}
