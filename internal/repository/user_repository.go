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

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(database.UsersCollection),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.InitLists()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).WithField("authId", user.AuthID).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %w", translate(err))
	}
	return &user, nil
}

// GetUserByAuthID retrieves a user by the identifier issued by the identity provider.
func (r *UserRepository) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"authId": authID}).Decode(&user); err != nil {
		logrus.WithFields(logrus.Fields{
			"authId": authID,
			"error":  err,
		}).Warn("Failed to find user by auth ID")
		return nil, fmt.Errorf("failed to find user by auth id: %w", translate(err))
	}
	return &user, nil
}

// GetUsersByIDs fetches every user whose ID is in ids. Missing IDs are simply absent from the result.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the profile patch and returns the updated document.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Firstname != nil {
		set["firstname"] = *patch.Firstname
	}
	if patch.Lastname != nil {
		set["lastname"] = *patch.Lastname
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.NewUser != nil {
		set["newUser"] = *patch.NewUser
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, fmt.Errorf("failed to update user: %w", translate(err))
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return &user, nil
}

// ApplyListMutation applies one relationship-list change as a single-document update.
func (r *UserRepository) ApplyListMutation(ctx context.Context, m models.ListMutation) error {
	if err := m.Validate(); err != nil {
		return err
	}

	update := listUpdate(m)
	update["$set"] = bson.M{"updated_at": time.Now()}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": m.UserID}, update)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":   m.UserID.Hex(),
			"mutation": m.String(),
			"error":    err,
		}).Error("Failed to apply list mutation")
		return fmt.Errorf("failed to update %s of user %s: %w", m.Field, m.UserID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update %s of user %s: %w", m.Field, m.UserID.Hex(), ErrNotFound)
	}
	return nil
}

// listUpdate builds the update document for m. $addToSet keeps the list free of
// duplicates and appends in order; $pull removes every occurrence.
func listUpdate(m models.ListMutation) bson.M {
	switch m.Op {
	case models.OpRemove:
		return bson.M{"$pull": bson.M{string(m.Field): bson.M{"$in": m.Values}}}
	case models.OpMove:
		return bson.M{
			"$pull":     bson.M{string(m.Field): bson.M{"$in": m.Values}},
			"$addToSet": bson.M{string(m.To): bson.M{"$each": m.Values}},
		}
	default:
		return bson.M{"$addToSet": bson.M{string(m.Field): bson.M{"$each": m.Values}}}
	}
}
