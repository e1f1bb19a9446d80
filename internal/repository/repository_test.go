package repository

import (
	"context"
	"testing"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func updateResponse(matched int32) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: matched}, {Key: "nModified", Value: matched}}
}

func TestUserRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		user, err := repo.CreateUser(ctx, &models.User{AuthID: "auth|1", Username: "alice", NewUser: true})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
		assert.NotNil(mt, user.PendingFriends)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate auth id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: authId_1",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.CreateUser(ctx, &models.User{AuthID: "auth|1", Username: "alice"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("get user by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		friend := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chatterbox.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "authId", Value: "auth|1"},
			{Key: "username", Value: "alice"},
			{Key: "friends", Value: bson.A{friend}},
			{Key: "newUser", Value: true},
		}))
		repo := NewUserRepository(mt.DB)

		user, err := repo.GetUserByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "alice", user.Username)
		assert.True(mt, user.IsFriend(friend))
	})

	mt.Run("get user not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chatterbox.users", mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		_, err := repo.GetUserByAuthID(ctx, "nobody")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get users by ids", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chatterbox.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "username", Value: "a"}},
			bson.D{{Key: "_id", Value: b}, {Key: "username", Value: "b"}},
		))
		repo := NewUserRepository(mt.DB)

		users, err := repo.GetUsersByIDs(ctx, []primitive.ObjectID{a, b})
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
	})

	mt.Run("get users by no ids skips the query", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		users, err := repo.GetUsersByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})

	mt.Run("update user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: id}, {Key: "username", Value: "renamed"}}},
		})
		repo := NewUserRepository(mt.DB)

		name := "renamed"
		user, err := repo.UpdateUser(ctx, id, models.UserPatch{Username: &name})
		require.NoError(mt, err)
		assert.Equal(mt, "renamed", user.Username)
	})

	mt.Run("apply list mutation", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))
		repo := NewUserRepository(mt.DB)

		err := repo.ApplyListMutation(ctx, models.AddTo(primitive.NewObjectID(), models.FieldFriends, primitive.NewObjectID()))
		assert.NoError(mt, err)
	})

	mt.Run("apply list mutation to missing user", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))
		repo := NewUserRepository(mt.DB)

		err := repo.ApplyListMutation(ctx, models.RemoveFrom(primitive.NewObjectID(), models.FieldNotifications, primitive.NewObjectID()))
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("invalid list mutation never reaches the server", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		err := repo.ApplyListMutation(ctx, models.AddTo(primitive.NewObjectID(), "nickname", primitive.NewObjectID()))
		assert.Error(mt, err)
	})
}

func TestListUpdate(t *testing.T) {
	user, v := primitive.NewObjectID(), primitive.NewObjectID()
	values := []primitive.ObjectID{v}

	add := listUpdate(models.AddTo(user, models.FieldChats, v))
	assert.Equal(t, bson.M{"$addToSet": bson.M{"chats": bson.M{"$each": values}}}, add)

	remove := listUpdate(models.RemoveFrom(user, models.FieldPendingFriends, v))
	assert.Equal(t, bson.M{"$pull": bson.M{"pendingFriends": bson.M{"$in": values}}}, remove)

	move := listUpdate(models.Move(user, models.FieldPendingChats, models.FieldChats, v))
	assert.Equal(t, bson.M{
		"$pull":     bson.M{"pendingChats": bson.M{"$in": values}},
		"$addToSet": bson.M{"chats": bson.M{"$each": values}},
	}, move)
}

func TestChatRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("get chats keeps requested order", func(mt *mtest.T) {
		a, b, missing := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chatterbox.chats", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}},
			bson.D{{Key: "_id", Value: b}},
		))
		repo := NewChatRepository(mt.DB)

		chats, err := repo.GetChatsByIDs(ctx, []primitive.ObjectID{b, missing, a})
		require.NoError(mt, err)
		require.Len(mt, chats, 2)
		assert.Equal(mt, b, chats[0].ID)
		assert.Equal(mt, a, chats[1].ID)
	})

	mt.Run("append message to missing chat", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))
		repo := NewChatRepository(mt.DB)

		err := repo.AppendMessage(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create chat", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewChatRepository(mt.DB)

		chat, err := repo.CreateChat(ctx, &models.Chat{Owner: primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.False(mt, chat.ID.IsZero())
		assert.NotNil(mt, chat.Messages)
	})
}

func TestNotificationRepository(t *testing.T) {
	mt := newMock(t)
	ctx := context.Background()

	mt.Run("get notification not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chatterbox.notifications", mtest.FirstBatch))
		repo := NewNotificationRepository(mt.DB)

		_, err := repo.GetNotificationByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create notification", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewNotificationRepository(mt.DB)

		n, err := repo.CreateNotification(ctx, &models.Notification{
			NotificationType: models.NotificationFriendRequest,
			From:             primitive.NewObjectID(),
			To:               primitive.NewObjectID(),
		})
		require.NoError(mt, err)
		assert.False(mt, n.ID.IsZero())
		assert.False(mt, n.CreatedAt.IsZero())
	})

	mt.Run("create notification with unknown type", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)

		_, err := repo.CreateNotification(ctx, &models.Notification{NotificationType: 7})
		assert.ErrorContains(mt, err, "invalid notification type 7")
	})

	mt.Run("mark resolved", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))
		repo := NewNotificationRepository(mt.DB)
		assert.NoError(mt, repo.MarkResolved(ctx, primitive.NewObjectID()))
	})

	mt.Run("mark resolved missing", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))
		repo := NewNotificationRepository(mt.DB)
		assert.ErrorIs(mt, repo.MarkResolved(ctx, primitive.NewObjectID()), ErrNotFound)
	})
}
