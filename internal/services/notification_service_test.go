package services

import (
	"context"
	"testing"

	"github.com/Dias221467/chatterbox/internal/metrics"
	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendFriendRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	before := testutil.ToFloat64(metrics.FriendRequests.WithLabelValues(metrics.OutcomeSent))

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFriendRequest, notif.NotificationType)
	assert.Equal(t, a.ID, notif.From)
	assert.Equal(t, b.ID, notif.To)
	assert.False(t, notif.Resolved)
	assert.Equal(t, "a sent you a friend request", notif.Title)

	assert.Equal(t, []primitive.ObjectID{notif.ID}, f.reload(t, b).Notifications)
	assert.Equal(t, []primitive.ObjectID{b.ID}, f.reload(t, a).PendingFriends)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FriendRequests.WithLabelValues(metrics.OutcomeSent)))

	inbox, err := f.notifications.ListNotifications(ctx, "b")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, notif.ID, inbox[0].ID)
}

func TestSendFriendRequestGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	f.befriend(t, a, c)

	_, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		to, from primitive.ObjectID
		want     error
	}{
		{"self", a.ID, a.ID, ErrSelfFriendRequest},
		{"already pending", b.ID, a.ID, ErrFriendRequestPending},
		{"already friends", c.ID, a.ID, ErrAlreadyFriends},
		{"unknown recipient", primitive.NewObjectID(), a.ID, ErrUserNotFound},
		{"unknown sender", b.ID, primitive.NewObjectID(), ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.notifications.SendFriendRequest(ctx, tt.to, tt.from)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.reload(t, b).Notifications, 1)
}

func TestAcceptFriendRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	accepted, err := f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Resolved)

	gotA, gotB := f.reload(t, a), f.reload(t, b)
	assert.True(t, gotA.IsFriend(b.ID))
	assert.True(t, gotB.IsFriend(a.ID))
	assert.Empty(t, gotA.PendingFriends)

	stored, err := f.store.GetNotificationByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.True(t, stored.Resolved)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotificationResolved)
}

func TestAcceptFriendRequestPromotesPendingChats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	y := f.user(t, "y")
	z := f.user(t, "z")
	f.link(t, owner, models.FieldPendingFriends, z.ID)

	notif, err := f.notifications.SendFriendRequest(ctx, y.ID, owner.ID)
	require.NoError(t, err)

	fromOwner, err := f.chats.CreateChat(ctx, owner.ID, []primitive.ObjectID{y.ID}, ChatOptions{})
	require.NoError(t, err)
	withZ, err := f.chats.CreateChat(ctx, owner.ID, []primitive.ObjectID{y.ID, z.ID}, ChatOptions{})
	require.NoError(t, err)

	// A pending chat owned by someone else stays pending.
	other := f.user(t, "other")
	f.link(t, other, models.FieldPendingFriends, y.ID)
	foreign, err := f.chats.CreateChat(ctx, other.ID, []primitive.ObjectID{y.ID}, ChatOptions{})
	require.NoError(t, err)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, y.ID, owner.ID)
	require.NoError(t, err)

	got := f.reload(t, y)
	assert.Equal(t, []primitive.ObjectID{fromOwner.ID, withZ.ID}, got.Chats)
	assert.Equal(t, []primitive.ObjectID{foreign.ID}, got.PendingChats)
	assert.Equal(t, []primitive.ObjectID{withZ.ID}, f.reload(t, z).PendingChats)

	_, err = f.chats.SendMessage(ctx, fromOwner.ID, y.ID, "hello")
	assert.NoError(t, err)
}

func TestAcceptFriendRequestRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	_, err = f.notifications.AcceptFriendRequest(ctx, primitive.NewObjectID(), b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, c.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotificationMismatch)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotificationMismatch)

	assert.Empty(t, f.reload(t, a).Friends)
	assert.Empty(t, f.reload(t, b).Friends)
}

func TestAcceptFriendRequestRetryAfterPartialFanout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	flaky := newFlakyUsers(store)
	f := newFixtureWith(t, store, flaky)
	a := f.user(t, "a")
	b := f.user(t, "b")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	flaky.breakUser(a.ID, true)
	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	var perr *PartialApplyError
	require.ErrorAs(t, err, &perr)

	stored, err := f.store.GetNotificationByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.False(t, stored.Resolved)

	flaky.breakUser(a.ID, false)
	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, f.reload(t, a).IsFriend(b.ID))
	assert.True(t, f.reload(t, b).IsFriend(a.ID))
}

func TestSendFriendRequestRetryAfterPartialFanout(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	flaky := newFlakyUsers(store)
	f := newFixtureWith(t, store, flaky)
	a := f.user(t, "a")
	b := f.user(t, "b")

	flaky.breakUser(b.ID, true)
	_, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	var perr *PartialApplyError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, f.reload(t, a).PendingFriends)
	assert.Empty(t, f.reload(t, b).Notifications)

	flaky.breakUser(b.ID, false)
	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{notif.ID}, f.reload(t, b).Notifications)
	assert.Equal(t, []primitive.ObjectID{b.ID}, f.reload(t, a).PendingFriends)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, f.reload(t, a).IsFriend(b.ID))
}

func TestSendFriendRequestReusesDeliveredNotification(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	flaky := newFlakyUsers(store)
	f := newFixtureWith(t, store, flaky)
	a := f.user(t, "a")
	b := f.user(t, "b")

	// The inbox write lands but the sender's marker does not.
	flaky.breakUser(a.ID, true)
	_, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.Error(t, err)
	delivered := f.reload(t, b).Notifications
	require.Len(t, delivered, 1)
	assert.Empty(t, f.reload(t, a).PendingFriends)

	flaky.breakUser(a.ID, false)
	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, delivered[0], notif.ID)
	assert.Equal(t, delivered, f.reload(t, b).Notifications)
	assert.Equal(t, []primitive.ObjectID{b.ID}, f.reload(t, a).PendingFriends)
}

func TestDenyFriendRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.FriendRequests.WithLabelValues(metrics.OutcomeDenied))
	require.NoError(t, f.notifications.DenyFriendRequest(ctx, notif.ID, b.ID))

	assert.Empty(t, f.reload(t, b).Notifications)
	assert.Equal(t, []primitive.ObjectID{b.ID}, f.reload(t, a).PendingFriends)
	assert.Empty(t, f.reload(t, a).Friends)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.FriendRequests.WithLabelValues(metrics.OutcomeDenied)))

	// Denying again is harmless.
	assert.NoError(t, f.notifications.DenyFriendRequest(ctx, notif.ID, b.ID))
}

func TestDeniedFriendRequestCannotBeAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, f.notifications.DenyFriendRequest(ctx, notif.ID, b.ID))

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotificationDenied)

	gotA, gotB := f.reload(t, a), f.reload(t, b)
	assert.Empty(t, gotA.Friends)
	assert.Empty(t, gotB.Friends)
	assert.Equal(t, []primitive.ObjectID{b.ID}, gotA.PendingFriends)

	stored, err := f.store.GetNotificationByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.False(t, stored.Resolved)
}

func TestDenyFriendRequestErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	notif, err := f.notifications.SendFriendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)

	err = f.notifications.DenyFriendRequest(ctx, primitive.NewObjectID(), b.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	err = f.notifications.DenyFriendRequest(ctx, notif.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = f.notifications.DenyFriendRequest(ctx, notif.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotificationMismatch)

	_, err = f.notifications.AcceptFriendRequest(ctx, notif.ID, b.ID, a.ID)
	require.NoError(t, err)
	err = f.notifications.DenyFriendRequest(ctx, notif.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotificationResolved)
}
