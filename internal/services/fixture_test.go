package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	store         *memory.Store
	users         *UserService
	chats         *ChatService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewStore(), nil)
}

// newFixtureWith builds the services over store. When users is non-nil it
// replaces the store as the UserStore.
func newFixtureWith(t *testing.T, store *memory.Store, users UserStore) *fixture {
	t.Helper()
	if users == nil {
		users = store
	}
	fanout := NewFanoutApplier(users, 2, 0)
	return &fixture{
		store:         store,
		users:         NewUserService(users, store, fanout),
		chats:         NewChatService(users, store, store, fanout),
		notifications: NewNotificationService(store, users, store, fanout),
	}
}

func (f *fixture) user(t *testing.T, authID string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), models.CreateUserRequest{AuthID: authID, Username: authID})
	require.NoError(t, err)
	return u
}

func (f *fixture) reload(t *testing.T, u *models.User) *models.User {
	t.Helper()
	got, err := f.store.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) link(t *testing.T, u *models.User, field models.ListField, ids ...primitive.ObjectID) {
	t.Helper()
	require.NoError(t, f.store.ApplyListMutation(context.Background(), models.AddTo(u.ID, field, ids...)))
}

// befriend makes a and b confirmed friends of each other.
func (f *fixture) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	f.link(t, a, models.FieldFriends, b.ID)
	f.link(t, b, models.FieldFriends, a.ID)
}

var errStoreDown = errors.New("store unavailable")

// flakyUsers fails list mutations for the configured users.
type flakyUsers struct {
	*memory.Store
	mu    sync.Mutex
	fail  map[primitive.ObjectID]bool
	calls int
}

func newFlakyUsers(store *memory.Store) *flakyUsers {
	return &flakyUsers{Store: store, fail: make(map[primitive.ObjectID]bool)}
}

func (f *flakyUsers) breakUser(id primitive.ObjectID, broken bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[id] = broken
}

func (f *flakyUsers) ApplyListMutation(ctx context.Context, m models.ListMutation) error {
	f.mu.Lock()
	f.calls++
	broken := f.fail[m.UserID]
	f.mu.Unlock()
	if broken {
		return errStoreDown
	}
	return f.Store.ApplyListMutation(ctx, m)
}
