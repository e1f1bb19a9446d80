// Package memory keeps users, chats, messages and notifications in process
// memory. It mirrors the semantics of the MongoDB repositories, including
// set-union list updates, and is used by tests and the memory store backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]*models.User
	authIndex     map[string]primitive.ObjectID
	chats         map[primitive.ObjectID]*models.Chat
	messages      map[primitive.ObjectID]*models.Message
	notifications map[primitive.ObjectID]*models.Notification
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]*models.User),
		authIndex:     make(map[string]primitive.ObjectID),
		chats:         make(map[primitive.ObjectID]*models.Chat),
		messages:      make(map[primitive.ObjectID]*models.Message),
		notifications: make(map[primitive.ObjectID]*models.Notification),
		now:           time.Now,
	}
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.authIndex[user.AuthID]; taken {
		return nil, fmt.Errorf("failed to insert user: %w", repository.ErrDuplicateKey)
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	} else if _, taken := s.users[user.ID]; taken {
		return nil, fmt.Errorf("failed to insert user: %w", repository.ErrDuplicateKey)
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.InitLists()

	stored := copyUser(user)
	s.users[stored.ID] = stored
	s.authIndex[stored.AuthID] = stored.ID
	return copyUser(stored), nil
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id: %w", repository.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByAuthID(_ context.Context, authID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.authIndex[authID]
	if !ok {
		return nil, fmt.Errorf("failed to find user by auth id: %w", repository.ErrNotFound)
	}
	return copyUser(s.users[id]), nil
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for id := range models.IDSet(ids) {
		if u, ok := s.users[id]; ok {
			users = append(users, *copyUser(u))
		}
	}
	return users, nil
}

func (s *Store) UpdateUser(_ context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to update user: %w", repository.ErrNotFound)
	}
	patch.Apply(u)
	u.UpdatedAt = s.now()
	return copyUser(u), nil
}

func (s *Store) ApplyListMutation(_ context.Context, m models.ListMutation) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[m.UserID]
	if !ok {
		return fmt.Errorf("failed to update %s of user %s: %w", m.Field, m.UserID.Hex(), repository.ErrNotFound)
	}

	switch m.Op {
	case models.OpAdd:
		set(u, m.Field, union(list(u, m.Field), m.Values))
	case models.OpRemove:
		set(u, m.Field, without(list(u, m.Field), m.Values))
	case models.OpMove:
		set(u, m.Field, without(list(u, m.Field), m.Values))
		set(u, m.To, union(list(u, m.To), m.Values))
	}
	u.UpdatedAt = s.now()
	return nil
}

// ---- chats ----

func (s *Store) CreateChat(_ context.Context, chat *models.Chat) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	now := s.now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.Messages == nil {
		chat.Messages = []primitive.ObjectID{}
	}
	s.chats[chat.ID] = copyChat(chat)
	return copyChat(chat), nil
}

func (s *Store) GetChatByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("failed to find chat: %w", repository.ErrNotFound)
	}
	return copyChat(c), nil
}

func (s *Store) GetChatsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := []models.Chat{}
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if c, ok := s.chats[id]; ok {
			chats = append(chats, *copyChat(c))
		}
	}
	return chats, nil
}

func (s *Store) AppendMessage(_ context.Context, chatID, messageID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return fmt.Errorf("failed to append message to chat %s: %w", chatID.Hex(), repository.ErrNotFound)
	}
	c.Messages = union(c.Messages, []primitive.ObjectID{messageID})
	c.UpdatedAt = s.now()
	return nil
}

// ---- messages ----

func (s *Store) CreateMessage(_ context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	stored := *msg
	s.messages[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *Store) GetMessagesByChat(_ context.Context, chatID primitive.ObjectID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := []models.Message{}
	for _, m := range s.messages {
		if m.ChatID == chatID {
			messages = append(messages, *m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].ID.Hex() > messages[j].ID.Hex()
		}
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	return messages, nil
}

// ---- notifications ----

func (s *Store) CreateNotification(_ context.Context, notif *models.Notification) (*models.Notification, error) {
	if !notif.NotificationType.Valid() {
		return nil, fmt.Errorf("invalid notification type %d", notif.NotificationType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}
	now := s.now()
	notif.CreatedAt = now
	notif.UpdatedAt = now
	stored := *notif
	s.notifications[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *Store) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, fmt.Errorf("failed to find notification: %w", repository.ErrNotFound)
	}
	out := *n
	return &out, nil
}

func (s *Store) GetNotificationsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := []models.Notification{}
	for id := range models.IDSet(ids) {
		if n, ok := s.notifications[id]; ok {
			notifications = append(notifications, *n)
		}
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID.Hex() > notifications[j].ID.Hex()
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *Store) MarkResolved(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return fmt.Errorf("failed to resolve notification %s: %w", id.Hex(), repository.ErrNotFound)
	}
	n.Resolved = true
	n.UpdatedAt = s.now()
	return nil
}

// ---- helpers ----

func list(u *models.User, f models.ListField) []primitive.ObjectID {
	switch f {
	case models.FieldFriends:
		return u.Friends
	case models.FieldPendingFriends:
		return u.PendingFriends
	case models.FieldChats:
		return u.Chats
	case models.FieldPendingChats:
		return u.PendingChats
	case models.FieldNotifications:
		return u.Notifications
	}
	return nil
}

func set(u *models.User, f models.ListField, ids []primitive.ObjectID) {
	switch f {
	case models.FieldFriends:
		u.Friends = ids
	case models.FieldPendingFriends:
		u.PendingFriends = ids
	case models.FieldChats:
		u.Chats = ids
	case models.FieldPendingChats:
		u.PendingChats = ids
	case models.FieldNotifications:
		u.Notifications = ids
	}
}

func union(ids, values []primitive.ObjectID) []primitive.ObjectID {
	out := append([]primitive.ObjectID{}, ids...)
	for _, v := range values {
		if !models.ContainsID(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func without(ids, values []primitive.ObjectID) []primitive.ObjectID {
	drop := models.IDSet(values)
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID{}, ids...)
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Friends = cloneIDs(u.Friends)
	c.PendingFriends = cloneIDs(u.PendingFriends)
	c.Chats = cloneIDs(u.Chats)
	c.PendingChats = cloneIDs(u.PendingChats)
	c.Notifications = cloneIDs(u.Notifications)
	return &c
}

func copyChat(ch *models.Chat) *models.Chat {
	c := *ch
	c.Receivers = cloneIDs(ch.Receivers)
	c.Messages = cloneIDs(ch.Messages)
	return &c
}

// Ping always succeeds; the store lives in process.
func (s *Store) Ping(context.Context) error {
	return nil
}
