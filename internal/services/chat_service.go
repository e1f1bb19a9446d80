package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/chatterbox/internal/metrics"
	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService creates chats, fans their membership out to participants and
// serves chat reads.
type ChatService struct {
	users    UserStore
	chats    ChatStore
	messages MessageStore
	fanout   *FanoutApplier
	now      func() time.Time
}

func NewChatService(users UserStore, chats ChatStore, messages MessageStore, fanout *FanoutApplier) *ChatService {
	return &ChatService{
		users:    users,
		chats:    chats,
		messages: messages,
		fanout:   fanout,
		now:      time.Now,
	}
}

// ChatOptions carries the optional display fields of a new chat.
type ChatOptions struct {
	Name   string
	Avatar string
}

// CreateChat validates that every recipient is a friend or pending friend of the
// owner, persists the chat and adds it to each participant's chats or
// pendingChats. Nothing is written when validation fails.
func (s *ChatService) CreateChat(ctx context.Context, ownerID primitive.ObjectID, recipientIDs []primitive.ObjectID, opts ChatOptions) (*models.Chat, error) {
	recipientIDs = dedupe(recipientIDs)

	users, err := resolveUsers(ctx, s.users, append([]primitive.ObjectID{ownerID}, recipientIDs...))
	if err != nil {
		return nil, err
	}
	owner := users[0]
	recipients := users[1:]

	class, err := ClassifyRecipients(&owner, recipients)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"ownerID": ownerID.Hex(),
			"error":   err,
		}).Warn("Chat recipients rejected")
		return nil, err
	}

	chat, err := s.chats.CreateChat(ctx, &models.Chat{
		Owner:      owner.ID,
		ChatName:   opts.Name,
		ChatAvatar: opts.Avatar,
		Receivers:  append([]primitive.ObjectID{owner.ID}, recipientIDs...),
		Messages:   []primitive.ObjectID{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	if err := s.fanout.Apply(ctx, membershipMutations(chat.ID, owner.ID, class)); err != nil {
		return nil, err
	}

	metrics.ChatsCreated.Inc()
	metrics.ChatRecipients.WithLabelValues(metrics.RecipientConfirmed).Add(float64(len(class.Confirmed)))
	metrics.ChatRecipients.WithLabelValues(metrics.RecipientPending).Add(float64(len(class.Pending)))

	logrus.WithFields(logrus.Fields{
		"chatID":    chat.ID.Hex(),
		"ownerID":   owner.ID.Hex(),
		"confirmed": len(class.Confirmed),
		"pending":   len(class.Pending),
	}).Info("Chat created")
	return chat, nil
}

// membershipMutations lists the per-user updates for a new chat: the owner and
// confirmed recipients get it in chats, pending recipients in pendingChats.
func membershipMutations(chatID, ownerID primitive.ObjectID, class Classification) []models.ListMutation {
	mutations := make([]models.ListMutation, 0, 1+len(class.Confirmed)+len(class.Pending))
	mutations = append(mutations, models.AddTo(ownerID, models.FieldChats, chatID))
	for _, u := range class.Confirmed {
		mutations = append(mutations, models.AddTo(u.ID, models.FieldChats, chatID))
	}
	for _, u := range class.Pending {
		mutations = append(mutations, models.AddTo(u.ID, models.FieldPendingChats, chatID))
	}
	return mutations
}

// GetChat returns a chat with all of its messages, newest first. Only receivers may read it.
func (s *ChatService) GetChat(ctx context.Context, chatID, callerID primitive.ObjectID) (*models.ChatView, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasReceiver(callerID) {
		return nil, &EntityError{Kind: ErrNotChatMember, ID: callerID.Hex()}
	}

	msgs, err := s.messages.GetMessagesByChat(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	view := models.NewChatView(*chat, msgs)
	return &view, nil
}

// SendMessage stores a message from senderID. The sender must hold the chat in
// their confirmed chats; pending members cannot post yet.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID primitive.ObjectID, text string) (*models.Message, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasReceiver(senderID) {
		return nil, &EntityError{Kind: ErrNotChatMember, ID: senderID.Hex()}
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UserNotFound(senderID)
		}
		return nil, err
	}
	if !models.ContainsID(sender.Chats, chat.ID) {
		return nil, &EntityError{Kind: ErrChatPending, ID: chat.ID.Hex()}
	}

	msg, err := s.messages.CreateMessage(ctx, &models.Message{
		Sender:    senderID,
		Message:   text,
		ChatID:    chat.ID,
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := s.chats.AppendMessage(ctx, chat.ID, msg.ID); err != nil {
		return nil, fmt.Errorf("failed to attach message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"chatID":    chat.ID.Hex(),
		"messageID": msg.ID.Hex(),
	}).Info("Message sent")
	return msg, nil
}

// GetUserChats loads the confirmed and pending chats of a user with only their
// latest message.
func (s *ChatService) GetUserChats(ctx context.Context, authID string) (*models.UserChats, error) {
	user, err := s.users.GetUserByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authIDNotFound(authID)
		}
		return nil, err
	}

	chats, err := s.loadViews(ctx, user.Chats)
	if err != nil {
		return nil, err
	}
	pending, err := s.loadViews(ctx, user.PendingChats)
	if err != nil {
		return nil, err
	}

	uc := &models.UserChats{UserID: user.ID, Chats: chats, PendingChats: pending}
	ProjectLatest(uc)
	return uc, nil
}

// loadViews expands chat ids into views with their messages, keeping list order.
func (s *ChatService) loadViews(ctx context.Context, ids []primitive.ObjectID) ([]models.ChatView, error) {
	chats, err := s.chats.GetChatsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}
	views := make([]models.ChatView, 0, len(chats))
	for _, c := range chats {
		msgs, err := s.messages.GetMessagesByChat(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages of chat %s: %w", c.ID.Hex(), err)
		}
		views = append(views, models.NewChatView(c, msgs))
	}
	return views, nil
}

func (s *ChatService) getChat(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.chats.GetChatByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ChatNotFound(id)
		}
		return nil, err
	}
	return chat, nil
}

// resolveUsers fetches ids in one query and returns them in the same order. The
// first id that does not resolve is reported as UserNotFound.
func resolveUsers(ctx context.Context, store UserStore, ids []primitive.ObjectID) ([]models.User, error) {
	found, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			logrus.WithField("userID", id.Hex()).Warn("Referenced user not found")
			return nil, UserNotFound(id)
		}
		users = append(users, u)
	}
	return users, nil
}
