package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/chatterbox/internal/metrics"
	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService drives the friend-request lifecycle: send, accept, deny.
type NotificationService struct {
	repo     NotificationStore
	users    UserStore
	chats    ChatStore
	fanout   *FanoutApplier
	delivery requestDelivery
}

func NewNotificationService(repo NotificationStore, users UserStore, chats ChatStore, fanout *FanoutApplier) *NotificationService {
	return &NotificationService{
		repo:     repo,
		users:    users,
		chats:    chats,
		fanout:   fanout,
		delivery: requestDelivery{notifications: repo, fanout: fanout},
	}
}

// SendFriendRequest creates a friend-request notification from fromID to toID,
// puts it in the recipient's inbox and marks toID as a pending friend of the
// sender. Sending again after a partially applied send completes the earlier
// request.
func (s *NotificationService) SendFriendRequest(ctx context.Context, toID, fromID primitive.ObjectID) (*models.Notification, error) {
	if toID == fromID {
		return nil, &EntityError{Kind: ErrSelfFriendRequest, ID: toID.Hex()}
	}

	users, err := resolveUsers(ctx, s.users, []primitive.ObjectID{toID, fromID})
	if err != nil {
		return nil, err
	}
	to, from := users[0], users[1]

	if from.IsFriend(to.ID) {
		return nil, &EntityError{Kind: ErrAlreadyFriends, ID: to.ID.Hex()}
	}
	if from.HasPendingFriend(to.ID) {
		return nil, &EntityError{Kind: ErrFriendRequestPending, ID: to.ID.Hex()}
	}

	sent, err := s.delivery.deliver(ctx, &from, from.Username, []models.User{to})
	if err != nil {
		return nil, err
	}
	notif := &sent[0]

	metrics.FriendRequests.WithLabelValues(metrics.OutcomeSent).Inc()
	logrus.WithFields(logrus.Fields{
		"notificationID": notif.ID.Hex(),
		"from":           from.ID.Hex(),
		"to":             to.ID.Hex(),
	}).Info("Friend request sent")
	return notif, nil
}

// AcceptFriendRequest makes the two parties friends, clears the pending marker
// and promotes chats that were pending only because of this request. The
// notification is marked resolved last, so a failed fan-out can be retried by
// accepting again. A request no longer in the recipient's inbox was denied and
// cannot be accepted.
func (s *NotificationService) AcceptFriendRequest(ctx context.Context, notificationID, toID, fromID primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.getNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notif.To != toID || notif.From != fromID {
		return nil, &EntityError{Kind: ErrNotificationMismatch, ID: notif.ID.Hex()}
	}
	if notif.Resolved {
		return nil, &EntityError{Kind: ErrNotificationResolved, ID: notif.ID.Hex()}
	}

	users, err := resolveUsers(ctx, s.users, []primitive.ObjectID{toID, fromID})
	if err != nil {
		return nil, err
	}
	to, from := users[0], users[1]
	if !models.ContainsID(to.Notifications, notif.ID) {
		return nil, &EntityError{Kind: ErrNotificationDenied, ID: notif.ID.Hex()}
	}

	mutations := []models.ListMutation{
		models.AddTo(to.ID, models.FieldFriends, from.ID),
		models.AddTo(from.ID, models.FieldFriends, to.ID),
		models.RemoveFrom(from.ID, models.FieldPendingFriends, to.ID),
	}
	if to.HasPendingFriend(from.ID) {
		mutations = append(mutations, models.RemoveFrom(to.ID, models.FieldPendingFriends, from.ID))
	}

	promoteTo, err := s.pendingChatsOwnedBy(ctx, &to, from.ID)
	if err != nil {
		return nil, err
	}
	if len(promoteTo) > 0 {
		mutations = append(mutations, models.Move(to.ID, models.FieldPendingChats, models.FieldChats, promoteTo...))
	}
	promoteFrom, err := s.pendingChatsOwnedBy(ctx, &from, to.ID)
	if err != nil {
		return nil, err
	}
	if len(promoteFrom) > 0 {
		mutations = append(mutations, models.Move(from.ID, models.FieldPendingChats, models.FieldChats, promoteFrom...))
	}

	if err := s.fanout.Apply(ctx, mutations); err != nil {
		return nil, err
	}

	if err := s.repo.MarkResolved(ctx, notif.ID); err != nil {
		return nil, fmt.Errorf("failed to resolve notification: %w", err)
	}
	notif.Resolved = true

	metrics.FriendRequests.WithLabelValues(metrics.OutcomeAccepted).Inc()
	logrus.WithFields(logrus.Fields{
		"notificationID": notif.ID.Hex(),
		"from":           from.ID.Hex(),
		"to":             to.ID.Hex(),
		"promotedChats":  len(promoteTo) + len(promoteFrom),
	}).Info("Friend request accepted")
	return notif, nil
}

// pendingChatsOwnedBy returns the pending chats of user whose owner is ownerID.
func (s *NotificationService) pendingChatsOwnedBy(ctx context.Context, user *models.User, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(user.PendingChats) == 0 {
		return nil, nil
	}
	chats, err := s.chats.GetChatsByIDs(ctx, user.PendingChats)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending chats: %w", err)
	}
	var ids []primitive.ObjectID
	for _, c := range chats {
		if c.Owner == ownerID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// DenyFriendRequest removes the notification from the recipient's inbox. The
// notification document and the sender's pending marker are kept.
func (s *NotificationService) DenyFriendRequest(ctx context.Context, notificationID, toID primitive.ObjectID) error {
	to, err := s.users.GetUserByID(ctx, toID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserNotFound(toID)
		}
		return err
	}

	notif, err := s.getNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if notif.To != to.ID {
		return &EntityError{Kind: ErrNotificationMismatch, ID: notif.ID.Hex()}
	}
	if notif.Resolved {
		return &EntityError{Kind: ErrNotificationResolved, ID: notif.ID.Hex()}
	}

	if err := s.fanout.Apply(ctx, []models.ListMutation{
		models.RemoveFrom(to.ID, models.FieldNotifications, notif.ID),
	}); err != nil {
		return err
	}

	metrics.FriendRequests.WithLabelValues(metrics.OutcomeDenied).Inc()
	logrus.WithFields(logrus.Fields{
		"notificationID": notif.ID.Hex(),
		"to":             to.ID.Hex(),
	}).Info("Friend request denied")
	return nil
}

// ListNotifications returns the notifications in the user's inbox, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, authID string) ([]models.Notification, error) {
	user, err := s.users.GetUserByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authIDNotFound(authID)
		}
		return nil, err
	}
	return s.repo.GetNotificationsByIDs(ctx, user.Notifications)
}

func (s *NotificationService) getNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	notif, err := s.repo.GetNotificationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("notificationID", id.Hex()).Warn("Notification not found")
			return nil, NotificationNotFound(id)
		}
		return nil, err
	}
	return notif, nil
}
