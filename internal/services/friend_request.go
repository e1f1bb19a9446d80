package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/chatterbox/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requestDelivery writes friend requests from one sender to several recipients.
// Inbox entries land before the sender's pendingFriends marker, so a marker
// always means the request reached the recipient. A request already sitting
// unresolved in a recipient's inbox is reused instead of duplicated.
type requestDelivery struct {
	notifications NotificationStore
	fanout        *FanoutApplier
}

func (d requestDelivery) deliver(ctx context.Context, from *models.User, senderName string, recipients []models.User) ([]models.Notification, error) {
	sent := make([]models.Notification, 0, len(recipients))
	inbox := make([]models.ListMutation, 0, len(recipients))
	for i := range recipients {
		notif, err := d.requestFor(ctx, from, senderName, &recipients[i])
		if err != nil {
			return nil, err
		}
		sent = append(sent, *notif)
		inbox = append(inbox, models.AddTo(recipients[i].ID, models.FieldNotifications, notif.ID))
	}

	if err := d.fanout.Apply(ctx, inbox); err != nil {
		return nil, err
	}
	if err := d.fanout.Apply(ctx, []models.ListMutation{
		models.AddTo(from.ID, models.FieldPendingFriends, IDs(recipients)...),
	}); err != nil {
		return nil, err
	}
	return sent, nil
}

// requestFor returns the unresolved request from sender in to's inbox, or
// creates a new one.
func (d requestDelivery) requestFor(ctx context.Context, from *models.User, senderName string, to *models.User) (*models.Notification, error) {
	if existing, err := d.pendingInInbox(ctx, to, from.ID); err != nil || existing != nil {
		return existing, err
	}

	notif, err := d.notifications.CreateNotification(ctx, &models.Notification{
		NotificationType: models.NotificationFriendRequest,
		Title:            fmt.Sprintf("%s sent you a friend request", senderName),
		From:             from.ID,
		To:               to.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notif, nil
}

func (d requestDelivery) pendingInInbox(ctx context.Context, to *models.User, fromID primitive.ObjectID) (*models.Notification, error) {
	if len(to.Notifications) == 0 {
		return nil, nil
	}
	inbox, err := d.notifications.GetNotificationsByIDs(ctx, to.Notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	for i := range inbox {
		n := inbox[i]
		if n.NotificationType == models.NotificationFriendRequest && n.From == fromID && !n.Resolved {
			return &n, nil
		}
	}
	return nil, nil
}
