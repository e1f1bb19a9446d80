package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is stored as a number to stay compatible with existing documents.
type NotificationType int

const (
	NotificationFriendRequest NotificationType = 1
)

func (t NotificationType) String() string {
	switch t {
	case NotificationFriendRequest:
		return "friend_request"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	return t == NotificationFriendRequest
}

// Notification is directed at To and raised by From. It is resolved on
// acceptance and detached from the recipient's inbox on denial.
type Notification struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NotificationType NotificationType   `bson:"notificationType" json:"notificationType"`
	Title            string             `bson:"title,omitempty" json:"title,omitempty"`
	From             primitive.ObjectID `bson:"from" json:"from"`
	To               primitive.ObjectID `bson:"to" json:"to"`
	Resolved         bool               `bson:"resolved" json:"resolved"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// FriendRequestBody is the body of POST /notifications/addFriend and of the accept route.
type FriendRequestBody struct {
	To   string `json:"to" validate:"required,len=24,hexadecimal"`
	From string `json:"from" validate:"required,len=24,hexadecimal"`
}

// DenyRequestBody is the body of PUT /notifications/{id}/deny.
type DenyRequestBody struct {
	To string `json:"to" validate:"required,len=24,hexadecimal"`
}
