package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the messaging system. AuthID is issued by the
// external identity provider; ID is the internal document identifier that every
// relationship list refers to.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AuthID         string               `bson:"authId" json:"authId"`
	Username       string               `bson:"username" json:"username"`
	Firstname      string               `bson:"firstname,omitempty" json:"firstname,omitempty"`
	Lastname       string               `bson:"lastname,omitempty" json:"lastname,omitempty"`
	Avatar         string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Friends        []primitive.ObjectID `bson:"friends" json:"friends"`
	PendingFriends []primitive.ObjectID `bson:"pendingFriends" json:"pendingFriends"`
	Chats          []primitive.ObjectID `bson:"chats" json:"chats"`
	PendingChats   []primitive.ObjectID `bson:"pendingChats" json:"pendingChats"`
	Notifications  []primitive.ObjectID `bson:"notifications" json:"notifications"`
	NewUser        bool                 `bson:"newUser" json:"newUser"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// InitLists replaces nil relationship lists with empty ones so that the stored
// document always carries arrays.
func (u *User) InitLists() {
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	if u.PendingFriends == nil {
		u.PendingFriends = []primitive.ObjectID{}
	}
	if u.Chats == nil {
		u.Chats = []primitive.ObjectID{}
	}
	if u.PendingChats == nil {
		u.PendingChats = []primitive.ObjectID{}
	}
	if u.Notifications == nil {
		u.Notifications = []primitive.ObjectID{}
	}
}

// IsFriend reports whether id is a confirmed friend.
func (u *User) IsFriend(id primitive.ObjectID) bool {
	return ContainsID(u.Friends, id)
}

// HasPendingFriend reports whether u has an outstanding request towards id.
func (u *User) HasPendingFriend(id primitive.ObjectID) bool {
	return ContainsID(u.PendingFriends, id)
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	AuthID    string             `json:"authId"`
	Username  string             `json:"username"`
	Firstname string             `json:"firstname,omitempty"`
	Lastname  string             `json:"lastname,omitempty"`
	Avatar    string             `json:"avatar,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		AuthID:    u.AuthID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Avatar:    u.Avatar,
	}
}

// UserPatch carries the profile fields a user may change. Relationship lists
// only change through ListMutation.
type UserPatch struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,max=50"`
	Lastname  *string `json:"lastname,omitempty" validate:"omitempty,max=50"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
	NewUser   *bool   `json:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Firstname == nil && p.Lastname == nil && p.Avatar == nil && p.NewUser == nil
}

// Apply copies the set fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Firstname != nil {
		u.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		u.Lastname = *p.Lastname
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.NewUser != nil {
		u.NewUser = *p.NewUser
	}
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	AuthID    string `json:"authId" validate:"required,max=256"`
	Username  string `json:"username" validate:"required,min=2,max=50"`
	Firstname string `json:"firstname,omitempty" validate:"omitempty,max=50"`
	Lastname  string `json:"lastname,omitempty" validate:"omitempty,max=50"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
}

// CompleteProfileRequest is the body of PUT /users/{authId}/newUser. PendingFriends
// lists the users the new user wants to befriend.
type CompleteProfileRequest struct {
	UserPatch
	PendingFriends []string `json:"pendingFriends,omitempty" validate:"omitempty,max=256,dive,len=24,hexadecimal"`
}
