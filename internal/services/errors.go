package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/chatterbox/internal/models"
)

// Error kinds returned by the services. Test with errors.Is.
var (
	ErrInvalidID            = errors.New("invalid id")
	ErrUserNotFound         = errors.New("no user with provided id")
	ErrDuplicateAuthID      = errors.New("a user with this auth id already exists")
	ErrNoFriendsToStartChat = errors.New("owner has no friends or pending friends to start a chat with")
	ErrNotAFriend           = errors.New("provided recipient is not a friend of provided owner")
	ErrChatNotFound         = errors.New("no chat with provided id")
	ErrNotChatMember        = errors.New("user is not a member of this chat")
	ErrChatPending          = errors.New("chat is pending for this user until the friend request is accepted")
	ErrNotificationNotFound = errors.New("no notification with provided id")
	ErrNotificationResolved = errors.New("notification is already resolved")
	ErrNotificationDenied   = errors.New("friend request was denied")
	ErrNotificationMismatch = errors.New("notification does not belong to the provided users")
	ErrSelfFriendRequest    = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends       = errors.New("users are already friends")
	ErrFriendRequestPending = errors.New("a friend request to this user is already pending")
)

// EntityError ties an error kind to the identifier that caused it.
type EntityError struct {
	Kind error
	ID   string
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.ID)
}

func (e *EntityError) Unwrap() error {
	return e.Kind
}

func entityErr(kind error, id fmt.Stringer) error {
	return &EntityError{Kind: kind, ID: hexOf(id)}
}

// hexOf prints ObjectIDs as plain hex rather than ObjectID("...").
func hexOf(id fmt.Stringer) string {
	if h, ok := id.(interface{ Hex() string }); ok {
		return h.Hex()
	}
	return id.String()
}

func UserNotFound(id fmt.Stringer) error { return entityErr(ErrUserNotFound, id) }
func NoFriendsToStartChat(id fmt.Stringer) error { return entityErr(ErrNoFriendsToStartChat, id) }
func NotAFriend(id fmt.Stringer) error { return entityErr(ErrNotAFriend, id) }
func NotificationNotFound(id fmt.Stringer) error { return entityErr(ErrNotificationNotFound, id) }
func ChatNotFound(id fmt.Stringer) error { return entityErr(ErrChatNotFound, id) }
func authIDNotFound(authID string) error { return &EntityError{Kind: ErrUserNotFound, ID: authID} }
func invalidID(raw string) error { return &EntityError{Kind: ErrInvalidID, ID: raw} }

// PartialApplyError reports a fan-out whose mutations did not all land. Failed
// mutations are idempotent and may be re-applied.
type PartialApplyError struct {
	Applied []models.ListMutation
	Failed  []models.ListMutation
	Err     error
}

func (e *PartialApplyError) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for _, m := range e.Failed {
		failed = append(failed, m.String())
	}
	return fmt.Sprintf("fan-out partially applied (%d applied, %d failed: %s): %v",
		len(e.Applied), len(e.Failed), strings.Join(failed, "; "), e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}
