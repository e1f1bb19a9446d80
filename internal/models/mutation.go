package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListField names one of the relationship lists on a user document.
type ListField string

const (
	FieldFriends        ListField = "friends"
	FieldPendingFriends ListField = "pendingFriends"
	FieldChats          ListField = "chats"
	FieldPendingChats   ListField = "pendingChats"
	FieldNotifications  ListField = "notifications"
)

func (f ListField) Valid() bool {
	switch f {
	case FieldFriends, FieldPendingFriends, FieldChats, FieldPendingChats, FieldNotifications:
		return true
	}
	return false
}

type MutationOp string

const (
	OpAdd    MutationOp = "add"
	OpRemove MutationOp = "remove"
	// OpMove removes Values from Field and appends them to To in one document update.
	OpMove MutationOp = "move"
)

// ListMutation is a single idempotent change to one user's relationship list.
// Adding uses set-union semantics and removing is a filter, so applying the same
// mutation more than once leaves the document unchanged.
type ListMutation struct {
	UserID primitive.ObjectID
	Op     MutationOp
	Field  ListField
	To     ListField
	Values []primitive.ObjectID
}

func AddTo(userID primitive.ObjectID, field ListField, values ...primitive.ObjectID) ListMutation {
	return ListMutation{UserID: userID, Op: OpAdd, Field: field, Values: values}
}

func RemoveFrom(userID primitive.ObjectID, field ListField, values ...primitive.ObjectID) ListMutation {
	return ListMutation{UserID: userID, Op: OpRemove, Field: field, Values: values}
}

func Move(userID primitive.ObjectID, from, to ListField, values ...primitive.ObjectID) ListMutation {
	return ListMutation{UserID: userID, Op: OpMove, Field: from, To: to, Values: values}
}

// Validate checks that the mutation names known fields and carries values.
func (m ListMutation) Validate() error {
	if m.UserID.IsZero() {
		return fmt.Errorf("list mutation without user id")
	}
	if !m.Field.Valid() {
		return fmt.Errorf("unknown list field %q", m.Field)
	}
	switch m.Op {
	case OpAdd, OpRemove:
	case OpMove:
		if !m.To.Valid() || m.To == m.Field {
			return fmt.Errorf("invalid move target %q", m.To)
		}
	default:
		return fmt.Errorf("unknown list operation %q", m.Op)
	}
	if len(m.Values) == 0 {
		return fmt.Errorf("list mutation without values")
	}
	return nil
}

func (m ListMutation) String() string {
	ids := make([]string, 0, len(m.Values))
	for _, v := range m.Values {
		ids = append(ids, v.Hex())
	}
	target := string(m.Field)
	if m.Op == OpMove {
		target += "->" + string(m.To)
	}
	return fmt.Sprintf("%s %s user=%s [%s]", m.Op, target, m.UserID.Hex(), strings.Join(ids, ","))
}

// ContainsID reports whether id is present in ids. ObjectIDs are arrays, so the
// comparison is by value.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// IDSet builds a lookup set from ids.
func IDSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
