package services

import (
	"github.com/Dias221467/chatterbox/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classification partitions chat recipients by their relationship to the owner.
type Classification struct {
	Confirmed []models.User
	Pending   []models.User
}

// ClassifyRecipients sorts candidates into the owner's confirmed friends and
// pending friends. It fails as a whole if any candidate is neither; a candidate
// listed as both is treated as confirmed. Identifiers are compared by value.
func ClassifyRecipients(owner *models.User, candidates []models.User) (Classification, error) {
	if len(owner.Friends)+len(owner.PendingFriends) == 0 {
		return Classification{}, NoFriendsToStartChat(owner.ID)
	}

	friends := models.IDSet(owner.Friends)
	pending := models.IDSet(owner.PendingFriends)

	result := Classification{
		Confirmed: make([]models.User, 0, len(candidates)),
		Pending:   make([]models.User, 0),
	}
	for _, c := range candidates {
		if _, ok := friends[c.ID]; ok {
			result.Confirmed = append(result.Confirmed, c)
			continue
		}
		if _, ok := pending[c.ID]; ok {
			result.Pending = append(result.Pending, c)
			continue
		}
		return Classification{}, NotAFriend(c.ID)
	}
	return result, nil
}

// IDs returns the identifiers of users in order.
func IDs(users []models.User) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// ParseID converts a hex identifier, reporting ErrInvalidID on malformed input.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, invalidID(raw)
	}
	return id, nil
}

// ParseIDs converts every element of raw, stopping at the first malformed one.
func ParseIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := ParseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// dedupe drops repeated identifiers, keeping the first occurrence.
func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
