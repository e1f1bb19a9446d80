package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dias221467/chatterbox/internal/models"
	"github.com/Dias221467/chatterbox/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles user profiles and onboarding.
type UserService struct {
	repo          UserStore
	notifications NotificationStore
	fanout        *FanoutApplier
	delivery      requestDelivery
}

func NewUserService(repo UserStore, notifications NotificationStore, fanout *FanoutApplier) *UserService {
	return &UserService{
		repo:          repo,
		notifications: notifications,
		fanout:        fanout,
		delivery:      requestDelivery{notifications: notifications, fanout: fanout},
	}
}

// CreateUser registers a user for an externally issued authId. The user starts
// with newUser=true and empty relationship lists.
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		AuthID:    req.AuthID,
		Username:  req.Username,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Avatar:    req.Avatar,
		NewUser:   true,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			logrus.WithField("authId", req.AuthID).Warn("Duplicate authId on user creation")
			return nil, &EntityError{Kind: ErrDuplicateAuthID, ID: req.AuthID}
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"authId": created.AuthID,
	}).Info("User created")
	return created, nil
}

// GetUserByAuthID retrieves a user by the identity provider's id.
func (s *UserService) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	user, err := s.repo.GetUserByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authIDNotFound(authID)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by internal id.
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UserNotFound(id)
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser applies profile changes. Relationship lists cannot be changed here.
func (s *UserService) UpdateUser(ctx context.Context, authID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	patch.NewUser = nil
	if patch.IsEmpty() {
		return user, nil
	}

	updated, err := s.repo.UpdateUser(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UserNotFound(user.ID)
		}
		return nil, err
	}

	logrus.WithField("userID", updated.ID.Hex()).Info("User updated")
	return updated, nil
}

// CompleteProfile finishes onboarding: it applies the patch and clears newUser.
// On the first call each invitee becomes a pending friend and receives a
// friend-request notification. newUser is cleared only after the invitations
// land, so a failed first call can be repeated. Later calls are plain profile
// updates.
func (s *UserService) CompleteProfile(ctx context.Context, authID string, patch models.UserPatch, invitees []primitive.ObjectID) (*models.User, error) {
	user, err := s.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	wasNew := user.NewUser

	var friends []models.User
	if wasNew {
		friends, err = s.newInvitees(ctx, user, invitees)
		if err != nil {
			return nil, err
		}
	}

	if len(friends) > 0 {
		senderName := user.Username
		if patch.Username != nil {
			senderName = *patch.Username
		}
		if _, err := s.delivery.deliver(ctx, user, senderName, friends); err != nil {
			return nil, err
		}
	}

	done := false
	patch.NewUser = &done
	updated, err := s.repo.UpdateUser(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UserNotFound(user.ID)
		}
		return nil, err
	}

	if wasNew {
		logrus.WithFields(logrus.Fields{
			"userID":   user.ID.Hex(),
			"invitees": len(friends),
		}).Info("Profile completed")
	}
	return updated, nil
}

// newInvitees resolves invitees and drops the user itself, existing friends and
// users that already have a pending request from user.
func (s *UserService) newInvitees(ctx context.Context, user *models.User, invitees []primitive.ObjectID) ([]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(invitees))
	for _, id := range dedupe(invitees) {
		if id == user.ID || user.IsFriend(id) || user.HasPendingFriend(id) {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return resolveUsers(ctx, s.repo, ids)
}

// ListFriends returns the public profiles of the user's confirmed friends.
func (s *UserService) ListFriends(ctx context.Context, authID string) ([]models.PublicUser, error) {
	user, err := s.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	friends, err := s.repo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	out := make([]models.PublicUser, 0, len(friends))
	for i := range friends {
		out = append(out, friends[i].Public())
	}
	return out, nil
}
