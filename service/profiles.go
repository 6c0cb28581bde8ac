package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/models"
)

// Outcome reports what a webhook event did.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeIgnored Outcome = "ignored"
)

// ProfileService keeps local profiles in step with the identity provider.
type ProfileService struct {
	users    UserStore
	provider ProfileWriter
	roles    RoleInvalidator
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

func NewProfileService(users UserStore, provider ProfileWriter, roles RoleInvalidator, log *logger.Logger) *ProfileService {
	return &ProfileService{
		users:    users,
		provider: provider,
		roles:    roles,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// HandleEvent applies a verified event. Types outside accept are ignored;
// a nil accept means every supported type.
func (s *ProfileService) HandleEvent(ctx context.Context, evt identity.Event, accept map[string]bool) (Outcome, error) {
	if accept != nil && !accept[evt.Type] {
		return OutcomeIgnored, nil
	}
	if evt.Data.ID == "" && (evt.Type == identity.EventUserCreated || evt.Type == identity.EventUserUpdated) {
		return "", models.Validation("event has no user id")
	}
	switch evt.Type {
	case identity.EventUserCreated:
		return OutcomeCreated, s.userCreated(ctx, evt.Data)
	case identity.EventUserUpdated:
		return OutcomeUpdated, s.userUpdated(ctx, evt.Data)
	default:
		return OutcomeIgnored, nil
	}
}

func (s *ProfileService) userCreated(ctx context.Context, d identity.UserData) error {
	if _, err := s.users.UserByExternalID(ctx, d.ID); err == nil {
		return models.ErrDuplicateUser
	} else if models.KindOf(err) != models.KindNotFound {
		return models.Upstream("failed to look up user", err)
	}
	role, err := d.Role()
	if err != nil {
		return err
	}
	if !role.IsSet() {
		role = models.RoleStudent
	}
	now := s.now()
	user := &models.UserProfile{
		ID:             s.newID(),
		ExternalAuthID: d.ID,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.PrimaryEmail(),
		Role:           role,
		Bio:            d.UnsafeMetadata.Bio,
		CreatedAt:      d.Created(now),
		UpdatedAt:      now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return models.Upstream("error creating user", err)
	}
	return nil
}

func (s *ProfileService) userUpdated(ctx context.Context, d identity.UserData) error {
	role, err := d.Role()
	if err != nil {
		return err
	}
	user := &models.UserProfile{
		ExternalAuthID: d.ID,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.PrimaryEmail(),
		Role:           role,
		Bio:            d.UnsafeMetadata.Bio,
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return models.Upstream("error updating user", err)
	}
	s.invalidate(ctx, d.ID)
	return nil
}

// CompletionRequest is the onboarding form submission.
type CompletionRequest struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Bio       string `json:"bio"`
}

// CompleteProfile writes names, role and bio to the identity provider. The
// local profile follows through the user.updated webhook. caller is the
// verified session subject and must be the user being updated. Admin is
// never self-assigned.
func (s *ProfileService) CompleteProfile(ctx context.Context, caller string, req CompletionRequest) error {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return models.ErrUserNotFound
	}
	if caller == "" || caller != userID {
		s.log.Warn("profile update for another user rejected", "caller", caller, "user", userID)
		return models.Forbidden("cannot update another user")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return err
	}
	if role == models.RoleAdmin {
		return models.Validation("role must be student or instructor")
	}
	upd := identity.ProfileUpdate{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		Bio:       strings.TrimSpace(req.Bio),
	}
	if err := s.provider.UpdateUser(ctx, userID, upd); err != nil {
		s.log.Error("identity provider update failed", "user", userID, "error", err)
		return models.NotFound("failed to update user")
	}
	s.invalidate(ctx, userID)
	return nil
}

// Actor builds the ownership identity for an external user.
func (s *ProfileService) Actor(ctx context.Context, externalID string, role models.Role) (Actor, error) {
	actor := Actor{ExternalID: externalID, Role: role}
	if role == models.RoleAdmin {
		return actor, nil
	}
	u, err := s.users.UserByExternalID(ctx, externalID)
	switch {
	case err == nil:
		actor.ProfileID = u.ID
	case models.KindOf(err) != models.KindNotFound:
		return Actor{}, models.Upstream("failed to look up user", err)
	}
	// A missing profile (webhook not yet delivered) still matches on the external id.
	return actor, nil
}

func (s *ProfileService) invalidate(ctx context.Context, userID string) {
	if s.roles == nil {
		return
	}
	if err := s.roles.Invalidate(ctx, userID); err != nil {
		s.log.Warn("role cache invalidate failed", "user", userID, "error", err)
	}
}
