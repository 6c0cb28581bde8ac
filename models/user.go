package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the role claim a user picks during onboarding.
type Role string

// Role constants for user authorization. RoleUnset means onboarding is not finished.
const (
	RoleUnset      Role = ""
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

var ValidRoles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

// ParseRole parses a raw role claim. An empty value yields RoleUnset.
func ParseRole(raw string) (Role, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return RoleUnset, nil
	}
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return RoleUnset, Validation(fmt.Sprintf("invalid role %q; use student, instructor, or admin", raw))
}

func (r Role) IsSet() bool { return r != RoleUnset }

func (r Role) String() string {
	if r == RoleUnset {
		return "unset"
	}
	return string(r)
}

// UserProfile is the local shadow of an identity-provider user.
type UserProfile struct {
	ID             string    `bson:"_id" json:"id"`
	ExternalAuthID string    `bson:"externalAuthId" json:"externalAuthId"`
	FirstName      string    `bson:"firstName" json:"firstName"`
	LastName       string    `bson:"lastName" json:"lastName"`
	Email          string    `bson:"email" json:"email"`
	Role           Role      `bson:"role" json:"role"`
	Bio            string    `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
