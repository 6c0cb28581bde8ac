package identity

import (
	"time"

	"github.com/learnify/backend/models"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is a verified identity-provider webhook payload.
type Event struct {
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type UserData struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	UnsafeMetadata        Metadata       `json:"unsafe_metadata"`
	PublicMetadata        Metadata       `json:"public_metadata"`
	CreatedAt             int64          `json:"created_at"` // unix milliseconds
}

func (d UserData) Role() (models.Role, error) {
	return RoleClaim(d.UnsafeMetadata, d.PublicMetadata)
}

// PrimaryEmail prefers the address flagged primary, else the first one.
func (d UserData) PrimaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID != "" && e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Created converts created_at, falling back to now when the provider omits it.
func (d UserData) Created(now time.Time) time.Time {
	if d.CreatedAt <= 0 {
		return now
	}
	return time.UnixMilli(d.CreatedAt).UTC()
}
