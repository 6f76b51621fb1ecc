package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Profile holds the user's display data and organization affiliation.
type Profile struct {
	UserID         uuid.UUID
	FullName       string
	OrganizationID *uuid.UUID
}

// Organization returns the affiliated organization id or uuid.Nil.
func (p Profile) Organization() uuid.UUID {
	if p.OrganizationID == nil {
		return uuid.Nil
	}
	return *p.OrganizationID
}

// EventKind names an authentication state change.
type EventKind string

// Authentication state changes.
const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// AuthEvent notifies subscribers of a sign-in or sign-out.
type AuthEvent struct {
	Kind   EventKind
	UserID uuid.UUID
	At     time.Time
}
