package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the slice of the account entity this service needs: contact
// address for the email channel, the stored delivery preference, and the
// password hash used by the login endpoint. Account lifecycle (signup,
// profile edits) is owned by the main application.
type User struct {
	ID             uuid.UUID
	Email          string
	Name           string
	HashedPassword string
	Preference     DeliveryPreference
	CreatedAt      time.Time
}

// Validate checks the user entity invariants.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrNilUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !u.Preference.Valid() {
		return ErrInvalidPreference
	}
	return nil
}
