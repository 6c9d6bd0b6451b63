package domain

import "github.com/google/uuid"

// DeliveryPreference controls which channels a user receives notifications on.
// It is owned by the user-profile subsystem and read-only at dispatch time.
type DeliveryPreference string

const (
	// PreferenceNone suppresses all delivery; no notification row is created.
	PreferenceNone DeliveryPreference = "none"

	// PreferencePush delivers over the live connection only.
	PreferencePush DeliveryPreference = "push"

	// PreferenceEmail delivers by transactional email only.
	PreferenceEmail DeliveryPreference = "email"

	// PreferenceBoth delivers on both channels, push attempted before email.
	// The double-send is intentional even when push succeeds.
	PreferenceBoth DeliveryPreference = "both"
)

// Valid reports whether p is one of the known preference values.
func (p DeliveryPreference) Valid() bool {
	switch p {
	case PreferenceNone, PreferencePush, PreferenceEmail, PreferenceBoth:
		return true
	}
	return false
}

// WantsPush reports whether the push channel should be attempted.
func (p DeliveryPreference) WantsPush() bool {
	return p == PreferencePush || p == PreferenceBoth
}

// WantsEmail reports whether the email channel should be attempted.
func (p DeliveryPreference) WantsEmail() bool {
	return p == PreferenceEmail || p == PreferenceBoth
}

// ProjectMember is a row of a project's membership list as seen by the
// dispatcher: the recipient and their channel preference.
type ProjectMember struct {
	UserID     uuid.UUID
	Preference DeliveryPreference
}
