package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := func() *User {
		return &User{
			ID:             uuid.New(),
			Email:          "alice@example.com",
			Name:           "Alice",
			HashedPassword: "hashed",
			Preference:     PreferenceBoth,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Expected valid user to pass validation, got %v", err)
	}

	t.Run("nil user ID", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.ID = uuid.Nil
		if err := u.Validate(); !errors.Is(err, ErrNilUserID) {
			t.Errorf("Expected ErrNilUserID, got %v", err)
		}
	})

	t.Run("empty email", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.Email = ""
		if err := u.Validate(); !errors.Is(err, ErrEmptyEmail) {
			t.Errorf("Expected ErrEmptyEmail, got %v", err)
		}
	})

	t.Run("invalid preference", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.Preference = DeliveryPreference("carrier_pigeon")
		if err := u.Validate(); !errors.Is(err, ErrInvalidPreference) {
			t.Errorf("Expected ErrInvalidPreference, got %v", err)
		}
	})

	t.Run("validation errors wrap the base error", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.Email = ""
		if err := u.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected error to wrap ErrValidation, got %v", err)
		}
	})
}
