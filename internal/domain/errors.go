package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the base error for all entity validation failures.
// Specific validation errors wrap it so callers can match with errors.Is.
var ErrValidation = errors.New("validation failed")

var (
	// ErrEmptyTitle indicates a notification or event without a title.
	ErrEmptyTitle = fmt.Errorf("%w: title cannot be empty", ErrValidation)

	// ErrEmptyMessage indicates a notification or event without a message body.
	ErrEmptyMessage = fmt.Errorf("%w: message cannot be empty", ErrValidation)

	// ErrInvalidType indicates an unknown notification type.
	ErrInvalidType = fmt.Errorf("%w: invalid notification type", ErrValidation)

	// ErrInvalidPreference indicates a delivery preference outside the known set.
	ErrInvalidPreference = fmt.Errorf("%w: invalid delivery preference", ErrValidation)

	// ErrNilUserID indicates a notification bound to no recipient.
	ErrNilUserID = fmt.Errorf("%w: user ID cannot be nil", ErrValidation)

	// ErrNilProjectID indicates an event bound to no project.
	ErrNilProjectID = fmt.Errorf("%w: project ID cannot be nil", ErrValidation)

	// ErrEmptyEmail indicates a user without an email address.
	ErrEmptyEmail = fmt.Errorf("%w: email cannot be empty", ErrValidation)
)
