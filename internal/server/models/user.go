// Package models holds the data-transfer objects passed between the
// repositories, the services and the transport layer. DTOs are built through
// validating constructors and treated as read-only by callers; LoggedInUntil
// is the one field the business layer reassigns before persisting.
package models

import (
	"time"

	"github.com/mviktors/minichat/internal/validate"
)

// User mirrors one live row of the users table. Identity is ID; callers
// compare IDs directly.
type User struct {
	ID            int64
	Username      string
	LoggedInUntil time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser validates every field and returns the assembled DTO. The Unix
// epoch is a legal LoggedInUntil (the "never logged in" default).
func NewUser(id int64, username string, loggedInUntil, createdAt, updatedAt time.Time) (*User, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}
	if err := validate.Alphanumeric("username", username); err != nil {
		return nil, err
	}
	if err := validate.NonZeroTime("loggedInUntil", loggedInUntil); err != nil {
		return nil, err
	}
	if err := validate.NonZeroTime("createdAt", createdAt); err != nil {
		return nil, err
	}
	if err := validate.NonZeroTime("updatedAt", updatedAt); err != nil {
		return nil, err
	}
	return &User{
		ID:            id,
		Username:      username,
		LoggedInUntil: loggedInUntil,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
