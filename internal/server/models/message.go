package models

import (
	"fmt"
	"time"

	"github.com/mviktors/minichat/internal/common"
	"github.com/mviktors/minichat/internal/validate"
)

// Message mirrors one live row of the msgs table joined to its author.
// Author is the caller-supplied user DTO; it is never re-fetched, so it is
// only as fresh as what was passed in.
type Message struct {
	ID        int64
	Msg       string
	Author    *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMessage validates every field and returns the assembled DTO.
func NewMessage(id int64, msg string, author *User, createdAt, updatedAt time.Time) (*Message, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}
	if err := validate.NonEmpty("msg", msg); err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author must be a user", common.ErrorValidation)
	}
	if err := validate.PositiveID("author.id", author.ID); err != nil {
		return nil, err
	}
	if err := validate.NonZeroTime("createdAt", createdAt); err != nil {
		return nil, err
	}
	if err := validate.NonZeroTime("updatedAt", updatedAt); err != nil {
		return nil, err
	}
	return &Message{
		ID:        id,
		Msg:       msg,
		Author:    author,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
