// Package services contains server-side business logic. This file implements
// ChatService, the single entry point for all chat operations. Every public
// operation validates its inputs first and then runs all repository calls
// inside exactly one transaction.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mviktors/minichat/internal/common"
	"github.com/mviktors/minichat/internal/dbx"
	"github.com/mviktors/minichat/internal/server/config"
	"github.com/mviktors/minichat/internal/server/models"
	"github.com/mviktors/minichat/internal/server/repositories/repomanager"
	"github.com/mviktors/minichat/internal/validate"
)

// ChatService provides the chat operations:
// - Login: claim a username (creating the user on first login) and extend the session
// - IsLoggedIn: resolve a username to its user while the session is active
// - AddMessage / FindMessage / FindAllMessages / DeleteMessage: message operations
// - FindUser: user lookup by id
type ChatService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	sessionValidityDuration time.Duration
}

// NewChatService constructs a ChatService using repositories and server config.
func NewChatService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *ChatService {
	return &ChatService{
		db:                      db,
		repomanager:             m,
		sessionValidityDuration: cfg.SessionValidityDuration,
	}
}

// Ping reports whether the backing store is reachable.
func (s *ChatService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Login resolves username to a user, creating it on first login, and extends
// the session to now plus the configured validity. The lookup, the optional
// create and the session update run in one transaction. Losing the
// first-login race to a concurrent create surfaces as ErrorAlreadyExists
// inside the transaction; one retry then picks up the winner's row.
func (s *ChatService) Login(ctx context.Context, username string) (*models.User, error) {
	if err := validate.Alphanumeric("username", username); err != nil {
		return nil, err
	}

	user, err := s.loginOnce(ctx, username)
	if errors.Is(err, common.ErrorAlreadyExists) {
		user, err = s.loginOnce(ctx, username)
	}
	return user, err
}

func (s *ChatService) loginOnce(ctx context.Context, username string) (*models.User, error) {
	var result *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		found, err := repo.FindByUsername(ctx, username)
		if err != nil {
			return err
		}

		var user *models.User
		if len(found) > 0 {
			user = found[0]
		} else {
			user, err = repo.Create(ctx, username)
			if err != nil {
				return err
			}
		}

		user.LoggedInUntil = time.Now().UTC().Add(s.sessionValidityDuration)
		if err := repo.Update(ctx, user); err != nil {
			return err
		}

		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IsLoggedIn resolves username to its user when the session is still active.
// It returns nil when the user does not exist, when the session deadline is
// unset, or when the deadline is not strictly in the future.
func (s *ChatService) IsLoggedIn(ctx context.Context, username string) (*models.User, error) {
	if err := validate.Alphanumeric("username", username); err != nil {
		return nil, err
	}

	var result *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		found, err := s.repomanager.Users(tx).FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}
		user := found[0]
		if user.LoggedInUntil.IsZero() || !user.LoggedInUntil.After(time.Now().UTC()) {
			return nil
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddMessage stores a new message authored by the given user.
func (s *ChatService) AddMessage(ctx context.Context, text string, author *models.User) (*models.Message, error) {
	if err := validate.NonEmpty("msg", text); err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author must be a user", common.ErrorValidation)
	}
	if err := validate.PositiveID("author.id", author.ID); err != nil {
		return nil, err
	}

	var result *models.Message
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Msgs(tx).Create(ctx, text, author)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindMessage returns the message with the given id, or nil when absent or
// soft-deleted.
func (s *ChatService) FindMessage(ctx context.Context, id int64) (*models.Message, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}

	var result *models.Message
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Msgs(tx).FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindUser returns the user with the given id, or nil when absent.
func (s *ChatService) FindUser(ctx context.Context, id int64) (*models.User, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}

	var result *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Users(tx).FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindAllMessages returns every live message in store order.
func (s *ChatService) FindAllMessages(ctx context.Context) ([]*models.Message, error) {
	var result []*models.Message
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Msgs(tx).FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteMessage soft-deletes the message with the given id. Deleting an
// absent or already-deleted message is not an error.
func (s *ChatService) DeleteMessage(ctx context.Context, id int64) error {
	if err := validate.PositiveID("id", id); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Msgs(tx).Delete(ctx, id)
	})
}
