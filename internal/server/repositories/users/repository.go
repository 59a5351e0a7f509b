package users

import (
	"context"

	"github.com/mviktors/minichat/internal/server/models"
)

// Repository is the user DAO. Implementations are bound to a dbx.DBTX at
// construction: bind *sql.DB for standalone reads, bind the *sql.Tx supplied
// by the service to participate in its transaction.
type Repository interface {
	// FindByUsername returns every live user with the given username. The
	// result is an empty slice, never nil, when nothing matches.
	FindByUsername(ctx context.Context, username string) ([]*models.User, error)

	// FindByID returns the live user with the given id, or nil when absent.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Create inserts a new user with a store-assigned id, store timestamps
	// and a session deadline defaulted to the Unix epoch. A username already
	// taken by a live row yields common.ErrorAlreadyExists.
	Create(ctx context.Context, username string) (*models.User, error)

	// Update persists username and logged_in_until for the row matching
	// user.ID and bumps updated_at. Matching no row is not an error.
	Update(ctx context.Context, user *models.User) error
}
