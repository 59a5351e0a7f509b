package msgs

import (
	"context"

	"github.com/mviktors/minichat/internal/server/models"
)

// Repository is the message DAO. Implementations are bound to a dbx.DBTX at
// construction: bind *sql.DB for standalone reads, bind the *sql.Tx supplied
// by the service to participate in its transaction.
type Repository interface {
	// Create inserts a new message referencing author.ID and returns the DTO
	// built from the inserted row plus the caller-supplied author. The author
	// is not re-fetched.
	Create(ctx context.Context, text string, author *models.User) (*models.Message, error)

	// FindByID returns the live message with the given id joined to its
	// author, or nil when absent or soft-deleted.
	FindByID(ctx context.Context, id int64) (*models.Message, error)

	// FindAll returns every live message joined to its author, in store
	// order. The result is an empty slice, never nil, when nothing matches.
	FindAll(ctx context.Context) ([]*models.Message, error)

	// Delete soft-deletes the message by setting deleted_at. Matching no row
	// is not an error.
	Delete(ctx context.Context, id int64) error
}
