// Package msgs provides the PostgreSQL-backed DAO for the msgs table.
package msgs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mviktors/minichat/internal/common"
	"github.com/mviktors/minichat/internal/dbx"
	"github.com/mviktors/minichat/internal/server/models"
	"github.com/mviktors/minichat/internal/validate"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanMessage(row interface{ Scan(dest ...any) error }) (*models.Message, error) {
	var (
		id, authorID                 int64
		text, username               string
		createdAt, updatedAt         time.Time
		loggedInUntil                time.Time
		authorCreated, authorUpdated time.Time
	)
	err := row.Scan(&id, &text, &createdAt, &updatedAt,
		&authorID, &username, &loggedInUntil, &authorCreated, &authorUpdated)
	if err != nil {
		return nil, err
	}
	author, err := models.NewUser(authorID, username, loggedInUntil, authorCreated, authorUpdated)
	if err != nil {
		return nil, err
	}
	return models.NewMessage(id, text, author, createdAt, updatedAt)
}

func (r *PostgresRepository) Create(ctx context.Context, text string, author *models.User) (*models.Message, error) {
	if err := validate.NonEmpty("msg", text); err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("%w: author must be a user", common.ErrorValidation)
	}
	if err := validate.PositiveID("author.id", author.ID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO msgs (msg, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, text, author.ID).
		Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message for user %d: %w", author.ID, err)
	}

	return models.NewMessage(id, text, author, createdAt, updatedAt)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Message, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}

	query := `
		SELECT m.id, m.msg, m.created_at, m.updated_at,
		       u.id, u.username, u.logged_in_until, u.created_at, u.updated_at
		FROM msgs m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = $1 AND m.deleted_at IS NULL
	`
	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find message by id %d: %w", id, err)
	}
	return msg, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.msg, m.created_at, m.updated_at,
		       u.id, u.username, u.logged_in_until, u.created_at, u.updated_at
		FROM msgs m
		JOIN users u ON u.id = m.user_id
		WHERE m.deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find all messages: %w", err)
	}
	defer rows.Close()

	result := []*models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("find all messages: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find all messages: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if err := validate.PositiveID("id", id); err != nil {
		return err
	}

	query := `
		UPDATE msgs SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	return nil
}
