// Package users provides the PostgreSQL-backed DAO for the users table.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

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

// isUniqueViolation reports whether err is a unique-constraint failure.
// Postgres is matched by SQLSTATE 23505; other engines by message.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		id            int64
		username      string
		loggedInUntil time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)
	if err := row.Scan(&id, &username, &loggedInUntil, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.NewUser(id, username, loggedInUntil, createdAt, updatedAt)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) ([]*models.User, error) {
	if err := validate.Alphanumeric("username", username); err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, logged_in_until, created_at, updated_at FROM users
		WHERE username = $1 AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("find user by username %q: %w", username, err)
	}
	defer rows.Close()

	result := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("find user by username %q: %w", username, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find user by username %q: %w", username, err)
	}
	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, logged_in_until, created_at, updated_at FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, username string) (*models.User, error) {
	if err := validate.Alphanumeric("username", username); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (username, logged_in_until)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	loggedInUntil := time.Unix(0, 0).UTC()

	var (
		id        int64
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, username, loggedInUntil).
		Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create user %q: %w", username, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	return models.NewUser(id, username, loggedInUntil, createdAt, updatedAt)
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: user must not be nil", common.ErrorValidation)
	}
	if err := validate.PositiveID("user.id", user.ID); err != nil {
		return err
	}
	if err := validate.Alphanumeric("username", user.Username); err != nil {
		return err
	}
	if err := validate.NonZeroTime("loggedInUntil", user.LoggedInUntil); err != nil {
		return err
	}

	query := `
		UPDATE users SET username = $1, logged_in_until = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Username, user.LoggedInUntil, time.Now().UTC(), user.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}
