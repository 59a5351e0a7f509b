package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mviktors/minichat/internal/common"
	"github.com/mviktors/minichat/internal/server/models"
)

const (
	qFindByUsername = `(?s)^\s*SELECT\s+id,\s*username,\s*logged_in_until,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL\s*$`
	qFindByID       = `(?s)^\s*SELECT\s+id,\s*username,\s*logged_in_until,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL\s*$`
	qCreate         = `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*logged_in_until\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	qUpdate         = `(?s)^\s*UPDATE\s+users\s+SET\s+username\s*=\s*\$1,\s*logged_in_until\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4\s+AND\s+deleted_at\s+IS\s+NULL\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userColumns() []string {
	return []string{"id", "username", "logged_in_until", "created_at", "updated_at"}
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	epoch := time.Unix(0, 0).UTC()
	rows := sqlmock.NewRows(userColumns()).AddRow(int64(1), "alice", epoch, now, now)
	mock.ExpectQuery(qFindByUsername).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 || got[0].Username != "alice" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFindByUsername_NoMatchReturnsEmptySlice(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindByUsername).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	got, err := repo.FindByUsername(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestFindByUsername_RejectsInvalidUsername(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	for _, bad := range []string{"", "no spaces", "dash-ed"} {
		_, err := repo.FindByUsername(context.Background(), bad)
		if !errors.Is(err, common.ErrorValidation) {
			t.Fatalf("username %q: want validation error, got %v", bad, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should run on invalid input: %v", err)
	}
}

func TestFindByUsername_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindByUsername).WithArgs("alice").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByUsername(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`find user by username "alice": .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userColumns()).AddRow(int64(7), "bob", now.Add(time.Hour), now, now)
	mock.ExpectQuery(qFindByID).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil || got.ID != 7 || got.Username != "bob" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestFindByID_AbsentReturnsNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindByID).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("absent user must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("want nil user, got %+v", got)
	}
}

func TestFindByID_RejectsNonPositiveID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	for _, bad := range []int64{0, -1} {
		_, err := repo.FindByID(context.Background(), bad)
		if !errors.Is(err, common.ErrorValidation) {
			t.Fatalf("id %d: want validation error, got %v", bad, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should run on invalid input: %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindByID).WithArgs(int64(7)).
		WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), 7)
	if err == nil || !regexp.MustCompile(`find user by id 7: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now)
	mock.ExpectQuery(qCreate).WithArgs("alice", sqlmock.AnyArg()).WillReturnRows(rows)

	got, err := repo.Create(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LoggedInUntil.Unix() != 0 {
		t.Fatalf("new user session deadline must default to epoch, got %v", got.LoggedInUntil)
	}
}

func TestCreate_UniqueViolationPostgres(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qCreate).WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_live_idx"})

	_, err := repo.Create(context.Background(), "alice")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_UniqueViolationByMessage(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qCreate).WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.username"))

	_, err := repo.Create(context.Background(), "alice")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qCreate).WithArgs("alice", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`create user "alice": .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	until := time.Now().UTC().Add(24 * time.Hour)
	mock.ExpectExec(qUpdate).
		WithArgs("alice", until, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{ID: 1, Username: "alice", LoggedInUntil: until}
	if err := repo.Update(context.Background(), user); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NoMatchingRowIsNoError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	until := time.Now().UTC()
	mock.ExpectExec(qUpdate).
		WithArgs("ghost", until, sqlmock.AnyArg(), int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	user := &models.User{ID: 999, Username: "ghost", LoggedInUntil: until}
	if err := repo.Update(context.Background(), user); err != nil {
		t.Fatalf("zero matched rows must not be an error, got %v", err)
	}
}

func TestUpdate_RejectsInvalidUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	until := time.Now().UTC()
	tests := []struct {
		name string
		user *models.User
	}{
		{"nil user", nil},
		{"zero id", &models.User{ID: 0, Username: "alice", LoggedInUntil: until}},
		{"bad username", &models.User{ID: 1, Username: "", LoggedInUntil: until}},
		{"zero session deadline", &models.User{ID: 1, Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Update(context.Background(), tt.user); !errors.Is(err, common.ErrorValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should run on invalid input: %v", err)
	}
}

func TestUpdate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	until := time.Now().UTC()
	mock.ExpectExec(qUpdate).
		WithArgs("alice", until, sqlmock.AnyArg(), int64(1)).
		WillReturnError(errors.New("db err"))

	user := &models.User{ID: 1, Username: "alice", LoggedInUntil: until}
	err := repo.Update(context.Background(), user)
	if err == nil || !regexp.MustCompile(`update user 1: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
