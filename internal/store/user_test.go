package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/musiccompanion/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "name", "email", "password_hash", "is_admin", "is_banned",
	"ban_reason", "banned_at", "banned_by", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepository_GetActiveByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 AND is_banned = FALSE`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "Ana", "ana@example.com", "hash", false, false, nil, nil, nil, now, now))

	user, err := repo.GetActiveByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Nil(t, user.BanReason)
	assert.Nil(t, user.BannedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetActiveByID_BannedIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 AND is_banned = FALSE`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetActiveByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(sqlmock.AnyArg(), "Ana", "ana@example.com", "hash", false, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.Create(context.Background(), types.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Create(context.Background(), types.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Ban(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()
	admin := uuid.New()
	reason := "spam"
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(&reason, sqlmock.AnyArg(), admin, id).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "Bo", "bo@example.com", "hash", false, true, reason, now, admin.String(), now, now))

	user, err := repo.Ban(context.Background(), id, &reason, admin)
	require.NoError(t, err)
	assert.True(t, user.IsBanned)
	require.NotNil(t, user.BanReason)
	assert.Equal(t, "spam", *user.BanReason)
	require.NotNil(t, user.BannedBy)
	assert.Equal(t, admin, *user.BannedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Unban_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.Unban(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_BannedFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	banned := true
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE is_banned = $1 ORDER BY created_at DESC`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "Bo", "bo@example.com", "hash", false, true, nil, now, nil, now, now))

	users, err := repo.List(context.Background(), types.UserFilter{Banned: &banned})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsBanned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Counts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1), COUNT(1) FILTER (WHERE is_banned) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "banned"}).AddRow(7, 2))

	total, banned, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Equal(t, 2, banned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
