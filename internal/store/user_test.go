package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/port-russell/marina/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepository_GetByEmailIsCaseInsensitive(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("Admin@Port.fr").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow("u1", "admin", "admin@port.fr", "hash", now, now))

	user, err := NewUserRepository(db).GetByEmail(context.Background(), "Admin@Port.fr")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := NewUserRepository(db).Create(context.Background(), types.User{Username: "a", Email: "a@b.c", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepository_UpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	_, err := NewUserRepository(db).Update(context.Background(), types.User{ID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewUserRepository(db).Delete(context.Background(), "nope"), ErrNotFound)
}
