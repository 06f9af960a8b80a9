package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/events"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/internal/store/memory"
)

func newUserService(t *testing.T) (*UserService, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	return NewUserService(memory.New().Users(), auth.NewHasher(bcrypt.MinCost), notifier), notifier
}

func TestUserService_CreateHashesPassword(t *testing.T) {
	svc, notifier := newUserService(t)

	user, err := svc.Create(context.Background(), UserInput{Username: "captain", Email: " Captain@Port.fr ", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "captain@port.fr", user.Email)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.Equal(t, []string{events.UserCreated}, notifier.types())
}

func TestUserService_CreateValidation(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Create(context.Background(), UserInput{Email: "not-an-email"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "username")
	assert.Contains(t, vErr.FieldErrors, "email")
	assert.Contains(t, vErr.FieldErrors, "password")
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	_, err := svc.Create(ctx, UserInput{Username: "a", Email: "a@port.fr", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, UserInput{Username: "b", Email: "A@PORT.FR", Password: "pw"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "email")
}

func TestUserService_UpdateBlankPasswordKeepsHash(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	created, err := svc.Create(ctx, UserInput{Username: "a", Email: "a@port.fr", Password: "old"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UserInput{Username: "renamed", Email: "a@port.fr"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)

	_, err = svc.Authenticate(ctx, "a@port.fr", "old")
	assert.NoError(t, err)
}

func TestUserService_UpdateRehashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newUserService(t)

	created, err := svc.Create(ctx, UserInput{Username: "a", Email: "a@port.fr", Password: "old"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UserInput{Username: "a", Email: "a@port.fr", Password: "new"})
	require.NoError(t, err)
	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)

	_, err = svc.Authenticate(ctx, "a@port.fr", "old")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "a@port.fr", "new")
	assert.NoError(t, err)
	assert.Equal(t, []string{events.UserCreated, events.UserUpdated}, notifier.types())
}

func TestUserService_UpdateMissing(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Update(context.Background(), "missing", UserInput{Username: "a", Email: "a@port.fr"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserService_AuthenticateIsGeneric(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	_, err := svc.Create(ctx, UserInput{Username: "a", Email: "a@port.fr", Password: "right"})
	require.NoError(t, err)

	_, unknownErr := svc.Authenticate(ctx, "nobody@port.fr", "right")
	_, wrongErr := svc.Authenticate(ctx, "a@port.fr", "wrong")
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	user, err := svc.Authenticate(ctx, "A@Port.fr", "right")
	require.NoError(t, err)
	assert.Equal(t, "a@port.fr", user.Email)
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	created, err := svc.Create(ctx, UserInput{Username: "a", Email: "a@port.fr", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), store.ErrNotFound)
}

func TestUserService_EnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)
	in := UserInput{Username: "admin", Email: "admin@port.fr", Password: "pw"}

	created, err := svc.EnsureUser(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx, UserInput{Username: "other", Email: "ADMIN@port.fr", Password: "changed"})
	require.NoError(t, err)
	assert.False(t, created)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}
