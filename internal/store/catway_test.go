package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/port-russell/marina/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catwayRowColumns = []string{"id", "catway_number", "catway_type", "catway_state", "created_at", "updated_at"}

func TestCatwayRepository_ListOrdersByNumber(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM catways ORDER BY catway_number")).
		WillReturnRows(sqlmock.NewRows(catwayRowColumns).
			AddRow("a", 1, "short", "bon état", now, now).
			AddRow("b", 2, "long", "à repeindre", now, now))

	catways, err := NewCatwayRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, catways, 2)
	assert.Equal(t, 1, catways[0].Number)
	assert.Equal(t, types.CatwayLong, catways[1].Type)
}

func TestCatwayRepository_GetByNumberNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM catways WHERE catway_number = $1")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(catwayRowColumns))

	_, err := NewCatwayRepository(db).GetByNumber(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatwayRepository_CreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catways")).
		WithArgs(sqlmock.AnyArg(), 12, types.CatwayLong, "ouvert", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := NewCatwayRepository(db).Create(context.Background(), types.Catway{
		Number: 12,
		Type:   types.CatwayLong,
		State:  "ouvert",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCatwayRepository_CreateDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catways")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := NewCatwayRepository(db).Create(context.Background(), types.Catway{Number: 12, Type: types.CatwayShort, State: "ok"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCatwayRepository_UpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE catways")).
		WithArgs(types.CatwayShort, "fermé", sqlmock.AnyArg(), 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	_, err := NewCatwayRepository(db).Update(context.Background(), types.Catway{Number: 7, Type: types.CatwayShort, State: "fermé"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatwayRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatwayRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catways WHERE catway_number = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM catways WHERE catway_number = $1")).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}

func TestCatwayRepository_InsertManyRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catways")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO catways")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	n, err := NewCatwayRepository(db).InsertMany(context.Background(), []types.Catway{
		{Number: 1, Type: types.CatwayShort, State: "ok"},
		{Number: 2, Type: types.CatwayLong, State: "ok"},
	})
	assert.Error(t, err)
	assert.Zero(t, n)
}
