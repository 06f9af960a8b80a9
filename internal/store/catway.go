package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/port-russell/marina/types"
)

// CatwayRepository handles persistence for catways.
type CatwayRepository struct {
	db *sql.DB
}

func NewCatwayRepository(db *sql.DB) *CatwayRepository {
	return &CatwayRepository{db: db}
}

const catwayColumns = `id, catway_number, catway_type, catway_state, created_at, updated_at`

func scanCatway(row interface{ Scan(...any) error }) (types.Catway, error) {
	var catway types.Catway
	err := row.Scan(
		&catway.ID,
		&catway.Number,
		&catway.Type,
		&catway.State,
		&catway.CreatedAt,
		&catway.UpdatedAt,
	)
	return catway, err
}

func (r *CatwayRepository) List(ctx context.Context) ([]types.Catway, error) {
	const query = `SELECT ` + catwayColumns + ` FROM catways ORDER BY catway_number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catways := make([]types.Catway, 0)
	for rows.Next() {
		catway, err := scanCatway(rows)
		if err != nil {
			return nil, err
		}
		catways = append(catways, catway)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catways, nil
}

func (r *CatwayRepository) GetByNumber(ctx context.Context, number int) (types.Catway, error) {
	const query = `SELECT ` + catwayColumns + ` FROM catways WHERE catway_number = $1`
	catway, err := scanCatway(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Catway{}, ErrNotFound
		}
		return types.Catway{}, err
	}
	return catway, nil
}

const insertCatway = `
	INSERT INTO catways (id, catway_number, catway_type, catway_state, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *CatwayRepository) Create(ctx context.Context, catway types.Catway) (types.Catway, error) {
	now := time.Now().UTC()
	catway.ID = uuid.NewString()
	catway.CreatedAt = now
	catway.UpdatedAt = now

	if _, err := r.db.ExecContext(
		ctx,
		insertCatway,
		catway.ID,
		catway.Number,
		catway.Type,
		catway.State,
		catway.CreatedAt,
		catway.UpdatedAt,
	); err != nil {
		return types.Catway{}, translate(err)
	}
	return catway, nil
}

// Update rewrites the type and state of the catway identified by its number.
func (r *CatwayRepository) Update(ctx context.Context, catway types.Catway) (types.Catway, error) {
	catway.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE catways
		SET catway_type = $1,
			catway_state = $2,
			updated_at = $3
		WHERE catway_number = $4
		RETURNING id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		catway.Type,
		catway.State,
		catway.UpdatedAt,
		catway.Number,
	).Scan(&catway.ID, &catway.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Catway{}, ErrNotFound
		}
		return types.Catway{}, err
	}
	return catway, nil
}

func (r *CatwayRepository) Delete(ctx context.Context, number int) error {
	const query = `DELETE FROM catways WHERE catway_number = $1`
	result, err := r.db.ExecContext(ctx, query, number)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMany stores all catways in a single transaction.
func (r *CatwayRepository) InsertMany(ctx context.Context, catways []types.Catway) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for i, catway := range catways {
		if _, err := tx.ExecContext(
			ctx,
			insertCatway,
			uuid.NewString(),
			catway.Number,
			catway.Type,
			catway.State,
			now,
			now,
		); err != nil {
			return 0, fmt.Errorf("insert catway %d (record %d): %w", catway.Number, i, translate(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(catways), nil
}
