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

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, catway_number, client_name, boat_name, start_date, end_date, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (types.Reservation, error) {
	var reservation types.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.CatwayNumber,
		&reservation.ClientName,
		&reservation.BoatName,
		&reservation.StartDate,
		&reservation.EndDate,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	return reservation, err
}

func (r *ReservationRepository) query(ctx context.Context, query string, args ...any) ([]types.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]types.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *ReservationRepository) List(ctx context.Context) ([]types.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_date, id`
	return r.query(ctx, query)
}

func (r *ReservationRepository) ListByCatway(ctx context.Context, catwayNumber int) ([]types.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE catway_number = $1 ORDER BY start_date, id`
	return r.query(ctx, query, catwayNumber)
}

// ListActive returns reservations whose period contains asOf, bounds included.
func (r *ReservationRepository) ListActive(ctx context.Context, asOf time.Time) ([]types.Reservation, error) {
	const query = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE start_date <= $1 AND end_date >= $1
		ORDER BY catway_number, start_date`
	return r.query(ctx, query, asOf)
}

func (r *ReservationRepository) Get(ctx context.Context, id string) (types.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return reservation, nil
}

const insertReservation = `
	INSERT INTO reservations (id, catway_number, client_name, boat_name, start_date, end_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *ReservationRepository) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	now := time.Now().UTC()
	reservation.ID = uuid.NewString()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	if _, err := r.db.ExecContext(
		ctx,
		insertReservation,
		reservation.ID,
		reservation.CatwayNumber,
		reservation.ClientName,
		reservation.BoatName,
		reservation.StartDate,
		reservation.EndDate,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	); err != nil {
		return types.Reservation{}, translate(err)
	}
	return reservation, nil
}

func (r *ReservationRepository) Update(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	reservation.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE reservations
		SET catway_number = $1,
			client_name = $2,
			boat_name = $3,
			start_date = $4,
			end_date = $5,
			updated_at = $6
		WHERE id = $7
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		reservation.CatwayNumber,
		reservation.ClientName,
		reservation.BoatName,
		reservation.StartDate,
		reservation.EndDate,
		reservation.UpdatedAt,
		reservation.ID,
	).Scan(&reservation.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM reservations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

// InsertMany stores all reservations in a single transaction.
func (r *ReservationRepository) InsertMany(ctx context.Context, reservations []types.Reservation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for i, reservation := range reservations {
		if _, err := tx.ExecContext(
			ctx,
			insertReservation,
			uuid.NewString(),
			reservation.CatwayNumber,
			reservation.ClientName,
			reservation.BoatName,
			reservation.StartDate,
			reservation.EndDate,
			now,
			now,
		); err != nil {
			return 0, fmt.Errorf("insert reservation (record %d): %w", i, translate(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(reservations), nil
}
