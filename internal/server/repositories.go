package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/port-russell/marina/config"
	"github.com/port-russell/marina/internal/db"
	"github.com/port-russell/marina/internal/importer"
	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/internal/store/memory"
)

// CatwayRepository is what both the registry and the importer need.
type CatwayRepository interface {
	services.CatwayRepository
	importer.CatwayStore
}

// ReservationRepository is what both the ledger and the importer need.
type ReservationRepository interface {
	services.ReservationRepository
	importer.ReservationStore
}

// Repositories bundles the persistence backend selected by DB_DRIVER.
type Repositories struct {
	Users        services.UserRepository
	Catways      CatwayRepository
	Reservations ReservationRepository

	db *sql.DB
}

// OpenRepositories connects to Postgres, or builds an empty in-memory store
// when the driver is "memory".
func OpenRepositories(ctx context.Context, cfg config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case "memory":
		return MemoryRepositories(memory.New()), nil
	case "", "postgres":
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:        store.NewUserRepository(dbConn),
			Catways:      store.NewCatwayRepository(dbConn),
			Reservations: store.NewReservationRepository(dbConn),
			db:           dbConn,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// MemoryRepositories exposes an in-memory store through Repositories.
func MemoryRepositories(mem *memory.Store) *Repositories {
	return &Repositories{
		Users:        mem.Users(),
		Catways:      mem.Catways(),
		Reservations: mem.Reservations(),
	}
}

// Close releases the database pool, if any.
func (r *Repositories) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
