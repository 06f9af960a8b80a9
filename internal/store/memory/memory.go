// Package memory provides in-process repositories with the same contract as
// the Postgres ones in package store. It backs DB_DRIVER=memory and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/types"
)

// Store holds all three collections behind one lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]types.User
	catways      map[int]types.Catway
	reservations map[string]types.Reservation
	now          func() time.Time
}

func New() *Store {
	return &Store{
		users:        make(map[string]types.User),
		catways:      make(map[int]types.Catway),
		reservations: make(map[string]types.Reservation),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{s: s} }
func (s *Store) Catways() *CatwayRepository           { return &CatwayRepository{s: s} }
func (s *Store) Reservations() *ReservationRepository { return &ReservationRepository{s: s} }

// UserRepository is the in-memory users collection.
type UserRepository struct{ s *Store }

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]types.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Username != users[j].Username {
			return users[i].Username < users[j].Username
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, user := range r.s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return types.User{}, store.ErrConflict
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return types.User{}, store.ErrConflict
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// CatwayRepository is the in-memory catways collection, keyed by number.
type CatwayRepository struct{ s *Store }

func (r *CatwayRepository) List(ctx context.Context) ([]types.Catway, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	catways := make([]types.Catway, 0, len(r.s.catways))
	for _, catway := range r.s.catways {
		catways = append(catways, catway)
	}
	sort.Slice(catways, func(i, j int) bool { return catways[i].Number < catways[j].Number })
	return catways, nil
}

func (r *CatwayRepository) GetByNumber(ctx context.Context, number int) (types.Catway, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	catway, ok := r.s.catways[number]
	if !ok {
		return types.Catway{}, store.ErrNotFound
	}
	return catway, nil
}

func (r *CatwayRepository) Create(ctx context.Context, catway types.Catway) (types.Catway, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.catways[catway.Number]; exists {
		return types.Catway{}, store.ErrConflict
	}
	now := r.s.now()
	catway.ID = uuid.NewString()
	catway.CreatedAt = now
	catway.UpdatedAt = now
	r.s.catways[catway.Number] = catway
	return catway, nil
}

func (r *CatwayRepository) Update(ctx context.Context, catway types.Catway) (types.Catway, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.catways[catway.Number]
	if !ok {
		return types.Catway{}, store.ErrNotFound
	}
	current.Type = catway.Type
	current.State = catway.State
	current.UpdatedAt = r.s.now()
	r.s.catways[catway.Number] = current
	return current, nil
}

func (r *CatwayRepository) Delete(ctx context.Context, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.catways[number]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.catways, number)
	return nil
}

func (r *CatwayRepository) InsertMany(ctx context.Context, catways []types.Catway) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[int]struct{}, len(catways))
	for _, catway := range catways {
		if _, exists := r.s.catways[catway.Number]; exists {
			return 0, store.ErrConflict
		}
		if _, dup := seen[catway.Number]; dup {
			return 0, store.ErrConflict
		}
		seen[catway.Number] = struct{}{}
	}

	now := r.s.now()
	for _, catway := range catways {
		catway.ID = uuid.NewString()
		catway.CreatedAt = now
		catway.UpdatedAt = now
		r.s.catways[catway.Number] = catway
	}
	return len(catways), nil
}

// ReservationRepository is the in-memory reservations collection.
type ReservationRepository struct{ s *Store }

func (r *ReservationRepository) filter(keep func(types.Reservation) bool) []types.Reservation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reservations := make([]types.Reservation, 0)
	for _, reservation := range r.s.reservations {
		if keep(reservation) {
			reservations = append(reservations, reservation)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		if !reservations[i].StartDate.Equal(reservations[j].StartDate) {
			return reservations[i].StartDate.Before(reservations[j].StartDate)
		}
		return reservations[i].ID < reservations[j].ID
	})
	return reservations
}

func (r *ReservationRepository) List(ctx context.Context) ([]types.Reservation, error) {
	return r.filter(func(types.Reservation) bool { return true }), nil
}

func (r *ReservationRepository) ListByCatway(ctx context.Context, catwayNumber int) ([]types.Reservation, error) {
	return r.filter(func(res types.Reservation) bool { return res.CatwayNumber == catwayNumber }), nil
}

func (r *ReservationRepository) ListActive(ctx context.Context, asOf time.Time) ([]types.Reservation, error) {
	return r.filter(func(res types.Reservation) bool { return res.ActiveAt(asOf) }), nil
}

func (r *ReservationRepository) Get(ctx context.Context, id string) (types.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reservation, ok := r.s.reservations[id]
	if !ok {
		return types.Reservation{}, store.ErrNotFound
	}
	return reservation, nil
}

func (r *ReservationRepository) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	reservation.ID = uuid.NewString()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	r.s.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (r *ReservationRepository) Update(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.reservations[reservation.ID]
	if !ok {
		return types.Reservation{}, store.ErrNotFound
	}
	reservation.CreatedAt = current.CreatedAt
	reservation.UpdatedAt = r.s.now()
	r.s.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reservations[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

func (r *ReservationRepository) InsertMany(ctx context.Context, reservations []types.Reservation) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for _, reservation := range reservations {
		reservation.ID = uuid.NewString()
		reservation.CreatedAt = now
		reservation.UpdatedAt = now
		r.s.reservations[reservation.ID] = reservation
	}
	return len(reservations), nil
}
