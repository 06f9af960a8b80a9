package services

import (
	"context"
	"strings"
	"time"

	"github.com/port-russell/marina/internal/events"
	"github.com/port-russell/marina/types"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	List(ctx context.Context) ([]types.Reservation, error)
	ListByCatway(ctx context.Context, catwayNumber int) ([]types.Reservation, error)
	ListActive(ctx context.Context, asOf time.Time) ([]types.Reservation, error)
	Get(ctx context.Context, id string) (types.Reservation, error)
	Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error)
	Update(ctx context.Context, reservation types.Reservation) (types.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// ReservationService is the reservation ledger.
//
// Reservations reference catways by number only. Neither the existence of
// the catway nor overlaps with other reservations are checked.
type ReservationService struct {
	repo   ReservationRepository
	events events.Notifier
	now    func() time.Time
}

func NewReservationService(repo ReservationRepository, notifier events.Notifier) *ReservationService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &ReservationService{repo: repo, events: notifier, now: time.Now}
}

func (s *ReservationService) List(ctx context.Context) ([]types.Reservation, error) {
	return s.repo.List(ctx)
}

func (s *ReservationService) ListByCatway(ctx context.Context, catwayNumber int) ([]types.Reservation, error) {
	return s.repo.ListByCatway(ctx, catwayNumber)
}

// ListActive returns reservations with StartDate <= asOf <= EndDate.
// A zero asOf means now.
func (s *ReservationService) ListActive(ctx context.Context, asOf time.Time) ([]types.Reservation, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.repo.ListActive(ctx, asOf)
}

func (s *ReservationService) Get(ctx context.Context, id string) (types.Reservation, error) {
	return s.repo.Get(ctx, id)
}

// ValidateReservation checks the mutable fields of a reservation.
func ValidateReservation(r types.Reservation) error {
	v := &ValidationError{}
	if r.CatwayNumber < 1 {
		v.add("catwayNumber", "must be a positive integer")
	}
	if strings.TrimSpace(r.ClientName) == "" {
		v.add("clientName", "is required")
	}
	if strings.TrimSpace(r.BoatName) == "" {
		v.add("boatName", "is required")
	}
	if r.StartDate.IsZero() {
		v.add("startDate", "is required")
	}
	if r.EndDate.IsZero() {
		v.add("endDate", "is required")
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		v.add("endDate", "must not be before startDate")
	}
	return v.errOrNil()
}

func normalizeReservation(r types.Reservation) types.Reservation {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.BoatName = strings.TrimSpace(r.BoatName)
	return r
}

func (s *ReservationService) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	reservation = normalizeReservation(reservation)
	if err := ValidateReservation(reservation); err != nil {
		return types.Reservation{}, err
	}

	created, err := s.repo.Create(ctx, reservation)
	if err != nil {
		return types.Reservation{}, err
	}
	s.events.Notify(ctx, events.Event{
		Type:          events.ReservationCreated,
		CatwayNumber:  created.CatwayNumber,
		ReservationID: created.ID,
	})
	return created, nil
}

// Update replaces every mutable field of the reservation identified by reservation.ID.
func (s *ReservationService) Update(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	reservation = normalizeReservation(reservation)
	if err := ValidateReservation(reservation); err != nil {
		return types.Reservation{}, err
	}

	updated, err := s.repo.Update(ctx, reservation)
	if err != nil {
		return types.Reservation{}, err
	}
	s.events.Notify(ctx, events.Event{
		Type:          events.ReservationUpdated,
		CatwayNumber:  updated.CatwayNumber,
		ReservationID: updated.ID,
	})
	return updated, nil
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Notify(ctx, events.Event{Type: events.ReservationDeleted, ReservationID: id})
	return nil
}
