package services

import (
	"context"
	"errors"
	"strings"

	"github.com/port-russell/marina/internal/events"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/types"
)

// CatwayRepository defines persistence operations for catways.
type CatwayRepository interface {
	List(ctx context.Context) ([]types.Catway, error)
	GetByNumber(ctx context.Context, number int) (types.Catway, error)
	Create(ctx context.Context, catway types.Catway) (types.Catway, error)
	Update(ctx context.Context, catway types.Catway) (types.Catway, error)
	Delete(ctx context.Context, number int) error
}

// CatwayService is the berth registry.
type CatwayService struct {
	repo   CatwayRepository
	events events.Notifier
}

func NewCatwayService(repo CatwayRepository, notifier events.Notifier) *CatwayService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &CatwayService{repo: repo, events: notifier}
}

// List returns all catways ordered by number.
func (s *CatwayService) List(ctx context.Context) ([]types.Catway, error) {
	return s.repo.List(ctx)
}

func (s *CatwayService) Get(ctx context.Context, number int) (types.Catway, error) {
	return s.repo.GetByNumber(ctx, number)
}

// ValidateCatway checks every field of a new catway.
func ValidateCatway(catway types.Catway) error {
	v := &ValidationError{}
	if catway.Number < 1 {
		v.add("catwayNumber", "must be a positive integer")
	}
	validateTypeAndState(v, catway.Type, catway.State)
	return v.errOrNil()
}

func validateTypeAndState(v *ValidationError, catwayType types.CatwayType, state string) {
	if !catwayType.Valid() {
		v.add("catwayType", "must be short or long")
	}
	if strings.TrimSpace(state) == "" {
		v.add("catwayState", "is required")
	}
}

func (s *CatwayService) Create(ctx context.Context, catway types.Catway) (types.Catway, error) {
	catway.Type = types.CatwayType(strings.ToLower(strings.TrimSpace(string(catway.Type))))
	catway.State = strings.TrimSpace(catway.State)
	if err := ValidateCatway(catway); err != nil {
		return types.Catway{}, err
	}

	created, err := s.repo.Create(ctx, catway)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Catway{}, fieldError("catwayNumber", "already exists")
		}
		return types.Catway{}, err
	}
	s.events.Notify(ctx, events.Event{Type: events.CatwayCreated, CatwayNumber: created.Number})
	return created, nil
}

// Update replaces the type and state of a catway. The number never changes.
func (s *CatwayService) Update(ctx context.Context, number int, catwayType types.CatwayType, state string) (types.Catway, error) {
	catwayType = types.CatwayType(strings.ToLower(strings.TrimSpace(string(catwayType))))
	state = strings.TrimSpace(state)

	v := &ValidationError{}
	validateTypeAndState(v, catwayType, state)
	if err := v.errOrNil(); err != nil {
		return types.Catway{}, err
	}

	updated, err := s.repo.Update(ctx, types.Catway{Number: number, Type: catwayType, State: state})
	if err != nil {
		return types.Catway{}, err
	}
	s.events.Notify(ctx, events.Event{Type: events.CatwayUpdated, CatwayNumber: number})
	return updated, nil
}

func (s *CatwayService) Delete(ctx context.Context, number int) error {
	if err := s.repo.Delete(ctx, number); err != nil {
		return err
	}
	s.events.Notify(ctx, events.Event{Type: events.CatwayDeleted, CatwayNumber: number})
	return nil
}
