package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/events"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// UserInput carries the editable fields of a user. On update a blank
// Password keeps the stored hash.
type UserInput struct {
	Username string
	Email    string
	Password string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	hasher *auth.Hasher
	events events.Notifier
}

func NewUserService(repo UserRepository, hasher *auth.Hasher, notifier events.Notifier) *UserService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultCost)
	}
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &UserService{repo: repo, hasher: hasher, events: notifier}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (in UserInput) normalize() UserInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (in UserInput) validate(requirePassword bool) error {
	v := &ValidationError{}
	if in.Username == "" {
		v.add("username", "is required")
	}
	if in.Email == "" {
		v.add("email", "is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		v.add("email", "is not a valid address")
	}
	if requirePassword && in.Password == "" {
		v.add("password", "is required")
	}
	return v.errOrNil()
}

func (s *UserService) Create(ctx context.Context, in UserInput) (types.User, error) {
	in = in.normalize()
	if err := in.validate(true); err != nil {
		return types.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, err
	}

	created, err := s.repo.Create(ctx, types.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, fieldError("email", "is already registered")
		}
		return types.User{}, err
	}
	s.events.Notify(ctx, events.Event{Type: events.UserCreated, UserID: created.ID})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UserInput) (types.User, error) {
	in = in.normalize()
	if err := in.validate(false); err != nil {
		return types.User{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	existing.Username = in.Username
	existing.Email = in.Email
	if strings.TrimSpace(in.Password) != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return types.User{}, err
		}
		existing.PasswordHash = hash
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, fieldError("email", "is already registered")
		}
		return types.User{}, err
	}
	s.events.Notify(ctx, events.Event{Type: events.UserUpdated, UserID: updated.ID})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Notify(ctx, events.Event{Type: events.UserDeleted, UserID: id})
	return nil
}

// EnsureUser creates the account described by in unless its email is
// already registered. It reports whether an account was created.
func (s *UserService) EnsureUser(ctx context.Context, in UserInput) (bool, error) {
	in = in.normalize()
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	if _, err := s.Create(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate resolves the user owning email and checks password against
// the stored hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return types.User{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}
