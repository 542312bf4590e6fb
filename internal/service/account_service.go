package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AccountService manages the /api/users resource on behalf of an authenticated caller.
type AccountService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAccountService constructs the service.
func NewAccountService(users repository.UserRepository, hasher *auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *AccountService {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// Get returns a single account. Callers may read themselves; admins may read anyone.
func (s *AccountService) Get(ctx context.Context, actor domain.Identity, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if !actor.CanAccess(id) {
		return nil, apperrors.NewForbidden("not allowed to access this user")
	}
	return s.load(ctx, id)
}

// List pages through all accounts. Admin only.
func (s *AccountService) List(ctx context.Context, actor domain.Identity, limit, offset int) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// Update applies a partial patch. The password is re-hashed only when the patch carries one.
func (s *AccountService) Update(ctx context.Context, actor domain.Identity, id string, patch domain.UserPatch) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if !actor.CanAccess(id) {
		return nil, apperrors.NewForbidden("not allowed to modify this user")
	}
	if patch.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if patch.Role != nil && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required to change role")
	}

	details := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		validateField(details, "name", name, "required,min=3,max=50")
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		patch.Email = &email
		validateField(details, "email", email, "required,email,max=255")
	}
	if patch.Password != nil {
		validateField(details, "password", *patch.Password, passwordRule)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		details["role"] = "role must be one of: ADMIN USER"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid input", details)
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []string
	if patch.Name != nil {
		user.Name = *patch.Name
		fields = append(fields, "name")
	}
	if patch.Email != nil {
		user.Email = *patch.Email
		fields = append(fields, "email")
	}
	if patch.Role != nil {
		user.Role = *patch.Role
		fields = append(fields, "role")
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
		fields = append(fields, "password")
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewConflict("email already registered", nil)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("user", nil)
		default:
			return nil, apperrors.NewInternalError(err)
		}
	}

	s.publish(ctx, events.New(events.EventAccountUpdated, user.ID, events.ActorFrom(actor), events.AccountUpdatedPayload{Fields: fields}))
	return user, nil
}

// Delete removes an account. Admin only.
func (s *AccountService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	if !validID(id) {
		return apperrors.NewNotFound("user", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventAccountDeleted, id, events.ActorFrom(actor), nil))
	return nil
}

func (s *AccountService) load(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// validID rejects ids that could never match a stored UUID.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
