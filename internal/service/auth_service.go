package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/events"
	"github.com/spec-kit/inventory-service/internal/limiter"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// MsgInvalidCredentials is returned for unknown emails and wrong passwords alike.
const MsgInvalidCredentials = "invalid credentials"

// Password length bounds; bcryptlen caps the encoded size as well as the rune count.
const passwordRule = "required,min=8,max=72,bcryptlen"

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Name     string      `validate:"required,min=3,max=50"`
	Email    string      `validate:"required,email,max=255"`
	Role     domain.Role `validate:"omitempty,oneof=ADMIN USER"`
	Password string      `validate:"required,min=8,max=72,bcryptlen"`
}

// LoginInput carries credentials plus the caller address used for throttling.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	ClientIP string
}

// Session is the result of a successful login or registration.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	limiter    limiter.Limiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Limiter    limiter.Limiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	if s.limiter == nil {
		s.limiter = limiter.Noop{}
	}
	if s.dispatcher == nil {
		s.dispatcher = events.NewInMemoryDispatcher()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Register creates a new account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can pass the lookup above; the unique index decides.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventAccountRegistered, user.ID, events.Actor{}, nil))
	return session, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(in.Email)
	ipHash := limiter.HashIP(in.ClientIP)

	allowed, retryAfter, err := s.limiter.Allow(ctx, email, ipHash)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, apperrors.NewTooManyRequests("too many failed login attempts; retry in " + retryAfter.Round(time.Second).String())
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		s.hasher.Burn(in.Password)
		return nil, s.loginFailed(ctx, email, ipHash)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, email, ipHash)
	}

	if err := s.limiter.Success(ctx, email, ipHash); err != nil {
		s.logger.Warn("login limiter reset failed", zap.Error(err))
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventAccountLoggedIn, user.ID, events.Actor{SubjectID: user.ID, Role: user.Role}, nil))
	return session, nil
}

// ChangePassword verifies the current password before storing a hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Identity, currentPassword, newPassword string) error {
	details := map[string]any{}
	validateField(details, "current_password", currentPassword, "required")
	validateField(details, "new_password", newPassword, passwordRule)
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid input", details)
	}

	user, err := s.users.GetByID(ctx, actor.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized(auth.MsgAuthInvalid)
		}
		return apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventAccountPasswordChanged, user.ID, events.ActorFrom(actor), nil))
	return nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, ipHash string) error {
	blocked, _, err := s.limiter.Failure(ctx, email, ipHash)
	if err != nil {
		s.logger.Warn("login limiter failure not recorded", zap.Error(err))
	}
	s.publish(ctx, events.New(events.EventAccountLoginFailed, "", events.Actor{}, events.LoginFailedPayload{Email: email, Blocked: blocked}))
	return apperrors.NewUnauthorized(MsgInvalidCredentials)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
