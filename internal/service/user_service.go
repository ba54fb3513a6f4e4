package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/service/auth"
	"github.com/pmackinlay/taskboard/internal/store"
)

// ErrInvalidCredentials indicates a login attempt with an unknown email or
// a wrong password. The API layer maps this to HTTP 401.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService provides user account operations. Plaintext passwords are
// hashed here; they never reach the store layer.
type UserService interface {
	// Register creates a new user account.
	Register(ctx context.Context, email, displayName, password string) (*domain.User, error)

	// Authenticate verifies an email and password pair and returns the
	// matching user, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// UpdateUser modifies a user's email, display name and, when password
	// is non-empty, their password.
	UpdateUser(ctx context.Context, id uuid.UUID, email, displayName, password string) (*domain.User, error)

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// MemberGroups returns the names of the groups the user belongs to.
	MemberGroups(ctx context.Context, id uuid.UUID) ([]string, error)
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	users      store.UserStore
	groups     store.GroupStore
	verifier   auth.PasswordVerifier
	bcryptCost int
	logger     *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
// It panics if any required dependency is nil.
func NewUserService(
	users store.UserStore,
	groups store.GroupStore,
	verifier auth.PasswordVerifier,
	bcryptCost int,
	log *slog.Logger,
) UserService {
	if users == nil {
		panic("userService requires a non-nil user store")
	}
	if groups == nil {
		panic("userService requires a non-nil group store")
	}
	if verifier == nil {
		panic("userService requires a non-nil password verifier")
	}
	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		users:      users,
		groups:     groups,
		verifier:   verifier,
		bcryptCost: bcryptCost,
		logger:     log.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, email, displayName, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, displayName, password)
	if err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("email", user.Email))
	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Same error as a wrong password so responses do not reveal
			// which emails are registered.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	email, displayName, password string,
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if displayName != "" {
		user.DisplayName = displayName
	}
	if password != "" {
		if len(password) < 8 {
			return nil, domain.ErrPasswordTooShort
		}
		if len(password) > 72 {
			return nil, domain.ErrPasswordTooLong
		}
		hashed, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.HashedPassword = hashed
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser implements UserService.DeleteUser
func (s *userServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}

// MemberGroups implements UserService.MemberGroups
func (s *userServiceImpl) MemberGroups(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.groups.ListMemberGroups(ctx, id)
}
