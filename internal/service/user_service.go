package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// UserService provides account registration and credential checks.
type UserService interface {
	// Register creates a user with the default role.
	// Returns store.ErrUsernameExists if the username is taken.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate returns the user matching the credentials.
	// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(users store.UserStore, hasher PasswordHasher, logger *slog.Logger) (*UserServiceImpl, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *UserServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		log.Warn("rejected registration", slog.String("error", err.Error()))
		return nil, domain.NewValidationError(registrationField(err), err.Error(), err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewUserServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("attempted to register an existing username",
				slog.String("username", user.Username))
			return nil, store.ErrUsernameExists
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return nil, NewUserServiceError("register", "failed to save user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, NewUserServiceError("authenticate", "failed to load user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	log.Info("user authenticated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("user not found", slog.String("user_id", userID.String()))
			return nil, err
		}
		log.Error("failed to retrieve user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewUserServiceError("get", "failed to retrieve user", err)
	}

	return user, nil
}

func registrationField(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyPassword), errors.Is(err, domain.ErrPasswordTooLong):
		return "password"
	default:
		return "username"
	}
}
