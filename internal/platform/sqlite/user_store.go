package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
	"gorm.io/gorm"
)

// UserStore implements store.UserStore on top of GORM.
type UserStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStore creates a GORM-backed user store.
func NewUserStore(db *gorm.DB, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	if err := s.db.WithContext(ctx).Create(newUserModel(user)).Error; err != nil {
		if IsUniqueViolation(err) {
			log.Debug("username already taken", slog.String("username", user.Username))
			return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id = ?", id.String())
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username = ?", username)
}

func (s *UserStore) getOne(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).Where(cond, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to load user", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "failed to query user", MapError(err))
	}
	return m.toDomain()
}
