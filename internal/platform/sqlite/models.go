package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

type userModel struct {
	ID             string    `gorm:"primarykey;size:36"`
	Username       string    `gorm:"size:80;not null;uniqueIndex"`
	HashedPassword string    `gorm:"size:255;not null"`
	Role           string    `gorm:"size:20;not null;default:user"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (userModel) TableName() string {
	return "users"
}

func newUserModel(u *domain.User) *userModel {
	return &userModel{
		ID:             u.ID.String(),
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
}

func (m *userModel) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", m.ID, err)
	}
	return &domain.User{
		ID:             id,
		Username:       m.Username,
		HashedPassword: m.HashedPassword,
		Role:           m.Role,
		CreatedAt:      m.CreatedAt.UTC(),
	}, nil
}

type taskModel struct {
	ID          int64     `gorm:"primarykey;autoIncrement"`
	UserID      string    `gorm:"size:36;not null;index:idx_tasks_user_done,priority:1"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Done        bool      `gorm:"not null;default:false;index:idx_tasks_user_done,priority:2"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func newTaskModel(t *domain.Task) *taskModel {
	return &taskModel{
		ID:          t.ID,
		UserID:      t.UserID.String(),
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *taskModel) toDomain() (*domain.Task, error) {
	owner, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt task owner %q: %w", m.UserID, err)
	}
	return &domain.Task{
		ID:          m.ID,
		UserID:      owner,
		Title:       m.Title,
		Description: m.Description,
		Done:        m.Done,
		CreatedAt:   m.CreatedAt.UTC(),
	}, nil
}
