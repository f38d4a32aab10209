package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles carried in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Length limits for user credentials. Passwords are capped at bcrypt's input limit.
const (
	MaxUsernameLength = 80
	MaxPasswordLength = 72
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 80 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidRole         = errors.New("invalid role")
)

// User represents a registered account. Every task belongs to exactly one user.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Role           string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a new User with the given username and password.
// It generates a new UUID for the user ID, assigns the default role and sets
// the creation timestamp. Returns an error if validation fails.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(username, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Password:  password,
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len([]rune(u.Username)) > MaxUsernameLength {
		return ErrUsernameTooLong
	}

	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}

	// A plaintext password is present only during registration; stored
	// users must carry a hash instead.
	if u.Password != "" {
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
