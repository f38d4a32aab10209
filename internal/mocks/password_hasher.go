package mocks

import "errors"

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare on failure.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordHasher implements auth.PasswordHasher and auth.PasswordVerifier.
// By default Hash prefixes the password with "hashed:" and Compare checks for
// that prefix, so tests can round-trip credentials without bcrypt's cost.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return "hashed:" + password, nil
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if hashedPassword == "hashed:"+password {
		return nil
	}
	return ErrPasswordMismatch
}
