package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = validator.New()

// ReadBody reads the request body up to MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	return body, nil
}

// DecodeJSON decodes the request body into v. Any decoding problem is
// reported as domain.ErrInvalidFormat.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := ReadBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	return nil
}

// ValidateRequest validates the given struct using its `validate` tags.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}
