package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// Field messages returned to clients.
const (
	MsgRequired     = "Missing data for required field."
	MsgUnknownField = "Unknown field."
	MsgNotString    = "Not a valid string."
	MsgNotBoolean   = "Not a valid boolean."
	MsgNotNull      = "Field may not be null."
	MsgTooShort     = "Shorter than minimum length 1."
	MsgTooLong      = "Longer than maximum length 255."
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldDone        = "done"
)

var knownFields = map[string]bool{
	fieldTitle:       true,
	fieldDescription: true,
	fieldDone:        true,
}

var titleRule = fmt.Sprintf("min=1,max=%d", domain.MaxTitleLength)

// TaskValidator validates create and update payloads for tasks.
type TaskValidator struct {
	validate *validator.Validate
}

// NewTaskValidator creates a TaskValidator.
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validate: validator.New()}
}

// ValidateCreate checks a create payload. title is required; description and
// done are optional, with done defaulting to false.
func (v *TaskValidator) ValidateCreate(body []byte) (domain.TaskDraft, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return domain.TaskDraft{}, err
	}

	ve := &domain.ValidationError{}
	rejectUnknown(fields, ve)

	var draft domain.TaskDraft
	if raw, ok := fields[fieldTitle]; ok {
		if title, ok := v.title(raw, ve); ok {
			draft.Title = title
		}
	} else {
		ve.Add(fieldTitle, MsgRequired)
	}

	if raw, ok := fields[fieldDescription]; ok {
		if desc, ok := description(raw, ve); ok {
			draft.Description = desc
		}
	}

	if raw, ok := fields[fieldDone]; ok {
		if done, ok := boolean(fieldDone, raw, ve); ok {
			draft.Done = done
		}
	}

	if ve.HasErrors() {
		return domain.TaskDraft{}, ve
	}
	return draft, nil
}

// ValidateUpdate checks a partial update payload. Any subset of the task
// fields may be present; an explicit null description clears it.
func (v *TaskValidator) ValidateUpdate(body []byte) (domain.TaskPatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return domain.TaskPatch{}, err
	}

	ve := &domain.ValidationError{}
	rejectUnknown(fields, ve)

	var patch domain.TaskPatch
	if raw, ok := fields[fieldTitle]; ok {
		if title, ok := v.title(raw, ve); ok {
			patch.Title = domain.Some(title)
		}
	}

	if raw, ok := fields[fieldDescription]; ok {
		if desc, ok := description(raw, ve); ok {
			patch.Description = domain.Some(desc)
		}
	}

	if raw, ok := fields[fieldDone]; ok {
		if done, ok := boolean(fieldDone, raw, ve); ok {
			patch.Done = domain.Some(done)
		}
	}

	if ve.HasErrors() {
		return domain.TaskPatch{}, ve
	}
	return patch, nil
}

// decodeObject requires body to be a single JSON object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: request body must be a JSON object", domain.ErrInvalidFormat)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", domain.ErrInvalidFormat, err)
	}
	return fields, nil
}

func rejectUnknown(fields map[string]json.RawMessage, ve *domain.ValidationError) {
	for name := range fields {
		if !knownFields[name] {
			ve.Add(name, MsgUnknownField)
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func (v *TaskValidator) title(raw json.RawMessage, ve *domain.ValidationError) (string, bool) {
	if isNull(raw) {
		ve.Add(fieldTitle, MsgNotNull)
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		ve.Add(fieldTitle, MsgNotString)
		return "", false
	}

	s = strings.TrimSpace(s)
	if err := v.validate.Var(s, titleRule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			ve.Add(fieldTitle, MsgTooLong)
		} else {
			ve.Add(fieldTitle, MsgTooShort)
		}
		return "", false
	}

	return s, true
}

// description returns nil for an explicit null.
func description(raw json.RawMessage, ve *domain.ValidationError) (*string, bool) {
	if isNull(raw) {
		return nil, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		ve.Add(fieldDescription, MsgNotString)
		return nil, false
	}
	return &s, true
}

func boolean(field string, raw json.RawMessage, ve *domain.ValidationError) (bool, bool) {
	if isNull(raw) {
		ve.Add(field, MsgNotNull)
		return false, false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		ve.Add(field, MsgNotBoolean)
		return false, false
	}
	return b, true
}
