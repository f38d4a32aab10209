package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 255

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrTitleTooLong  = errors.New("title must be at most 255 characters long")
	ErrEmptyTaskUser = errors.New("task owner cannot be empty")
)

// Task is a single to-do item owned by one user.
// The ID is assigned by the store on insert and increases monotonically.
type Task struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskDraft is a validated create payload. Description stays nil when the
// client did not send one.
type TaskDraft struct {
	Title       string
	Description *string
	Done        bool
}

// NewTask builds a task for owner from a draft. The owner always comes from
// the verified identity, never from client input.
func NewTask(owner uuid.UUID, draft TaskDraft) (*Task, error) {
	task := &Task{
		UserID:      owner,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Done:        draft.Done,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task invariants.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUser
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(t.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ApplyPatch overwrites the fields present in p and leaves the rest untouched.
func (t *Task) ApplyPatch(p TaskPatch) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Done.Set {
		t.Done = p.Done.Value
	}
}

// Optional distinguishes "field absent" from "field present with zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// TaskPatch is a partial update. A present Description with a nil Value
// clears the description.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Done        Optional[bool]
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Done.Set
}

// Fields lists the names of the fields present in the patch.
func (p TaskPatch) Fields() []string {
	fields := make([]string, 0, 3)
	if p.Title.Set {
		fields = append(fields, "title")
	}
	if p.Description.Set {
		fields = append(fields, "description")
	}
	if p.Done.Set {
		fields = append(fields, "done")
	}
	return fields
}

// Listing defaults and limits.
const (
	DefaultPage    = 1
	DefaultPerPage = 5
	MaxPerPage     = 100
)

// TaskQuery selects one page of an owner's tasks, optionally filtered by completion.
type TaskQuery struct {
	Page    int
	PerPage int
	Done    *bool
}

// Validate checks that the page coordinates are usable.
func (q TaskQuery) Validate() error {
	ve := &ValidationError{}
	if q.Page < 1 {
		ve.Add("page", "Must be greater than or equal to 1.")
	}
	if q.PerPage < 1 {
		ve.Add("per_page", "Must be greater than or equal to 1.")
	} else if q.PerPage > MaxPerPage {
		ve.Add("per_page", "Must be less than or equal to 100.")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Offset returns the number of rows preceding the requested page. It
// saturates at math.MaxInt instead of overflowing for very large pages.
func (q TaskQuery) Offset() int {
	if q.Page < 1 || q.PerPage < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PerPage {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PerPage
}

// Beyond reports whether the requested page starts past the last of total rows.
func (q TaskQuery) Beyond(total int64) bool {
	return int64(q.Offset()) >= total
}

// TaskPage is one page of a listing together with its pagination metadata.
type TaskPage struct {
	Tasks   []*Task `json:"tasks"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	Pages   int     `json:"pages"`
	PerPage int     `json:"per_page"`
}

// NewTaskPage assembles a page, computing pages = ceil(total / per_page).
func NewTaskPage(tasks []*Task, total int64, q TaskQuery) *TaskPage {
	if tasks == nil {
		tasks = []*Task{}
	}

	pages := 0
	if q.PerPage > 0 && total > 0 {
		pages = int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	}

	return &TaskPage{
		Tasks:   tasks,
		Total:   total,
		Page:    q.Page,
		Pages:   pages,
		PerPage: q.PerPage,
	}
}
