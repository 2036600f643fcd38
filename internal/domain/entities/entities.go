package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrMissingOwner       = errors.New("owner id is required")
)

// RecentNotesLimit is the number of notes shown in the dashboard's recent list.
const RecentNotesLimit = 5

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskStatusUncompleted TaskStatus = "uncompleted"
	TaskStatusInProgress  TaskStatus = "in_progress"
	TaskStatusCompleted   TaskStatus = "completed"
)

// Importance ranks how urgent a task is.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// Note is a free-form note owned by a single user.
type Note struct {
	ID          string   `json:"id" mapstructure:"id" validate:"required"`
	UserID      string   `json:"user_id" mapstructure:"user_id" validate:"required"`
	Title       string   `json:"title" mapstructure:"title" validate:"required"`
	Content     string   `json:"content" mapstructure:"content" validate:"required"`
	Tags        []string `json:"tags" mapstructure:"tags"`
	RelatedType *string  `json:"related_type" mapstructure:"related_type"`
	RelatedID   *string  `json:"related_id" mapstructure:"related_id"`
	CreatedAt   string   `json:"created_at" mapstructure:"created_at" validate:"required"`
	UpdatedAt   string   `json:"updated_at" mapstructure:"updated_at" validate:"required"`
	Starred     bool     `json:"starred" mapstructure:"starred"`
}

// Task is a to-do item owned by a single user.
type Task struct {
	ID          string     `json:"id" validate:"required"`
	UserID      string     `json:"user_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status" validate:"required,oneof=uncompleted in_progress completed"`
	Importance  Importance `json:"importance" validate:"required,oneof=high medium low"`
	DueDate     *time.Time `json:"dueDate"`
	Category    *string    `json:"category"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time  `json:"updatedAt" validate:"required"`
}

// SignInCredentials is the sign-in form.
type SignInCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignUpCredentials is the sign-up form.
type SignUpCredentials struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// CalendarEvent is an entry on the user's calendar.
type CalendarEvent struct {
	Title  string    `json:"title" validate:"required"`
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
	AllDay bool      `json:"allDay"`
	Notes  *string   `json:"notes"`
}

// IsOverdue reports whether the task is past its due date and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	return now.After(*t.DueDate) && t.Status != TaskStatusCompleted
}

// CycleTaskStatus returns the status that follows current in the
// uncompleted -> in_progress -> completed -> uncompleted rotation.
// Unknown values restart the cycle at uncompleted.
func CycleTaskStatus(current TaskStatus) TaskStatus {
	switch current {
	case TaskStatusUncompleted:
		return TaskStatusInProgress
	case TaskStatusInProgress:
		return TaskStatusCompleted
	case TaskStatusCompleted:
		return TaskStatusUncompleted
	default:
		return TaskStatusUncompleted
	}
}

// RecentNotes returns at most RecentNotesLimit notes from the front of notes.
// Callers pass notes already ordered by recency.
func RecentNotes(notes []Note) []Note {
	if len(notes) <= RecentNotesLimit {
		return notes
	}
	return notes[:RecentNotesLimit]
}

// Utility methods
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusUncompleted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (i Importance) IsValid() bool {
	switch i {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	default:
		return false
	}
}
