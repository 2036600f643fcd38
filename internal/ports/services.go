package ports

import (
	"context"

	"github.com/taskmaster/dayboard/internal/domain/entities"
)

// NoteService interface for note read operations
type NoteService interface {
	FetchUserNotes(ctx context.Context, ownerID string) []entities.Note
	RecentNotes(ctx context.Context, ownerID string) []entities.Note
}

// TaskService interface for task operations
type TaskService interface {
	FetchUserTasks(ctx context.Context, ownerID string) []entities.Task
	UpdateTaskStatus(ctx context.Context, ownerID, taskID string, status entities.TaskStatus) error
	CycleTask(ctx context.Context, ownerID, taskID string) ([]entities.Task, error)
}

// SessionService interface for session lookup and credential flows
type SessionService interface {
	CurrentUserID(ctx context.Context, accessToken string) (string, bool)
	SignIn(ctx context.Context, creds entities.SignInCredentials) (*Session, error)
	SignUp(ctx context.Context, creds entities.SignUpCredentials) (*Session, error)
}

// Request/Response Types

type UpdateTaskStatusRequest struct {
	Status entities.TaskStatus `json:"status" validate:"required,oneof=uncompleted in_progress completed"`
}

type NotesResponse struct {
	Query   string          `json:"query"`
	TagMode bool            `json:"tag_mode"`
	Total   int             `json:"total"`
	Notes   []entities.Note `json:"notes"`
}

type TasksResponse struct {
	Tasks []entities.Task `json:"tasks"`
}

type DashboardResponse struct {
	RecentNotes  []entities.Note             `json:"recent_notes"`
	Tasks        []entities.Task             `json:"tasks"`
	StatusCounts map[entities.TaskStatus]int `json:"status_counts"`
	Overdue      int                         `json:"overdue"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
