package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/dayboard/internal/application/notelist"
	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/ports"
)

// Context keys set by the session middleware
const (
	ContextUserID = "user"
)

// AuthHandler handles sign-in and sign-up requests
type AuthHandler struct {
	sessions ports.SessionService
	logger   *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions ports.SessionService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// SignIn handles user sign-in
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req entities.SignInCredentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	session, err := h.sessions.SignIn(c.Request().Context(), req)
	if err != nil {
		return authError(err)
	}

	return c.JSON(http.StatusOK, session)
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req entities.SignUpCredentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	session, err := h.sessions.SignUp(c.Request().Context(), req)
	if err != nil {
		return authError(err)
	}

	return c.JSON(http.StatusCreated, session)
}

func authError(err error) error {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, entities.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "Authentication service unavailable").SetInternal(err)
	}
}

// NoteHandler handles note requests
type NoteHandler struct {
	notes  ports.NoteService
	logger *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes ports.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		notes:  notes,
		logger: logger,
	}
}

// ListNotes returns the user's notes filtered by the q query parameter
func (h *NoteHandler) ListNotes(c echo.Context) error {
	userID := getUserIDFromContext(c)

	search := notelist.New(h.notes.FetchUserNotes(c.Request().Context(), userID))
	search.SetQuery(c.QueryParam("q"))
	filtered := search.Filtered()

	return c.JSON(http.StatusOK, ports.NotesResponse{
		Query:   search.Query(),
		TagMode: search.TagMode(),
		Total:   len(search.Records()),
		Notes:   filtered,
	})
}

// RecentNotes returns the user's most recently updated notes
func (h *NoteHandler) RecentNotes(c echo.Context) error {
	userID := getUserIDFromContext(c)
	notes := h.notes.RecentNotes(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, ports.NotesResponse{
		Total: len(notes),
		Notes: notes,
	})
}

// TaskHandler handles task requests
type TaskHandler struct {
	tasks  ports.TaskService
	logger *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// ListTasks returns the user's tasks, newest first
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID := getUserIDFromContext(c)
	tasks := h.tasks.FetchUserTasks(c.Request().Context(), userID)

	return c.JSON(http.StatusOK, ports.TasksResponse{Tasks: tasks})
}

// UpdateTaskStatus sets a task's status
func (h *TaskHandler) UpdateTaskStatus(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID := c.Param("id")

	var req ports.UpdateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.tasks.UpdateTaskStatus(c.Request().Context(), userID, taskID, req.Status); err != nil {
		return taskError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// CycleTask advances a task to its next status and returns the refreshed list
func (h *TaskHandler) CycleTask(c echo.Context) error {
	userID := getUserIDFromContext(c)
	taskID := c.Param("id")

	tasks, err := h.tasks.CycleTask(c.Request().Context(), userID, taskID)
	if err != nil {
		return taskError(err)
	}

	return c.JSON(http.StatusOK, ports.TasksResponse{Tasks: tasks})
}

func taskError(err error) error {
	switch {
	case errors.Is(err, entities.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	case errors.Is(err, entities.ErrTaskNotFound), errors.Is(err, ports.ErrNoMatch):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to update task").SetInternal(err)
	}
}

// DashboardHandler assembles the dashboard view
type DashboardHandler struct {
	notes  ports.NoteService
	tasks  ports.TaskService
	logger *logger.Logger
	now    func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(notes ports.NoteService, tasks ports.TaskService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		notes:  notes,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// GetDashboard returns recent notes, all tasks and task counts per status
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)

	tasks := h.tasks.FetchUserTasks(ctx, userID)
	resp := ports.DashboardResponse{
		RecentNotes: h.notes.RecentNotes(ctx, userID),
		Tasks:       tasks,
		StatusCounts: map[entities.TaskStatus]int{
			entities.TaskStatusUncompleted: 0,
			entities.TaskStatusInProgress:  0,
			entities.TaskStatusCompleted:   0,
		},
	}

	now := h.now()
	for i := range tasks {
		resp.StatusCounts[tasks[i].Status]++
		if tasks[i].IsOverdue(now) {
			resp.Overdue++
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// CalendarHandler handles calendar event forms
type CalendarHandler struct {
	logger *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{logger: logger}
}

// ValidateEvent checks a calendar event form
func (h *CalendarHandler) ValidateEvent(c echo.Context) error {
	var event entities.CalendarEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := entities.ValidateCalendarEvent(&event); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, event)
}

// Utility functions

func getUserIDFromContext(c echo.Context) string {
	userID, _ := c.Get(ContextUserID).(string)
	return userID
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
