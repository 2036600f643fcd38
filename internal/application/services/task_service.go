package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/infrastructure/metrics"
	"github.com/taskmaster/dayboard/internal/ports"
)

const tasksTable = "tasks"

// TaskService handles task-related operations
type TaskService struct {
	store   ports.StoreGateway
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(store ports.StoreGateway, logger *logger.Logger, metrics *metrics.Metrics) *TaskService {
	return &TaskService{
		store:   store,
		logger:  logger.WithComponent("task_service"),
		metrics: metrics,
		now:     time.Now,
	}
}

// FetchUserTasks returns the owner's tasks, newest first. Like
// FetchUserNotes it never fails: store errors give an empty slice and
// invalid rows are skipped.
func (s *TaskService) FetchUserTasks(ctx context.Context, ownerID string) []entities.Task {
	if ownerID == "" {
		s.logger.Warnw("Task fetch without owner", "error", entities.ErrMissingOwner)
		return []entities.Task{}
	}

	start := time.Now()
	rows, err := s.store.Select(ctx, ports.SelectQuery{
		Table:      tasksTable,
		EqColumn:   "user_id",
		EqValue:    ownerID,
		OrderBy:    "created_at",
		Descending: true,
	})
	s.logger.LogStoreCall("select", tasksTable, len(rows), msSince(start), err)
	if err != nil {
		s.logger.Errorw("Error fetching tasks", "user_id", ownerID, "error", err)
		s.metrics.RecordFetchFailure(tasksTable)
		return []entities.Task{}
	}

	return collect(rows, "task", toTask, s.logger, s.metrics)
}

// UpdateTaskStatus writes status and a fresh updated_at to the owner's task.
// A task belonging to someone else matches no row. Unlike the fetches,
// failures are returned to the caller.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, ownerID, taskID string, status entities.TaskStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("update task %s to %q: %w", taskID, status, entities.ErrInvalidStatus)
	}
	if ownerID == "" {
		return fmt.Errorf("update task %s: %w", taskID, entities.ErrMissingOwner)
	}

	start := time.Now()
	err := s.store.Update(ctx, ports.UpdateMutation{
		Table:       tasksTable,
		MatchColumn: "id",
		MatchValue:  taskID,
		OwnerColumn: "user_id",
		OwnerValue:  ownerID,
		Values: map[string]interface{}{
			"status":     string(status),
			"updated_at": s.now().UTC().Format(time.RFC3339Nano),
		},
	})
	s.logger.LogStoreCall("update", tasksTable, 0, msSince(start), err)
	s.metrics.RecordStatusUpdate(err)
	if err != nil {
		s.logger.Errorw("Error updating task status", "user_id", ownerID, "task_id", taskID, "status", status, "error", err)
		return fmt.Errorf("update task status: %w", err)
	}

	s.logger.Infow("Task status updated", "task_id", taskID, "status", status)
	return nil
}

// CycleTask advances the task to the next status in the cycle, pushes the
// change and returns the refetched task list.
func (s *TaskService) CycleTask(ctx context.Context, ownerID, taskID string) ([]entities.Task, error) {
	var current *entities.Task
	tasks := s.FetchUserTasks(ctx, ownerID)
	for i := range tasks {
		if tasks[i].ID == taskID {
			current = &tasks[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("cycle task %s: %w", taskID, entities.ErrTaskNotFound)
	}

	next := entities.CycleTaskStatus(current.Status)
	if err := s.UpdateTaskStatus(ctx, ownerID, taskID, next); err != nil {
		return nil, err
	}

	return s.FetchUserTasks(ctx, ownerID), nil
}
