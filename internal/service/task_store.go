package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/google/uuid"
)

type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	Deadline    time.Time
}

// TaskStore owns the task state machine of one dashboard:
//
//	available -> ongoing    AcceptTask
//	available -> rejected   RejectTask (reason required)
//	ongoing   -> completed  CompleteTask
//	rejected  -> ongoing    ReassignTask (assignee required)
//
// Tasks are never deleted. A rejection reason is present iff status is rejected.
type TaskStore struct {
	repo  repository.TaskRepository
	newID func() string
	now   func() time.Time
}

func NewTaskStore(repo repository.TaskRepository) *TaskStore {
	return &TaskStore{
		repo:  repo,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
}

func (s *TaskStore) Get(ctx context.Context, id string) (*repository.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task, nil
}

func (s *TaskStore) All(ctx context.Context) ([]*repository.Task, error) {
	return s.repo.FindAll(ctx)
}

func (s *TaskStore) TasksByStatus(ctx context.Context, status types.TaskStatus) ([]*repository.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByStatus(tasks, status), nil
}

func (s *TaskStore) TasksExcluding(ctx context.Context, status types.TaskStatus) ([]*repository.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterExcluding(tasks, status), nil
}

// CreateTask inserts a new available task under a fresh id.
func (s *TaskStore) CreateTask(ctx context.Context, in CreateTaskInput) (*repository.Task, error) {
	if err := requireFields(
		field{"title", in.Title},
		field{"description", in.Description},
		field{"assignedTo", in.AssignedTo},
	); err != nil {
		return nil, err
	}
	if in.Deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline", ErrMissingField)
	}

	now := s.now()
	task := &repository.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		AssignedTo:  strings.TrimSpace(in.AssignedTo),
		Deadline:    in.Deadline,
		Status:      types.StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task.Clone(), nil
}

func (s *TaskStore) AcceptTask(ctx context.Context, id string) (*repository.Task, error) {
	return s.transition(ctx, id, types.StatusAvailable, func(t *repository.Task) {
		t.Status = types.StatusOngoing
		t.RejectionReason = nil
	})
}

// RejectTask declines an available task. A blank reason leaves the task untouched.
func (s *TaskStore) RejectTask(ctx context.Context, id, reason string) (*repository.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	return s.transition(ctx, id, types.StatusAvailable, func(t *repository.Task) {
		t.Status = types.StatusRejected
		t.RejectionReason = &reason
	})
}

func (s *TaskStore) CompleteTask(ctx context.Context, id string) (*repository.Task, error) {
	return s.transition(ctx, id, types.StatusOngoing, func(t *repository.Task) {
		t.Status = types.StatusCompleted
		t.RejectionReason = nil
	})
}

// ReassignTask hands a rejected task to someone else and restarts it.
func (s *TaskStore) ReassignTask(ctx context.Context, id, assignee string) (*repository.Task, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignedTo", ErrMissingField)
	}
	return s.transition(ctx, id, types.StatusRejected, func(t *repository.Task) {
		t.Status = types.StatusOngoing
		t.AssignedTo = assignee
		t.RejectionReason = nil
	})
}

func (s *TaskStore) transition(ctx context.Context, id string, from types.TaskStatus, apply func(t *repository.Task)) (*repository.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != from {
		return nil, fmt.Errorf("%w: task %s is %s", ErrInvalidTransition, id, task.Status)
	}

	apply(task)
	task.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// FilterByStatus returns the tasks whose status is exactly status. The input
// slice and its elements are left untouched.
func FilterByStatus(tasks []*repository.Task, status types.TaskStatus) []*repository.Task {
	out := make([]*repository.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

// FilterExcluding returns every task whose status differs from status.
func FilterExcluding(tasks []*repository.Task, status types.TaskStatus) []*repository.Task {
	out := make([]*repository.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != status {
			out = append(out, t.Clone())
		}
	}
	return out
}
