package repository

import (
	"context"
	"sync"
)

// memTaskRepository keeps tasks in insertion order. Each dashboard owns one.
type memTaskRepository struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]*Task
}

func NewTaskRepository() TaskRepository {
	return &memTaskRepository{tasks: make(map[string]*Task)}
}

func (r *memTaskRepository) Create(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return ErrDuplicateID
	}
	r.tasks[task.ID] = task.Clone()
	r.order = append(r.order, task.ID)
	return nil
}

func (r *memTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return task.Clone(), nil
}

func (r *memTaskRepository) FindAll(ctx context.Context) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id].Clone())
	}
	return tasks, nil
}

func (r *memTaskRepository) Update(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return nil
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}
