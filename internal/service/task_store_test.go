package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/seed"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

func newSeededStore(t *testing.T, kind types.DashboardKind) *TaskStore {
	t.Helper()
	repo := repository.NewTaskRepository()
	for _, task := range seed.Tasks(kind) {
		if err := repo.Create(context.Background(), task); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewTaskStore(repo)
}

func TestAcceptThenComplete(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardMember)

	task, err := store.AcceptTask(ctx, "4")
	if err != nil || task.Status != types.StatusOngoing {
		t.Fatalf("accept: %+v, %v", task, err)
	}
	task, err = store.CompleteTask(ctx, "4")
	if err != nil || task.Status != types.StatusCompleted {
		t.Fatalf("complete: %+v, %v", task, err)
	}
	if task.RejectionReason != nil {
		t.Fatal("completed task must not carry a rejection reason")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardMember)

	for _, reason := range []string{"", "   "} {
		if _, err := store.RejectTask(ctx, "4", reason); !errors.Is(err, ErrEmptyReason) {
			t.Fatalf("expected ErrEmptyReason, got %v", err)
		}
	}
	task, _ := store.Get(ctx, "4")
	if task.Status != types.StatusAvailable || task.RejectionReason != nil {
		t.Fatalf("task changed on a rejected reject: %+v", task)
	}

	task, err := store.RejectTask(ctx, "4", "  Conflicting commitments ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != types.StatusRejected || *task.RejectionReason != "Conflicting commitments" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestTransitionsFromWrongState(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardMember)

	tests := []struct {
		name string
		run  func() (*repository.Task, error)
	}{
		{"accept ongoing", func() (*repository.Task, error) { return store.AcceptTask(ctx, "1") }},
		{"complete available", func() (*repository.Task, error) { return store.CompleteTask(ctx, "4") }},
		{"reject completed", func() (*repository.Task, error) { return store.RejectTask(ctx, "2", "late") }},
		{"reassign ongoing", func() (*repository.Task, error) { return store.ReassignTask(ctx, "1", "Someone") }},
	}
	before, _ := store.All(ctx)
	for _, tt := range tests {
		if _, err := tt.run(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s: expected ErrInvalidTransition, got %v", tt.name, err)
		}
	}
	after, _ := store.All(ctx)
	for i := range before {
		if before[i].Status != after[i].Status || before[i].AssignedTo != after[i].AssignedTo {
			t.Fatalf("task %s changed: %+v -> %+v", before[i].ID, before[i], after[i])
		}
	}
}

func TestUnknownTask(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardMember)

	if _, err := store.AcceptTask(ctx, "99"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := store.RejectTask(ctx, "99", "reason"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReassign(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardAdmin)

	if _, err := store.ReassignTask(ctx, "3", " "); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	task, err := store.ReassignTask(ctx, "3", "New Person")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != types.StatusOngoing || task.AssignedTo != "New Person" || task.RejectionReason != nil {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardAdmin)
	deadline := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	in := CreateTaskInput{Title: "Poster", Description: "Design the fest poster", AssignedTo: "Jane Smith", Deadline: deadline}

	first, err := store.CreateTask(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.CreateTask(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("created tasks must get unique ids")
	}
	if first.Status != types.StatusAvailable || first.RejectionReason != nil {
		t.Fatalf("new task should be available: %+v", first)
	}
	all, _ := store.All(ctx)
	if len(all) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(all))
	}

	in.Title = " "
	if _, err := store.CreateTask(ctx, in); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	in.Title = "Poster"
	in.Deadline = time.Time{}
	if _, err := store.CreateTask(ctx, in); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for deadline, got %v", err)
	}
}

func TestProjectionsAreReadOnly(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, types.DashboardMember)

	available, _ := store.TasksByStatus(ctx, types.StatusAvailable)
	if !equalIDs(taskIDs(available), "4", "5") {
		t.Fatalf("unexpected available tasks: %v", taskIDs(available))
	}
	others, _ := store.TasksExcluding(ctx, types.StatusAvailable)
	if !equalIDs(taskIDs(others), "1", "2", "3") {
		t.Fatalf("unexpected other tasks: %v", taskIDs(others))
	}

	available[0].Status = types.StatusCompleted
	again, _ := store.Get(ctx, "4")
	if again.Status != types.StatusAvailable {
		t.Fatal("mutating a projection changed the store")
	}

	all, _ := store.All(ctx)
	FilterByStatus(all, types.StatusOngoing)[0].Title = "changed"
	if all[0].Title == "changed" {
		t.Fatal("FilterByStatus must copy its elements")
	}
}
