package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/redis/go-redis/v9"
)

func TestTaskRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()

	reason := "busy"
	if err := repo.Create(ctx, &Task{ID: "1", Title: "One", Status: types.StatusRejected, RejectionReason: &reason}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.FindByID(ctx, "1")
	got.Title = "changed"
	*got.RejectionReason = "changed"

	again, _ := repo.FindByID(ctx, "1")
	if again.Title != "One" || *again.RejectionReason != "busy" {
		t.Fatalf("stored task was mutated through a returned copy: %+v", again)
	}
}

func TestTaskRepositoryKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository()
	for _, id := range []string{"3", "1", "2"} {
		if err := repo.Create(ctx, &Task{ID: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := repo.Create(ctx, &Task{ID: "1"}); err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	tasks, _ := repo.FindAll(ctx)
	if len(tasks) != 3 || tasks[0].ID != "3" || tasks[1].ID != "1" || tasks[2].ID != "2" {
		t.Fatalf("unexpected order: %v", tasks)
	}

	missing, err := repo.FindByID(ctx, "404")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing task, got %v, %v", missing, err)
	}
}

func TestMemberRequestRepositoryOrdersBySubmission(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRequestRepository()
	now := time.Now()
	repo.Create(ctx, &MemberRequest{ID: "b", SubmittedAt: now})
	repo.Create(ctx, &MemberRequest{ID: "a", SubmittedAt: now.Add(-time.Hour)})

	all, _ := repo.FindAll(ctx)
	if len(all) != 2 || all[0].ID != "a" {
		t.Fatalf("expected oldest first, got %v", all)
	}
}

type fakeCache struct {
	data map[string][]byte
	ttl  time.Duration
}

func (f *fakeCache) SetSession(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	f.ttl = expiration
	return nil
}

func (f *fakeCache) GetSession(ctx context.Context, key string, dest interface{}) error {
	b, ok := f.data[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) DeleteSession(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()
	cache := &fakeCache{data: map[string][]byte{}}
	repo := NewRedisSessionRepository(cache, time.Hour)

	rec := &SessionRecord{ID: "s1", View: types.ViewDashboard, Authenticated: true, Role: types.RoleHeadOfDept, Email: "a@b.com"}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.ttl != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %s", cache.ttl)
	}

	got, err := repo.FindByID(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("expected record, got %v, %v", got, err)
	}
	if got.Role != types.RoleHeadOfDept || got.View != types.ViewDashboard {
		t.Fatalf("unexpected record: %+v", got)
	}

	repo.Delete(ctx, "s1")
	got, err = repo.FindByID(ctx, "s1")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil after delete, got %v, %v", got, err)
	}
}

type brokenCache struct{ fakeCache }

func (b *brokenCache) GetSession(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func TestRedisSessionRepositoryPropagatesErrors(t *testing.T) {
	repo := NewRedisSessionRepository(&brokenCache{}, time.Minute)
	if _, err := repo.FindByID(context.Background(), "s1"); err == nil {
		t.Fatalf("expected error from cache")
	}
}

func TestMemoryActivityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryActivityRepository(2)

	repo.Create(ctx, &Activity{SessionID: "s1", TaskID: "1", Action: "accept", ToStatus: types.StatusOngoing})
	repo.Create(ctx, &Activity{SessionID: "s2", TaskID: "1", Action: "accept", ToStatus: types.StatusOngoing})
	repo.Create(ctx, &Activity{SessionID: "s1", TaskID: "2", Action: "complete", ToStatus: types.StatusCompleted})

	got, _ := repo.ListBySession(ctx, "s1", 10)
	if len(got) != 1 || got[0].TaskID != "2" {
		t.Fatalf("expected only the newest retained s1 activity, got %v", got)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled in")
	}
}

func TestMemorySessionRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	repo := NewSessionRepository(time.Hour, func() time.Time { return now })

	repo.Save(ctx, &SessionRecord{ID: "old", View: types.ViewHome})
	now = now.Add(50 * time.Minute)
	if got, _ := repo.FindByID(ctx, "old"); got == nil {
		t.Fatal("expected record inside the ttl")
	}

	// Saving again slides the expiry
	repo.Save(ctx, &SessionRecord{ID: "old", View: types.ViewLogin})
	now = now.Add(50 * time.Minute)
	got, _ := repo.FindByID(ctx, "old")
	if got == nil || got.View != types.ViewLogin {
		t.Fatalf("expected refreshed record, got %+v", got)
	}

	now = now.Add(time.Hour)
	if got, err := repo.FindByID(ctx, "old"); err != nil || got != nil {
		t.Fatalf("expected nil, nil after expiry, got %v, %v", got, err)
	}

	// The next save prunes expired entries
	repo.Save(ctx, &SessionRecord{ID: "new"})
	if n := repo.(*memSessionRepository).size(); n != 1 {
		t.Fatalf("expected expired snapshot to be pruned, %d held", n)
	}
}
