package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Activity Repository
// ============================================

type pgActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &pgActivityRepository{pool: pool}
}

func (r *pgActivityRepository) Create(ctx context.Context, a *Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO task_activities (id, session_id, task_id, action, from_status, to_status, detail, actor_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var from *string
	if a.FromStatus != nil {
		s := string(*a.FromStatus)
		from = &s
	}
	return r.pool.QueryRow(ctx, query,
		a.ID, a.SessionID, a.TaskID, a.Action, from, string(a.ToStatus), a.Detail, a.ActorEmail,
	).Scan(&a.CreatedAt)
}

func (r *pgActivityRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, session_id, task_id, action, from_status, to_status, detail, actor_email, created_at
		FROM task_activities WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		a := &Activity{}
		var from *string
		var to string
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.TaskID, &a.Action, &from, &to, &a.Detail, &a.ActorEmail, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if from != nil {
			s := types.TaskStatus(*from)
			a.FromStatus = &s
		}
		a.ToStatus = types.TaskStatus(to)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ============================================
// In-memory Activity Repository
// ============================================

// memActivityRepository is used when no database is configured.
type memActivityRepository struct {
	mu         sync.Mutex
	activities []*Activity
	max        int
}

func NewMemoryActivityRepository(max int) ActivityRepository {
	if max <= 0 {
		max = 1000
	}
	return &memActivityRepository{max: max}
}

func (r *memActivityRepository) Create(ctx context.Context, a *Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	c := *a
	r.activities = append(r.activities, &c)
	if len(r.activities) > r.max {
		r.activities = r.activities[len(r.activities)-r.max:]
	}
	return nil
}

func (r *memActivityRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	var out []*Activity
	for i := len(r.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if r.activities[i].SessionID == sessionID {
			c := *r.activities[i]
			out = append(out, &c)
		}
	}
	return out, nil
}
