package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds the process-wide stores. Task, profile and member request
// stores are not here: every mounted dashboard creates its own.
type Repositories struct {
	SessionRepo  SessionRepository
	ActivityRepo ActivityRepository
}

// NewRepositories picks the Redis/PostgreSQL backends when available and falls
// back to memory otherwise.
func NewRepositories(pool *pgxpool.Pool, cache SessionCache, sessionTTL time.Duration) *Repositories {
	repos := &Repositories{
		SessionRepo:  NewSessionRepository(sessionTTL, nil),
		ActivityRepo: NewMemoryActivityRepository(1000),
	}
	if cache != nil {
		repos.SessionRepo = NewRedisSessionRepository(cache, sessionTTL)
	}
	if pool != nil {
		repos.ActivityRepo = NewActivityRepository(pool)
	}
	return repos
}
