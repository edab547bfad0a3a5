package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ============================================
// In-memory Session Repository
// ============================================

// DefaultSessionTTL applies when no ttl is configured.
const DefaultSessionTTL = 2 * time.Hour

type memSession struct {
	rec       SessionRecord
	expiresAt time.Time
}

// memSessionRepository mirrors the Redis backend: every save refreshes a
// sliding ttl, and expired snapshots read as missing.
type memSessionRepository struct {
	mu        sync.RWMutex
	sessions  map[string]memSession
	ttl       time.Duration
	now       func() time.Time
	lastPrune time.Time
}

// NewSessionRepository keeps snapshots in memory for ttl after their last
// save. A nil now uses time.Now.
func NewSessionRepository(ttl time.Duration, now func() time.Time) SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &memSessionRepository{sessions: make(map[string]memSession), ttl: ttl, now: now}
}

func (r *memSessionRepository) Save(ctx context.Context, rec *SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sessions[rec.ID] = memSession{rec: *rec, expiresAt: now.Add(r.ttl)}

	// Expired entries are dropped at most once per minute
	if now.Sub(r.lastPrune) >= time.Minute {
		r.pruneLocked(now)
	}
	return nil
}

func (r *memSessionRepository) FindByID(ctx context.Context, id string) (*SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[id]
	if !ok || !r.now().Before(entry.expiresAt) {
		return nil, nil
	}
	rec := entry.rec
	return &rec, nil
}

func (r *memSessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// size reports how many snapshots are held, expired or not.
func (r *memSessionRepository) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *memSessionRepository) pruneLocked(now time.Time) {
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
		}
	}
	r.lastPrune = now
}

// ============================================
// Redis Session Repository
// ============================================

// SessionCache is the JSON session API exposed by db.RedisDB.
type SessionCache interface {
	SetSession(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetSession(ctx context.Context, key string, dest interface{}) error
	DeleteSession(ctx context.Context, key string) error
}

type redisSessionRepository struct {
	cache SessionCache
	ttl   time.Duration
}

// NewRedisSessionRepository stores snapshots with a sliding ttl refreshed on every save.
func NewRedisSessionRepository(cache SessionCache, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{cache: cache, ttl: ttl}
}

func (r *redisSessionRepository) Save(ctx context.Context, rec *SessionRecord) error {
	return r.cache.SetSession(ctx, rec.ID, rec, r.ttl)
}

func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*SessionRecord, error) {
	var rec SessionRecord
	if err := r.cache.GetSession(ctx, id, &rec); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.DeleteSession(ctx, id)
}
