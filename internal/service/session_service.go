package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/google/uuid"
)

// snapshotRefreshInterval bounds how often a live session re-saves an
// unchanged snapshot.
const snapshotRefreshInterval = time.Minute

type SessionOptions struct {
	Repo         repository.SessionRepository
	Activity     repository.ActivityRepository
	Notifier     Notifier
	Scheduler    Scheduler
	WelcomeDelay time.Duration
	Now          func() time.Time
}

// SessionService is the registry of live sessions. Each session owns a
// ViewRouter and, while the router shows the dashboard, a mounted Dashboard.
type SessionService struct {
	opts SessionOptions

	mu   sync.RWMutex
	live map[string]*LiveSession
}

func NewSessionService(opts SessionOptions) *SessionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Repo == nil {
		opts.Repo = repository.NewSessionRepository(repository.DefaultSessionTTL, opts.Now)
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	return &SessionService{opts: opts, live: make(map[string]*LiveSession)}
}

// LiveSession is one browser tab's state.
type LiveSession struct {
	id        string
	createdAt time.Time
	svc       *SessionService
	router    *ViewRouter
	lastSeen  atomic.Int64

	// saveMu orders snapshot saves against close, so an ended session's
	// snapshot is never written back after End deletes it.
	saveMu    sync.Mutex
	closed    bool
	lastSaved time.Time

	dashMu    sync.Mutex
	dashboard *Dashboard
	identity  Identity
}

// Start creates an anonymous session on the home view.
func (s *SessionService) Start(ctx context.Context) (*LiveSession, error) {
	ls := s.newLiveSession(uuid.New().String(), s.opts.Now())
	if err := ls.saveSnapshot(ctx, ls.record()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.live[ls.id] = ls
	s.mu.Unlock()

	log.Printf("[Session] ✅ Started session %s", ls.id)
	return ls, nil
}

// Get returns the live session, resuming it from its snapshot if it was
// evicted. Resumed sessions get a freshly seeded dashboard.
func (s *SessionService) Get(ctx context.Context, id string) (*LiveSession, error) {
	s.mu.RLock()
	ls, ok := s.live[id]
	s.mu.RUnlock()
	if ok {
		ls.touch()
		ls.refreshSnapshot(ctx)
		return ls, nil
	}

	rec, err := s.opts.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[id]; ok {
		ls.touch()
		return ls, nil
	}
	ls = s.newLiveSession(rec.ID, rec.CreatedAt)
	ls.router.Restore(rec.View, Session{
		Authenticated: rec.Authenticated,
		Role:          rec.Role,
		Email:         rec.Email,
	})
	s.live[id] = ls
	log.Printf("[Session] 🔄 Resumed session %s on %s", id, ls.router.View())
	return ls, nil
}

// Exists reports whether id is live or can still be resumed from its snapshot.
func (s *SessionService) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	_, ok := s.live[id]
	s.mu.RUnlock()
	if ok {
		return true, nil
	}
	rec, err := s.opts.Repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// End tears a session down and forgets its snapshot.
func (s *SessionService) End(ctx context.Context, id string) error {
	s.mu.Lock()
	ls, ok := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()

	if ok {
		ls.close()
	}
	return s.opts.Repo.Delete(ctx, id)
}

// SweepIdle evicts sessions unused for longer than idle. Their snapshots stay,
// so a later request resumes them.
func (s *SessionService) SweepIdle(idle time.Duration) int {
	cutoff := s.opts.Now().Add(-idle).UnixNano()

	s.mu.Lock()
	var evicted []*LiveSession
	for id, ls := range s.live {
		if ls.lastSeen.Load() < cutoff {
			evicted = append(evicted, ls)
			delete(s.live, id)
		}
	}
	s.mu.Unlock()

	for _, ls := range evicted {
		ls.close()
	}
	return len(evicted)
}

// ForEachDashboard calls fn for every session that currently shows a dashboard.
func (s *SessionService) ForEachDashboard(fn func(ls *LiveSession, d *Dashboard)) {
	s.mu.RLock()
	sessions := make([]*LiveSession, 0, len(s.live))
	for _, ls := range s.live {
		sessions = append(sessions, ls)
	}
	s.mu.RUnlock()

	for _, ls := range sessions {
		if d, err := ls.Dashboard(); err == nil {
			fn(ls, d)
		}
	}
}

func (s *SessionService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// Shutdown closes every live session, cancelling their timers.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	sessions := s.live
	s.live = make(map[string]*LiveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.close()
	}
	log.Printf("[Session] Closed %d sessions", len(sessions))
}

func (s *SessionService) newLiveSession(id string, createdAt time.Time) *LiveSession {
	ls := &LiveSession{id: id, createdAt: createdAt, svc: s}
	ls.touch()
	ls.router = NewViewRouter(s.opts.WelcomeDelay, s.opts.Scheduler, ls.onViewChange)
	return ls
}

// ============================================
// LiveSession
// ============================================

func (ls *LiveSession) ID() string          { return ls.id }
func (ls *LiveSession) View() types.View    { return ls.router.View() }
func (ls *LiveSession) Session() Session    { return ls.router.Session() }
func (ls *LiveSession) GoHome()             { ls.router.GoHome() }
func (ls *LiveSession) GoLogin()            { ls.router.GoLogin() }
func (ls *LiveSession) GoSignup()           { ls.router.GoSignup() }
func (ls *LiveSession) Logout()             { ls.router.Logout() }
func (ls *LiveSession) LastSeen() time.Time { return time.Unix(0, ls.lastSeen.Load()) }

// CompleteAuth makes the session an AuthTarget. Only a session showing the
// login or signup form can authenticate. The identity's profile details are
// kept for the dashboard mounted after the welcome screen.
func (ls *LiveSession) CompleteAuth(ctx context.Context, identity Identity) error {
	ls.dashMu.Lock()
	previous := ls.identity
	ls.identity = identity
	ls.dashMu.Unlock()

	if err := ls.router.CompleteFormAuth(identity.Role, identity.Email); err != nil {
		ls.dashMu.Lock()
		ls.identity = previous
		ls.dashMu.Unlock()
		return err
	}
	return nil
}

// Dashboard returns the mounted dashboard, or ErrNoDashboard when the router
// is anywhere else.
func (ls *LiveSession) Dashboard() (*Dashboard, error) {
	ls.dashMu.Lock()
	defer ls.dashMu.Unlock()
	if ls.dashboard == nil {
		return nil, ErrNoDashboard
	}
	return ls.dashboard, nil
}

// onViewChange runs inside the router's emit lock. It must not call back into
// the router.
func (ls *LiveSession) onViewChange(view types.View, session Session) {
	ls.dashMu.Lock()
	switch {
	case view == types.ViewDashboard && ls.dashboard == nil:
		ls.dashboard = NewDashboard(DashboardOptions{
			SessionID: ls.id,
			Session:   session,
			Identity:  ls.identity,
			Activity:  ls.svc.opts.Activity,
			Notifier:  ls.svc.opts.Notifier,
			Now:       ls.svc.opts.Now,
		})
		log.Printf("[Session] 📋 Mounted %s dashboard for %s", ls.dashboard.Kind(), ls.id)
	case view != types.ViewDashboard && ls.dashboard != nil:
		ls.dashboard = nil
	}
	if !session.Authenticated {
		ls.identity = Identity{}
	}
	ls.dashMu.Unlock()

	rec := ls.record()
	rec.View = view
	rec.Authenticated = session.Authenticated
	rec.Role = session.Role
	rec.Email = session.Email
	if err := ls.saveSnapshot(context.Background(), rec); err != nil {
		log.Printf("[Session] ⚠️ Failed to save snapshot for %s: %v", ls.id, err)
	}

	ls.svc.opts.Notifier.ViewChanged(ls.id, view, session)
}

func (ls *LiveSession) record() *repository.SessionRecord {
	session := DefaultSession()
	view := types.ViewHome
	if ls.router != nil {
		session = ls.router.Session()
		view = ls.router.View()
	}
	return &repository.SessionRecord{
		ID:            ls.id,
		View:          view,
		Authenticated: session.Authenticated,
		Role:          session.Role,
		Email:         session.Email,
		CreatedAt:     ls.createdAt,
		UpdatedAt:     ls.svc.opts.Now(),
	}
}

func (ls *LiveSession) touch() {
	ls.lastSeen.Store(ls.svc.opts.Now().UnixNano())
}

// saveSnapshot is a no-op once the session is closed.
func (ls *LiveSession) saveSnapshot(ctx context.Context, rec *repository.SessionRecord) error {
	ls.saveMu.Lock()
	defer ls.saveMu.Unlock()
	if ls.closed {
		return nil
	}
	if err := ls.svc.opts.Repo.Save(ctx, rec); err != nil {
		return err
	}
	ls.lastSaved = ls.svc.opts.Now()
	return nil
}

// refreshSnapshot re-saves a session that is in use but has not changed view
// for a while, keeping its snapshot ttl sliding.
func (ls *LiveSession) refreshSnapshot(ctx context.Context) {
	ls.saveMu.Lock()
	stale := !ls.closed && ls.svc.opts.Now().Sub(ls.lastSaved) >= snapshotRefreshInterval
	ls.saveMu.Unlock()
	if !stale {
		return
	}
	if err := ls.saveSnapshot(ctx, ls.record()); err != nil {
		log.Printf("[Session] ⚠️ Failed to refresh snapshot for %s: %v", ls.id, err)
	}
}

func (ls *LiveSession) close() {
	ls.saveMu.Lock()
	ls.closed = true
	ls.saveMu.Unlock()

	ls.router.Close()
	ls.dashMu.Lock()
	ls.dashboard = nil
	ls.dashMu.Unlock()
	ls.svc.opts.Notifier.SessionClosed(ls.id)
}
