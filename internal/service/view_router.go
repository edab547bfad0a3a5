package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

// Scheduler runs f once after d, never synchronously. The returned func
// cancels the call and reports whether it was still pending.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// RealScheduler is backed by time.AfterFunc.
func RealScheduler(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Session is the authenticated identity a router carries.
type Session struct {
	Authenticated bool       `json:"authenticated"`
	Role          types.Role `json:"role"`
	Email         string     `json:"email"`
}

// DefaultSession is the logged-out state.
func DefaultSession() Session {
	return Session{Role: types.RoleMember}
}

// ViewListener observes every view change, in order.
type ViewListener func(view types.View, session Session)

// ViewRouter holds the current top-level view and the session.
// All transitions are valid from any view.
type ViewRouter struct {
	// emitMu serializes a transition together with its listener call so
	// listeners observe changes in the order they happened.
	emitMu sync.Mutex
	mu     sync.Mutex

	view    types.View
	session Session

	welcomeDelay time.Duration
	schedule     Scheduler
	stopWelcome  func() bool
	gen          uint64
	closed       bool

	listener ViewListener
}

func NewViewRouter(welcomeDelay time.Duration, schedule Scheduler, listener ViewListener) *ViewRouter {
	if schedule == nil {
		schedule = RealScheduler
	}
	return &ViewRouter{
		view:         types.ViewHome,
		session:      DefaultSession(),
		welcomeDelay: welcomeDelay,
		schedule:     schedule,
		listener:     listener,
	}
}

func (r *ViewRouter) View() types.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *ViewRouter) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *ViewRouter) GoHome()   { r.transition(types.ViewHome, nil) }
func (r *ViewRouter) GoLogin()  { r.transition(types.ViewLogin, nil) }
func (r *ViewRouter) GoSignup() { r.transition(types.ViewSignup, nil) }

// CompleteAuth stores the session and shows the welcome screen; the router
// moves on to the dashboard once the welcome delay has passed.
func (r *ViewRouter) CompleteAuth(role types.Role, email string) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.completeAuthLocked(role, email)
}

// CompleteFormAuth is CompleteAuth for a submitted form: it only applies
// while the login or signup form is showing.
func (r *ViewRouter) CompleteFormAuth(role types.Role, email string) error {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	if r.view != types.ViewLogin && r.view != types.ViewSignup {
		view := r.view
		r.mu.Unlock()
		return fmt.Errorf("%w: no auth form on %s view", ErrInvalidTransition, view)
	}
	r.completeAuthLocked(role, email)
	return nil
}

// completeAuthLocked requires emitMu and r.mu, and releases r.mu.
func (r *ViewRouter) completeAuthLocked(role types.Role, email string) {
	r.cancelWelcomeLocked()
	r.view = types.ViewWelcome
	r.session = Session{Authenticated: true, Role: role, Email: email}
	r.gen++
	gen := r.gen
	immediate := r.welcomeDelay <= 0
	if !immediate {
		r.stopWelcome = r.schedule(r.welcomeDelay, func() { r.advanceFromWelcome(gen) })
	}
	current := r.session
	r.mu.Unlock()

	if r.listener != nil {
		r.listener(types.ViewWelcome, current)
	}
	if immediate {
		r.advance(gen)
	}
}

// Logout returns to home and resets the session to its defaults.
func (r *ViewRouter) Logout() {
	s := DefaultSession()
	r.transition(types.ViewHome, &s)
}

// Restore puts a router rebuilt from a snapshot back into its last state. A
// session that was still on the welcome screen goes straight to the dashboard.
func (r *ViewRouter) Restore(view types.View, session Session) {
	if session.Authenticated && view == types.ViewWelcome {
		view = types.ViewDashboard
	}
	if !session.Authenticated && (view == types.ViewWelcome || view == types.ViewDashboard) {
		view = types.ViewHome
	}
	r.transition(view, &session)
}

// Close cancels any pending welcome timer. Later transitions are ignored.
func (r *ViewRouter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cancelWelcomeLocked()
}

func (r *ViewRouter) advanceFromWelcome(gen uint64) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	r.advance(gen)
}

// advance requires emitMu. A stale generation means the router already moved
// on, so the timer is a no-op.
func (r *ViewRouter) advance(gen uint64) {
	r.mu.Lock()
	if r.closed || r.gen != gen || r.view != types.ViewWelcome {
		r.mu.Unlock()
		return
	}
	r.stopWelcome = nil
	r.view = types.ViewDashboard
	r.gen++
	session := r.session
	r.mu.Unlock()

	if r.listener != nil {
		r.listener(types.ViewDashboard, session)
	}
}

func (r *ViewRouter) transition(view types.View, session *Session) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.cancelWelcomeLocked()
	r.view = view
	if session != nil {
		r.session = *session
	}
	r.gen++
	current := r.session
	r.mu.Unlock()

	if r.listener != nil {
		r.listener(view, current)
	}
}

func (r *ViewRouter) cancelWelcomeLocked() {
	if r.stopWelcome != nil {
		r.stopWelcome()
		r.stopWelcome = nil
	}
}
