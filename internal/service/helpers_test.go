package service

import (
	"context"
	"sync"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

const welcomeDelay = 2500 * time.Millisecond

// manualScheduler only runs callbacks when the test fires them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (m *manualScheduler) Schedule(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	m.timers = append(m.timers, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		pending := !t.stopped && !t.fired
		t.stopped = true
		return pending
	}
}

// Fire runs every pending timer.
func (m *manualScheduler) Fire() int {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// FireStale runs every timer, stopped ones included, the way a timer that
// raced its cancellation would.
func (m *manualScheduler) FireStale() {
	m.mu.Lock()
	all := append([]*manualTimer(nil), m.timers...)
	m.mu.Unlock()
	for _, t := range all {
		t.f()
	}
}

func (m *manualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu        sync.Mutex
	views     []types.View
	changes   []TaskChange
	decisions []*repository.MemberRequest
	toasts    []string
	closed    []string
}

func (n *recordingNotifier) ViewChanged(sessionID string, view types.View, session Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views = append(n.views, view)
}

func (n *recordingNotifier) TaskChanged(ctx context.Context, sessionID string, change TaskChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) MemberRequestDecided(ctx context.Context, sessionID string, req *repository.MemberRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, req)
}

func (n *recordingNotifier) Toast(sessionID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, message)
}

func (n *recordingNotifier) SessionClosed(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, sessionID)
}

func taskIDs(tasks []*repository.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
