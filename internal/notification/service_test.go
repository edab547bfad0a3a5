package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/email"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/metrics"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type event struct {
	kind      string
	sessionID string
	detail    string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeBroadcaster) record(kind, sessionID, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{kind, sessionID, detail})
}

func (f *fakeBroadcaster) BroadcastViewChanged(sessionID, view string, session map[string]interface{}) {
	f.record("view", sessionID, view)
}
func (f *fakeBroadcaster) BroadcastSessionClosed(sessionID string) {
	f.record("closed", sessionID, "")
}
func (f *fakeBroadcaster) BroadcastTaskUpdated(sessionID, action string, task map[string]interface{}, fromStatus string) {
	f.record("task", sessionID, action+":"+fromStatus)
}
func (f *fakeBroadcaster) BroadcastMemberRequestDecided(sessionID string, request map[string]interface{}) {
	f.record("request", sessionID, request["id"].(string))
}
func (f *fakeBroadcaster) BroadcastDeadlineReminder(sessionID string, tasks []map[string]interface{}) {
	f.record("reminder", sessionID, "")
}
func (f *fakeBroadcaster) BroadcastToast(sessionID, toastID, message string, durationMs int64) {
	f.record("toast", sessionID, message)
}
func (f *fakeBroadcaster) BroadcastToastDismissed(sessionID, toastID string) {
	f.record("dismissed", sessionID, toastID)
}

func (f *fakeBroadcaster) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.kind
	}
	return out
}

type fakeMailer struct {
	decisions []string
	reminders []string
}

func (m *fakeMailer) EnqueueMemberDecision(to string, data email.MemberDecisionData) {
	m.decisions = append(m.decisions, to)
}
func (m *fakeMailer) EnqueueDeadlineReminder(to string, data email.DeadlineReminderData) {
	m.reminders = append(m.reminders, to)
}

type pendingTimer struct {
	f       func()
	stopped bool
}

type manualScheduler struct {
	timers []*pendingTimer
}

func (m *manualScheduler) Schedule(d time.Duration, f func()) func() bool {
	t := &pendingTimer{f: f}
	m.timers = append(m.timers, t)
	return func() bool {
		was := !t.stopped
		t.stopped = true
		return was
	}
}

func (m *manualScheduler) Fire() {
	timers := m.timers
	m.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.f()
		}
	}
}

func newTestService() (*Service, *fakeBroadcaster, *fakeMailer, *manualScheduler, *metrics.Metrics) {
	b := &fakeBroadcaster{}
	m := &fakeMailer{}
	sched := &manualScheduler{}
	met := metrics.New(prometheus.NewRegistry())
	svc := NewService(Options{
		Broadcaster:   b,
		Mailer:        m,
		Metrics:       met,
		ToastDuration: 3 * time.Second,
		Scheduler:     sched.Schedule,
	})
	return svc, b, m, sched, met
}

func equalKinds(got []string, want ...string) bool {
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

func TestToastAutoDismiss(t *testing.T) {
	svc, b, _, sched, met := newTestService()

	svc.Toast("s1", "Task accepted")
	if svc.PendingToasts("s1") != 1 {
		t.Fatal("expected one pending toast")
	}
	sched.Fire()

	if svc.PendingToasts("s1") != 0 {
		t.Fatal("toast should have been dismissed")
	}
	if got := b.kinds(); !equalKinds(got, "toast", "dismissed") {
		t.Fatalf("unexpected events: %v", got)
	}
	if testutil.ToFloat64(met.Toasts) != 1 {
		t.Fatal("toast not counted")
	}
}

func TestSessionClosedCancelsToasts(t *testing.T) {
	svc, b, _, sched, _ := newTestService()

	svc.Toast("s1", "one")
	svc.Toast("s1", "two")
	svc.Toast("s2", "other")
	svc.SessionClosed("s1")
	sched.Fire()

	if got := b.kinds(); !equalKinds(got, "toast", "toast", "toast", "closed", "dismissed") {
		t.Fatalf("unexpected events: %v", got)
	}
	if svc.PendingToasts("s1") != 0 || svc.PendingToasts("s2") != 0 {
		t.Fatal("no toasts should remain")
	}
}

func TestMemberRequestDecidedEmailsApplicant(t *testing.T) {
	svc, b, m, _, met := newTestService()

	svc.MemberRequestDecided(context.Background(), "s1", &repository.MemberRequest{
		ID:     "req-1",
		Email:  "aarav@bvcoe.edu",
		Status: types.RequestApproved,
	})

	if len(m.decisions) != 1 || m.decisions[0] != "aarav@bvcoe.edu" {
		t.Fatalf("expected a decision email, got %v", m.decisions)
	}
	if got := b.kinds(); !equalKinds(got, "request") {
		t.Fatalf("unexpected events: %v", got)
	}
	if testutil.ToFloat64(met.RequestDecisions.WithLabelValues("approved")) != 1 {
		t.Fatal("decision not counted")
	}
}

func TestTaskChangedCarriesFromStatus(t *testing.T) {
	svc, b, _, _, _ := newTestService()
	from := types.StatusAvailable

	svc.TaskChanged(context.Background(), "s1", service.TaskChange{
		Action: service.ActionAccepted,
		Task:   &repository.Task{ID: "4", Status: types.StatusOngoing},
		From:   &from,
	})

	if b.events[0].detail != "accepted:available" {
		t.Fatalf("unexpected event: %+v", b.events[0])
	}
}

func TestDeadlineReminder(t *testing.T) {
	svc, b, m, _, _ := newTestService()

	batch := &service.ReminderBatch{
		SessionID: "s1",
		Email:     "a@b.c",
		Name:      "John Doe",
		SendEmail: true,
		Tasks:     []*repository.Task{{ID: "1", Title: "Website Redesign", Deadline: time.Now()}},
	}
	svc.DeadlineReminder(context.Background(), batch)

	if got := b.kinds(); !equalKinds(got, "reminder", "toast") {
		t.Fatalf("unexpected events: %v", got)
	}
	if len(m.reminders) != 1 {
		t.Fatal("expected a reminder email")
	}

	batch.SendEmail = false
	svc.DeadlineReminder(context.Background(), batch)
	if len(m.reminders) != 1 {
		t.Fatal("no email when the profile turned emails off")
	}
}
