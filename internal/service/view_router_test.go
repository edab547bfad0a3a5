package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

type viewLog struct {
	mu    sync.Mutex
	views []types.View
}

func (l *viewLog) listen(view types.View, session Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, view)
}

func (l *viewLog) all() []types.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.View(nil), l.views...)
}

func TestViewRouterStartsHome(t *testing.T) {
	r := NewViewRouter(welcomeDelay, (&manualScheduler{}).Schedule, nil)
	if r.View() != types.ViewHome {
		t.Fatalf("expected home, got %s", r.View())
	}
	if r.Session() != DefaultSession() {
		t.Fatalf("expected default session, got %+v", r.Session())
	}
}

func TestViewRouterWelcomeAdvancesToDashboard(t *testing.T) {
	sched := &manualScheduler{}
	log := &viewLog{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, log.listen)

	r.GoLogin()
	r.CompleteAuth(types.RoleCoreMember, "a@b.c")

	if r.View() != types.ViewWelcome {
		t.Fatalf("expected welcome, got %s", r.View())
	}
	s := r.Session()
	if !s.Authenticated || s.Role != types.RoleCoreMember || s.Email != "a@b.c" {
		t.Fatalf("unexpected session: %+v", s)
	}

	if n := sched.Fire(); n != 1 {
		t.Fatalf("expected one welcome timer, fired %d", n)
	}
	if r.View() != types.ViewDashboard {
		t.Fatalf("expected dashboard, got %s", r.View())
	}

	want := []types.View{types.ViewLogin, types.ViewWelcome, types.ViewDashboard}
	got := log.all()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestViewRouterLeavingWelcomeCancelsTimer(t *testing.T) {
	sched := &manualScheduler{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, nil)

	r.CompleteAuth(types.RoleMember, "a@b.c")
	r.GoHome()

	if sched.Pending() != 0 {
		t.Fatal("expected the welcome timer to be cancelled")
	}
	sched.FireStale()
	if r.View() != types.ViewHome {
		t.Fatalf("stale welcome timer moved the router to %s", r.View())
	}
}

func TestViewRouterSecondAuthIgnoresFirstTimer(t *testing.T) {
	sched := &manualScheduler{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, nil)

	r.CompleteAuth(types.RoleMember, "first@b.c")
	r.CompleteAuth(types.RoleMember, "second@b.c")
	sched.FireStale()

	if r.View() != types.ViewDashboard {
		t.Fatalf("expected dashboard, got %s", r.View())
	}
	if r.Session().Email != "second@b.c" {
		t.Fatalf("expected latest session, got %+v", r.Session())
	}
}

func TestViewRouterLogoutResetsSession(t *testing.T) {
	sched := &manualScheduler{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, nil)

	r.CompleteAuth(types.RoleHeadOfDept, "head@b.c")
	sched.Fire()
	r.Logout()

	if r.View() != types.ViewHome {
		t.Fatalf("expected home, got %s", r.View())
	}
	if r.Session() != DefaultSession() {
		t.Fatalf("expected default session, got %+v", r.Session())
	}
}

func TestViewRouterCloseStopsEverything(t *testing.T) {
	sched := &manualScheduler{}
	log := &viewLog{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, log.listen)

	r.CompleteAuth(types.RoleMember, "a@b.c")
	r.Close()
	sched.FireStale()
	r.GoLogin()

	if r.View() != types.ViewWelcome {
		t.Fatalf("closed router changed view to %s", r.View())
	}
	if got := log.all(); len(got) != 1 {
		t.Fatalf("expected only the welcome event, got %v", got)
	}
}

func TestViewRouterZeroDelayAdvancesImmediately(t *testing.T) {
	sched := &manualScheduler{}
	r := NewViewRouter(0, sched.Schedule, nil)

	r.CompleteAuth(types.RoleMember, "a@b.c")
	if r.View() != types.ViewDashboard {
		t.Fatalf("expected dashboard, got %s", r.View())
	}
	if sched.Pending() != 0 {
		t.Fatal("no timer expected for a zero delay")
	}
}

func TestViewRouterRestore(t *testing.T) {
	tests := []struct {
		name    string
		view    types.View
		session Session
		want    types.View
	}{
		{"welcome resumes on dashboard", types.ViewWelcome, Session{Authenticated: true, Role: types.RoleMember}, types.ViewDashboard},
		{"dashboard kept", types.ViewDashboard, Session{Authenticated: true, Role: types.RoleMember}, types.ViewDashboard},
		{"anonymous dashboard goes home", types.ViewDashboard, DefaultSession(), types.ViewHome},
		{"signup kept", types.ViewSignup, DefaultSession(), types.ViewSignup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewViewRouter(welcomeDelay, (&manualScheduler{}).Schedule, nil)
			r.Restore(tt.view, tt.session)
			if r.View() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, r.View())
			}
		})
	}
}

func TestViewRouterFormAuthNeedsForm(t *testing.T) {
	sched := &manualScheduler{}
	log := &viewLog{}
	r := NewViewRouter(welcomeDelay, sched.Schedule, log.listen)

	if err := r.CompleteFormAuth(types.RoleMember, "a@b.c"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on home, got %v", err)
	}
	if r.View() != types.ViewHome || len(log.all()) != 0 || sched.Pending() != 0 {
		t.Fatalf("router changed: view=%s events=%v", r.View(), log.all())
	}

	r.GoSignup()
	if err := r.CompleteFormAuth(types.RoleMember, "a@b.c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.View() != types.ViewWelcome {
		t.Fatalf("expected welcome, got %s", r.View())
	}
	if err := r.CompleteFormAuth(types.RoleMember, "a@b.c"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on welcome, got %v", err)
	}

	r.Close()
	if err := r.CompleteFormAuth(types.RoleMember, "a@b.c"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound once closed, got %v", err)
	}
}
