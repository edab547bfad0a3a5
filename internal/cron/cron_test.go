package cron

import (
	"context"
	"testing"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/metrics"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/notification"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func noopSchedule(d time.Duration, f func()) func() bool {
	return func() bool { return true }
}

func TestCheckDeadlinesAndSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	notif := notification.NewService(notification.Options{Scheduler: noopSchedule})
	sessions := service.NewSessionService(service.SessionOptions{
		Notifier:     notif,
		Scheduler:    noopSchedule,
		WelcomeDelay: 0,
		Now:          clock,
	})
	m := metrics.New(prometheus.NewRegistry())

	ls, err := sessions.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	ls.GoLogin()
	gate := service.NewAuthGate(service.DevAuthenticator{})
	if err := gate.SubmitLogin(ctx, ls, service.LoginRequest{Email: "a@b.c", Password: "pw", Role: types.RoleMember}); err != nil {
		t.Fatalf("login: %v", err)
	}

	s := NewScheduler(sessions, notif, m, 2*time.Hour)
	s.now = clock

	if n := s.CheckDeadlines(ctx); n != 1 {
		t.Fatalf("expected one reminder batch, got %d", n)
	}
	if n := s.CheckDeadlines(ctx); n != 0 {
		t.Fatalf("tasks are reminded once, got %d", n)
	}
	if notif.PendingToasts(ls.ID()) != 1 {
		t.Fatal("expected the reminder toast")
	}

	now = now.Add(3 * time.Hour)
	if n := s.SweepIdleSessions(); n != 1 {
		t.Fatalf("expected one swept session, got %d", n)
	}
	if testutil.ToFloat64(m.SessionsSwept) != 1 {
		t.Fatal("sweep not counted")
	}
	if notif.PendingToasts(ls.ID()) != 0 {
		t.Fatal("closing the session clears its toasts")
	}
}
