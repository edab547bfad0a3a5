package cron

import (
	"context"
	"log"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/metrics"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/notification"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/robfig/cron/v3"
)

// ReminderWindow is how far ahead ongoing tasks trigger a deadline reminder.
const ReminderWindow = 48 * time.Hour

// Scheduler handles scheduled jobs
type Scheduler struct {
	cron        *cron.Cron
	sessions    *service.SessionService
	notifSvc    *notification.Service
	metrics     *metrics.Metrics
	idleTimeout time.Duration
	now         func() time.Time
}

func NewScheduler(sessions *service.SessionService, notifSvc *notification.Service, m *metrics.Metrics, idleTimeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		sessions:    sessions,
		notifSvc:    notifSvc,
		metrics:     m,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *Scheduler) Start() {
	// Every hour - ongoing tasks due within the reminder window
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running deadline reminder check...")
		s.CheckDeadlines(context.Background())
	})

	// Every 5 minutes - evict idle sessions
	s.cron.AddFunc("*/5 * * * *", func() {
		s.SweepIdleSessions()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Cron] Scheduler stopped")
}

// CheckDeadlines reminds every mounted dashboard of its ongoing tasks that
// are due soon. It returns the number of reminder batches sent.
func (s *Scheduler) CheckDeadlines(ctx context.Context) int {
	now := s.now()
	sent := 0
	s.sessions.ForEachDashboard(func(ls *service.LiveSession, d *service.Dashboard) {
		batch, err := d.DueSoon(ctx, now, ReminderWindow)
		if err != nil {
			log.Printf("[Cron] Error collecting due tasks for session %s: %v", ls.ID(), err)
			return
		}
		if batch == nil {
			return
		}
		s.notifSvc.DeadlineReminder(ctx, batch)
		sent++
	})
	if sent > 0 {
		log.Printf("[Cron] ⏰ Sent %d deadline reminders", sent)
	}
	return sent
}

func (s *Scheduler) SweepIdleSessions() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	n := s.sessions.SweepIdle(s.idleTimeout)
	if n > 0 {
		log.Printf("[Cron] 🧹 Evicted %d idle sessions", n)
		if s.metrics != nil {
			s.metrics.SessionsSwept.Add(float64(n))
		}
	}
	return n
}
