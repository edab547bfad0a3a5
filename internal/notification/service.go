package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/email"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/metrics"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
	"github.com/google/uuid"
)

// Broadcaster is the push side of the socket package.
type Broadcaster interface {
	BroadcastViewChanged(sessionID, view string, session map[string]interface{})
	BroadcastSessionClosed(sessionID string)
	BroadcastTaskUpdated(sessionID, action string, task map[string]interface{}, fromStatus string)
	BroadcastMemberRequestDecided(sessionID string, request map[string]interface{})
	BroadcastDeadlineReminder(sessionID string, tasks []map[string]interface{})
	BroadcastToast(sessionID, toastID, message string, durationMs int64)
	BroadcastToastDismissed(sessionID, toastID string)
}

// Mailer queues outgoing emails.
type Mailer interface {
	EnqueueMemberDecision(to string, data email.MemberDecisionData)
	EnqueueDeadlineReminder(to string, data email.DeadlineReminderData)
}

type Options struct {
	Broadcaster   Broadcaster
	Mailer        Mailer
	Metrics       *metrics.Metrics
	ToastDuration time.Duration
	Scheduler     service.Scheduler
}

// Service fans session events out to WebSocket clients, email and metrics,
// and owns the toast auto-dismiss timers.
type Service struct {
	broadcaster   Broadcaster
	mailer        Mailer
	metrics       *metrics.Metrics
	toastDuration time.Duration
	schedule      service.Scheduler
	newID         func() string

	mu     sync.Mutex
	toasts map[string]map[string]func() bool
}

var _ service.Notifier = (*Service)(nil)

func NewService(opts Options) *Service {
	if opts.Scheduler == nil {
		opts.Scheduler = service.RealScheduler
	}
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = 3 * time.Second
	}
	return &Service{
		broadcaster:   opts.Broadcaster,
		mailer:        opts.Mailer,
		metrics:       opts.Metrics,
		toastDuration: opts.ToastDuration,
		schedule:      opts.Scheduler,
		newID:         func() string { return uuid.New().String() },
		toasts:        make(map[string]map[string]func() bool),
	}
}

// ============================================
// Session events
// ============================================

func (s *Service) ViewChanged(sessionID string, view types.View, session service.Session) {
	if s.metrics != nil {
		s.metrics.ViewChanges.WithLabelValues(string(view)).Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastViewChanged(sessionID, string(view), map[string]interface{}{
			"authenticated": session.Authenticated,
			"role":          session.Role,
			"email":         session.Email,
		})
	}
}

// SessionClosed cancels the session's pending toast timers and disconnects
// its clients.
func (s *Service) SessionClosed(sessionID string) {
	s.mu.Lock()
	pending := s.toasts[sessionID]
	delete(s.toasts, sessionID)
	s.mu.Unlock()

	for _, stop := range pending {
		stop()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSessionClosed(sessionID)
	}
}

// ============================================
// Dashboard events
// ============================================

func (s *Service) TaskChanged(ctx context.Context, sessionID string, change service.TaskChange) {
	if s.metrics != nil {
		s.metrics.TaskChanges.WithLabelValues(change.Action).Inc()
	}
	if s.broadcaster == nil {
		return
	}
	from := ""
	if change.From != nil {
		from = string(*change.From)
	}
	s.broadcaster.BroadcastTaskUpdated(sessionID, change.Action, TaskPayload(change.Task), from)
}

// MemberRequestDecided pushes the decision and emails the applicant.
func (s *Service) MemberRequestDecided(ctx context.Context, sessionID string, req *repository.MemberRequest) {
	if s.metrics != nil {
		s.metrics.RequestDecisions.WithLabelValues(string(req.Status)).Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRequestDecided(sessionID, RequestPayload(req))
	}
	if s.mailer != nil && req.Email != "" {
		s.mailer.EnqueueMemberDecision(req.Email, email.MemberDecisionData{
			FullName:    req.FullName,
			Role:        string(req.Role),
			Approved:    req.Status == types.RequestApproved,
			SubmittedAt: req.SubmittedAt.Format("Jan 2, 2006"),
		})
		if s.metrics != nil {
			s.metrics.Emails.WithLabelValues("member_decision").Inc()
		}
	}
}

// DeadlineReminder delivers one reminder batch as a push, a toast and,
// when the profile asks for it, an email.
func (s *Service) DeadlineReminder(ctx context.Context, batch *service.ReminderBatch) {
	if batch == nil || len(batch.Tasks) == 0 {
		return
	}
	if s.metrics != nil {
		s.metrics.Reminders.Inc()
	}

	tasks := make([]map[string]interface{}, len(batch.Tasks))
	emailTasks := make([]email.DeadlineReminderTask, len(batch.Tasks))
	for i, t := range batch.Tasks {
		tasks[i] = TaskPayload(t)
		emailTasks[i] = email.DeadlineReminderTask{Title: t.Title, Deadline: t.Deadline.Format("Jan 2, 2006")}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastDeadlineReminder(batch.SessionID, tasks)
	}

	msg := fmt.Sprintf("%d tasks due soon", len(batch.Tasks))
	if len(batch.Tasks) == 1 {
		msg = fmt.Sprintf("%q is due soon", batch.Tasks[0].Title)
	}
	s.Toast(batch.SessionID, msg)

	if batch.SendEmail && s.mailer != nil && batch.Email != "" {
		s.mailer.EnqueueDeadlineReminder(batch.Email, email.DeadlineReminderData{
			UserName: batch.Name,
			Tasks:    emailTasks,
		})
		if s.metrics != nil {
			s.metrics.Emails.WithLabelValues("deadline_reminder").Inc()
		}
	}
}

// ============================================
// Toasts
// ============================================

// Toast shows a transient message that dismisses itself after the toast
// duration.
func (s *Service) Toast(sessionID, message string) {
	id := s.newID()

	s.mu.Lock()
	if s.toasts[sessionID] == nil {
		s.toasts[sessionID] = make(map[string]func() bool)
	}
	s.toasts[sessionID][id] = s.schedule(s.toastDuration, func() { s.dismiss(sessionID, id) })
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Toasts.Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToast(sessionID, id, message, s.toastDuration.Milliseconds())
	}
	log.Printf("[Toast] 🔔 session=%s %s", sessionID, message)
}

// PendingToasts reports how many toasts of a session are still showing.
func (s *Service) PendingToasts(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts[sessionID])
}

func (s *Service) dismiss(sessionID, id string) {
	s.mu.Lock()
	_, ok := s.toasts[sessionID][id]
	if ok {
		delete(s.toasts[sessionID], id)
		if len(s.toasts[sessionID]) == 0 {
			delete(s.toasts, sessionID)
		}
	}
	s.mu.Unlock()

	if ok && s.broadcaster != nil {
		s.broadcaster.BroadcastToastDismissed(sessionID, id)
	}
}

// ============================================
// Payloads
// ============================================

func TaskPayload(t *repository.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":              t.ID,
		"title":           t.Title,
		"description":     t.Description,
		"assignedTo":      t.AssignedTo,
		"deadline":        t.Deadline.Format("2006-01-02"),
		"status":          t.Status,
		"rejectionReason": t.RejectionReason,
	}
}

func RequestPayload(r *repository.MemberRequest) map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"fullName":    r.FullName,
		"phoneNumber": r.PhoneNumber,
		"email":       r.Email,
		"role":        r.Role,
		"submittedAt": r.SubmittedAt,
		"status":      r.Status,
	}
}
