package service

import (
	"context"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

// Task change actions
const (
	ActionCreated    = "created"
	ActionAccepted   = "accepted"
	ActionRejected   = "rejected"
	ActionCompleted  = "completed"
	ActionReassigned = "reassigned"
)

// TaskChange describes one applied task mutation.
type TaskChange struct {
	Action string
	Task   *repository.Task
	From   *types.TaskStatus
	Actor  string
}

// Notifier receives the side effects of session operations. Implementations
// must not call back into the session that produced the event.
type Notifier interface {
	ViewChanged(sessionID string, view types.View, session Session)
	TaskChanged(ctx context.Context, sessionID string, change TaskChange)
	MemberRequestDecided(ctx context.Context, sessionID string, req *repository.MemberRequest)
	Toast(sessionID, message string)
	SessionClosed(sessionID string)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) ViewChanged(string, types.View, Session)                                 {}
func (NopNotifier) TaskChanged(context.Context, string, TaskChange)                         {}
func (NopNotifier) MemberRequestDecided(context.Context, string, *repository.MemberRequest) {}
func (NopNotifier) Toast(string, string)                                                    {}
func (NopNotifier) SessionClosed(string)                                                    {}
