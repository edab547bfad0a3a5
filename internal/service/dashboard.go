package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/seed"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

// DashboardOptions configures a freshly mounted dashboard.
type DashboardOptions struct {
	SessionID string
	Session   Session
	Identity  Identity
	Activity  repository.ActivityRepository
	Notifier  Notifier
	Now       func() time.Time
}

// Dashboard is the single dashboard implementation; Capabilities decide which
// operations the mounted role may use. Every mount gets its own stores.
type Dashboard struct {
	mu sync.Mutex

	sessionID string
	kind      types.DashboardKind
	caps      Capabilities
	actor     string

	tasks    *TaskStore
	profile  *ProfileStore
	requests *MemberRequestStore
	reminded map[string]bool

	activity repository.ActivityRepository
	notifier Notifier
	now      func() time.Time
}

func NewDashboard(opts DashboardOptions) *Dashboard {
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	kind := Dispatch(opts.Session.Role)
	caps := CapabilitiesFor(opts.Session.Role)
	ctx := context.Background()

	taskRepo := repository.NewTaskRepository()
	for _, t := range seed.Tasks(kind) {
		_ = taskRepo.Create(ctx, t)
	}
	tasks := NewTaskStore(taskRepo)
	tasks.now = opts.Now

	d := &Dashboard{
		sessionID: opts.SessionID,
		kind:      kind,
		caps:      caps,
		actor:     opts.Session.Email,
		tasks:     tasks,
		profile: NewProfileStore(seed.Profile(
			opts.Session.Email, opts.Identity.FirstName, opts.Identity.LastName, opts.Identity.PasswordHash,
		)),
		reminded: make(map[string]bool),
		activity: opts.Activity,
		notifier: opts.Notifier,
		now:      opts.Now,
	}

	if caps.CanApproveMembers {
		reqRepo := repository.NewMemberRequestRepository()
		for _, r := range seed.MemberRequests(opts.Now()) {
			_ = reqRepo.Create(ctx, r)
		}
		d.requests = NewMemberRequestStore(reqRepo)
		d.requests.now = opts.Now
	}
	return d
}

func (d *Dashboard) Kind() types.DashboardKind  { return d.kind }
func (d *Dashboard) Capabilities() Capabilities { return d.caps }
func (d *Dashboard) Sections() []string         { return SectionsFor(d.caps) }

// ============================================
// Task views
// ============================================

func (d *Dashboard) Tasks(ctx context.Context) ([]*repository.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks.All(ctx)
}

func (d *Dashboard) Task(ctx context.Context, id string) (*repository.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks.Get(ctx, id)
}

func (d *Dashboard) TasksByStatus(ctx context.Context, status types.TaskStatus) ([]*repository.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks.TasksByStatus(ctx, status)
}

func (d *Dashboard) TasksExcluding(ctx context.Context, status types.TaskStatus) ([]*repository.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasks.TasksExcluding(ctx, status)
}

// TotalTasks is every task for task managers, and everything already picked up
// (or turned down) for members.
func (d *Dashboard) TotalTasks(ctx context.Context) ([]*repository.Task, error) {
	if d.caps.CanCreateTask {
		return d.Tasks(ctx)
	}
	return d.TasksExcluding(ctx, types.StatusAvailable)
}

func (d *Dashboard) AvailableTasks(ctx context.Context) ([]*repository.Task, error) {
	return d.TasksByStatus(ctx, types.StatusAvailable)
}

func (d *Dashboard) CurrentTasks(ctx context.Context) ([]*repository.Task, error) {
	return d.TasksByStatus(ctx, types.StatusOngoing)
}

func (d *Dashboard) RejectionReasons() []string {
	out := make([]string, len(types.CannedRejectionReasons))
	copy(out, types.CannedRejectionReasons)
	return out
}

// ============================================
// Task mutations
// ============================================

func (d *Dashboard) CreateTask(ctx context.Context, in CreateTaskInput) (*repository.Task, error) {
	if !d.caps.CanCreateTask {
		return nil, fmt.Errorf("%w: creating tasks", ErrForbidden)
	}
	d.mu.Lock()
	task, err := d.tasks.CreateTask(ctx, in)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	d.afterTaskChange(ctx, TaskChange{Action: ActionCreated, Task: task, Actor: d.actor}, "Task created")
	return task, nil
}

func (d *Dashboard) AcceptTask(ctx context.Context, id string) (*repository.Task, error) {
	return d.mutateTask(ctx, id, ActionAccepted, func() (*repository.Task, error) {
		return d.tasks.AcceptTask(ctx, id)
	})
}

func (d *Dashboard) RejectTask(ctx context.Context, id, reason string) (*repository.Task, error) {
	return d.mutateTask(ctx, id, ActionRejected, func() (*repository.Task, error) {
		return d.tasks.RejectTask(ctx, id, reason)
	})
}

func (d *Dashboard) CompleteTask(ctx context.Context, id string) (*repository.Task, error) {
	return d.mutateTask(ctx, id, ActionCompleted, func() (*repository.Task, error) {
		return d.tasks.CompleteTask(ctx, id)
	})
}

func (d *Dashboard) ReassignTask(ctx context.Context, id, assignee string) (*repository.Task, error) {
	if !d.caps.CanReassign {
		return nil, fmt.Errorf("%w: reassigning tasks", ErrForbidden)
	}
	return d.mutateTask(ctx, id, ActionReassigned, func() (*repository.Task, error) {
		return d.tasks.ReassignTask(ctx, id, assignee)
	})
}

func (d *Dashboard) mutateTask(ctx context.Context, id, action string, apply func() (*repository.Task, error)) (*repository.Task, error) {
	d.mu.Lock()
	var from *types.TaskStatus
	if before, err := d.tasks.Get(ctx, id); err == nil {
		s := before.Status
		from = &s
	}
	task, err := apply()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	d.afterTaskChange(ctx, TaskChange{Action: action, Task: task, From: from, Actor: d.actor}, toastFor(action, task))
	return task, nil
}

func (d *Dashboard) afterTaskChange(ctx context.Context, change TaskChange, toast string) {
	if d.activity != nil {
		a := &repository.Activity{
			SessionID:  d.sessionID,
			TaskID:     change.Task.ID,
			Action:     change.Action,
			FromStatus: change.From,
			ToStatus:   change.Task.Status,
			ActorEmail: change.Actor,
		}
		switch change.Action {
		case ActionRejected:
			a.Detail = change.Task.RejectionReason
		case ActionReassigned:
			assignee := change.Task.AssignedTo
			a.Detail = &assignee
		}
		if err := d.activity.Create(ctx, a); err != nil {
			log.Printf("[Dashboard] ⚠️ Failed to record activity for task %s: %v", change.Task.ID, err)
		}
	}
	d.notifier.TaskChanged(ctx, d.sessionID, change)
	d.notifier.Toast(d.sessionID, toast)
}

func toastFor(action string, task *repository.Task) string {
	switch action {
	case ActionAccepted:
		return "Task accepted"
	case ActionRejected:
		return fmt.Sprintf("Task rejected with reason: %s", *task.RejectionReason)
	case ActionCompleted:
		return "Task marked as completed"
	case ActionReassigned:
		return fmt.Sprintf("Task reassigned to %s", task.AssignedTo)
	}
	return "Task updated"
}

// Activity lists the most recent task changes made on this session.
func (d *Dashboard) Activity(ctx context.Context, limit int) ([]*repository.Activity, error) {
	if d.activity == nil {
		return []*repository.Activity{}, nil
	}
	return d.activity.ListBySession(ctx, d.sessionID, limit)
}

// ============================================
// Member requests
// ============================================

func (d *Dashboard) MemberRequests(ctx context.Context, status *types.RequestStatus) ([]*repository.MemberRequest, error) {
	if d.requests == nil {
		return nil, fmt.Errorf("%w: member requests", ErrForbidden)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests.List(ctx, status)
}

func (d *Dashboard) ApproveRequest(ctx context.Context, id string) (*repository.MemberRequest, error) {
	return d.decideRequest(ctx, id, true)
}

func (d *Dashboard) RejectRequest(ctx context.Context, id string) (*repository.MemberRequest, error) {
	return d.decideRequest(ctx, id, false)
}

func (d *Dashboard) decideRequest(ctx context.Context, id string, approve bool) (*repository.MemberRequest, error) {
	if d.requests == nil {
		return nil, fmt.Errorf("%w: member requests", ErrForbidden)
	}
	d.mu.Lock()
	var (
		req *repository.MemberRequest
		err error
	)
	if approve {
		req, err = d.requests.Approve(ctx, id)
	} else {
		req, err = d.requests.Reject(ctx, id)
	}
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	d.notifier.MemberRequestDecided(ctx, d.sessionID, req)
	d.notifier.Toast(d.sessionID, fmt.Sprintf("Request from %s %s", req.FullName, req.Status))
	return req, nil
}

// ============================================
// Profile & settings
// ============================================

func (d *Dashboard) Profile() *repository.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.Profile()
}

func (d *Dashboard) IsEditing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.IsEditing()
}

func (d *Dashboard) EnterEditMode() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profile.EnterEditMode()
}

func (d *Dashboard) ToggleEditMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.ToggleEditMode()
}

type FieldUpdate struct {
	Name  string
	Value string
}

// UpdateFields applies updates in order and stops at the first invalid one.
func (d *Dashboard) UpdateFields(updates []FieldUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range updates {
		if err := d.profile.UpdateField(u.Name, u.Value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dashboard) UpdateField(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.UpdateField(name, value)
}

func (d *Dashboard) SaveEdit() error {
	d.mu.Lock()
	err := d.profile.SaveEdit()
	d.mu.Unlock()
	if err == nil {
		d.notifier.Toast(d.sessionID, "Profile updated")
	}
	return err
}

func (d *Dashboard) CancelEdit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.CancelEdit()
}

func (d *Dashboard) SetProfilePicture(data string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.SetProfilePicture(data)
}

func (d *Dashboard) LoadProfilePicture(r io.Reader, mimeType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.LoadProfilePicture(r, mimeType)
}

func (d *Dashboard) ChangePassword(current, next string) error {
	d.mu.Lock()
	err := d.profile.ChangePassword(current, next)
	d.mu.Unlock()
	if err == nil {
		d.notifier.Toast(d.sessionID, "Password changed")
	}
	return err
}

func (d *Dashboard) Settings() repository.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.Settings()
}

func (d *Dashboard) UpdateSettings(patch SettingsPatch) repository.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile.UpdateSettings(patch)
}

// ============================================
// Reminders
// ============================================

// ReminderBatch is the set of ongoing tasks a session should be reminded of.
type ReminderBatch struct {
	SessionID string
	Email     string
	Name      string
	SendEmail bool
	Tasks     []*repository.Task
}

// DueSoon collects ongoing tasks due within the window that have not been
// reminded yet, and marks them reminded. It returns nil when reminders are
// off or nothing is due.
func (d *Dashboard) DueSoon(ctx context.Context, now time.Time, within time.Duration) (*ReminderBatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	profile := d.profile.Profile()
	if !profile.Settings.TaskReminders {
		return nil, nil
	}
	ongoing, err := d.tasks.TasksByStatus(ctx, types.StatusOngoing)
	if err != nil {
		return nil, err
	}

	var due []*repository.Task
	for _, t := range ongoing {
		if d.reminded[t.ID] {
			continue
		}
		if t.Deadline.Before(now) || t.Deadline.After(now.Add(within)) {
			continue
		}
		d.reminded[t.ID] = true
		due = append(due, t)
	}
	if len(due) == 0 {
		return nil, nil
	}
	return &ReminderBatch{
		SessionID: d.sessionID,
		Email:     profile.Email,
		Name:      profile.FirstName + " " + profile.LastName,
		SendEmail: profile.Settings.EmailNotifications,
		Tasks:     due,
	}, nil
}
