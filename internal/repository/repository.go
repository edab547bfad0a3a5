// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

var ErrDuplicateID = errors.New("record with this id already exists")

// ============================================
// Models / Entities
// ============================================

type Task struct {
	ID              string
	Title           string
	Description     string
	AssignedTo      string
	Deadline        time.Time
	Status          types.TaskStatus
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy so callers never share the stored record.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.RejectionReason != nil {
		reason := *t.RejectionReason
		c.RejectionReason = &reason
	}
	return &c
}

type MemberRequest struct {
	ID          string
	FullName    string
	PhoneNumber string
	Email       string
	Role        types.Role
	SubmittedAt time.Time
	Status      types.RequestStatus
	DecidedAt   *time.Time
}

func (m *MemberRequest) Clone() *MemberRequest {
	if m == nil {
		return nil
	}
	c := *m
	if m.DecidedAt != nil {
		at := *m.DecidedAt
		c.DecidedAt = &at
	}
	return &c
}

type Settings struct {
	TaskReminders      bool
	EmailNotifications bool
}

type Profile struct {
	FirstName      string
	LastName       string
	Email          string
	Branch         string
	Section        string
	Department     string
	ProfilePicture *string
	PasswordHash   string
	Settings       Settings
}

func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.ProfilePicture != nil {
		pic := *p.ProfilePicture
		c.ProfilePicture = &pic
	}
	return &c
}

// SessionRecord is the persisted snapshot of a session's router state.
type SessionRecord struct {
	ID            string     `json:"id"`
	View          types.View `json:"view"`
	Authenticated bool       `json:"authenticated"`
	Role          types.Role `json:"role"`
	Email         string     `json:"email"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Activity struct {
	ID         string
	SessionID  string
	TaskID     string
	Action     string
	FromStatus *types.TaskStatus
	ToStatus   types.TaskStatus
	Detail     *string
	ActorEmail string
	CreatedAt  time.Time
}

// ============================================
// Repository Interfaces
// ============================================

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindAll(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
}

type MemberRequestRepository interface {
	Create(ctx context.Context, req *MemberRequest) error
	FindByID(ctx context.Context, id string) (*MemberRequest, error)
	FindAll(ctx context.Context) ([]*MemberRequest, error)
	Update(ctx context.Context, req *MemberRequest) error
}

type SessionRepository interface {
	Save(ctx context.Context, rec *SessionRecord) error
	FindByID(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*Activity, error)
}
