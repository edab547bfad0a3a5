package types

// View is the top-level screen a session is on
type View string

const (
	ViewHome      View = "home"
	ViewLogin     View = "login"
	ViewSignup    View = "signup"
	ViewWelcome   View = "welcome"
	ViewDashboard View = "dashboard"
)

// Role is the chapter position selected at login/signup
type Role string

const (
	RoleMember     Role = "member"
	RoleCoreMember Role = "core-member"
	RoleHeadOfDept Role = "head-of-dept"
)

// Task Status values
type TaskStatus string

const (
	StatusAvailable TaskStatus = "available"
	StatusOngoing   TaskStatus = "ongoing"
	StatusCompleted TaskStatus = "completed"
	StatusRejected  TaskStatus = "rejected"
)

// Member request status values
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// DashboardKind is the dashboard variant a role is dispatched to
type DashboardKind string

const (
	DashboardAdmin  DashboardKind = "admin"
	DashboardMember DashboardKind = "member"
)

// Dashboard sections
const (
	SectionProfile        = "profile"
	SectionTotalTasks     = "total-tasks"
	SectionAvailableTasks = "available-tasks"
	SectionCurrentTasks   = "current-tasks"
	SectionCreateTask     = "create-task"
	SectionManageTasks    = "manage-tasks"
	SectionMemberRequests = "member-requests"
	SectionSettings       = "settings"
)

// Valid values for validation
var ValidRoles = []Role{RoleMember, RoleCoreMember, RoleHeadOfDept}

var ValidTaskStatuses = []TaskStatus{
	StatusAvailable, StatusOngoing, StatusCompleted, StatusRejected,
}

var ValidRequestStatuses = []RequestStatus{
	RequestPending, RequestApproved, RequestRejected,
}

// CannedRejectionReasons pre-fill the rejection form
var CannedRejectionReasons = []string{
	"Not enough time to complete",
	"Outside my area of expertise",
	"Conflicts with academic schedule",
	"Already committed to another task",
}

// Departments offered by the profile form
var Departments = []string{
	"Technical",
	"Design",
	"Content",
	"Events",
	"Marketing",
	"Public Relations",
}

// Helper functions for validation
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidTaskStatus(status TaskStatus) bool {
	for _, s := range ValidTaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidRequestStatus(status RequestStatus) bool {
	for _, s := range ValidRequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role carries task-creation and approval privileges.
func (r Role) IsAdmin() bool {
	return r == RoleCoreMember || r == RoleHeadOfDept
}
