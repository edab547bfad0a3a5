package models

import "time"

// Form fields are not marked required: the service layer reports the first
// missing field by name.

// ============================================
// Session DTOs
// ============================================

type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role"`
	Email         string `json:"email"`
}

type SessionResponse struct {
	ID      string      `json:"id"`
	View    string      `json:"view"`
	Session SessionInfo `json:"session"`
}

type StartSessionResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// ============================================
// Auth DTOs
// ============================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SignupRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Position    string `json:"position"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// ============================================
// Dashboard DTOs
// ============================================

type CapabilitiesResponse struct {
	CanCreateTask     bool `json:"canCreateTask"`
	CanApproveMembers bool `json:"canApproveMembers"`
	CanReassign       bool `json:"canReassign"`
}

type DashboardResponse struct {
	Kind         string               `json:"kind"`
	Capabilities CapabilitiesResponse `json:"capabilities"`
	Sections     []string             `json:"sections"`
}

// ============================================
// Task DTOs
// ============================================

type TaskResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AssignedTo      string    `json:"assignedTo,omitempty"`
	Deadline        string    `json:"deadline"`
	Status          string    `json:"status"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	Deadline    string `json:"deadline"` // YYYY-MM-DD
}

type RejectTaskRequest struct {
	Reason string `json:"reason"`
}

type ReassignTaskRequest struct {
	AssignedTo string `json:"assignedTo"`
}

type ActivityResponse struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"taskId"`
	Action     string    `json:"action"`
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Detail     *string   `json:"detail,omitempty"`
	ActorEmail string    `json:"actorEmail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ============================================
// Member Request DTOs
// ============================================

type MemberRequestResponse struct {
	ID          string     `json:"id"`
	FullName    string     `json:"fullName"`
	PhoneNumber string     `json:"phoneNumber"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Status      string     `json:"status"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

// ============================================
// Profile DTOs
// ============================================

type ProfileResponse struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Branch         string  `json:"branch"`
	Section        string  `json:"section"`
	Department     string  `json:"department"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	Editing        bool    `json:"editing"`
}

// UpdateProfileRequest only carries the fields being changed.
type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Branch     *string `json:"branch,omitempty"`
	Section    *string `json:"section,omitempty"`
	Department *string `json:"department,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type SettingsResponse struct {
	TaskReminders      bool `json:"taskReminders"`
	EmailNotifications bool `json:"emailNotifications"`
}

type UpdateSettingsRequest struct {
	TaskReminders      *bool `json:"taskReminders,omitempty"`
	EmailNotifications *bool `json:"emailNotifications,omitempty"`
}

// ============================================
// Common
// ============================================

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
