// internal/seed/seed.go
package seed

import (
	"strings"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

// Tasks returns the mock task list a freshly mounted dashboard starts with.
// Every call returns new records; dashboards never share them.
func Tasks(kind types.DashboardKind) []*repository.Task {
	if kind == types.DashboardAdmin {
		return adminTasks()
	}
	return memberTasks()
}

func memberTasks() []*repository.Task {
	return []*repository.Task{
		task("1", "Website Redesign", "Update the ACM BVCOE website with new design", "", "2025-03-20", types.StatusOngoing, nil),
		task("2", "Event Planning", "Organize the upcoming hackathon event", "", "2025-03-25", types.StatusCompleted, nil),
		task("3", "Social Media Campaign", "Create content for social media platforms", "", "2025-03-18", types.StatusRejected, stringPtr("Not enough time to complete")),
		task("4", "Workshop Content Creation", "Create presentation slides for React workshop", "", "2025-04-01", types.StatusAvailable, nil),
		task("5", "Member Onboarding", "Prepare onboarding materials for new members", "", "2025-04-05", types.StatusAvailable, nil),
	}
}

func adminTasks() []*repository.Task {
	return []*repository.Task{
		task("1", "Website Redesign", "Update the ACM BVCOE website with new design", "John Doe", "2025-03-20", types.StatusOngoing, nil),
		task("2", "Event Planning", "Organize the upcoming hackathon event", "Jane Smith", "2025-03-25", types.StatusCompleted, nil),
		task("3", "Social Media Campaign", "Create content for social media platforms", "Rahul Verma", "2025-03-18", types.StatusRejected, stringPtr("Not enough time to complete")),
	}
}

// MemberRequests returns the pending applications shown to approvers.
func MemberRequests(now time.Time) []*repository.MemberRequest {
	return []*repository.MemberRequest{
		{
			ID:          "req-1",
			FullName:    "Aarav Sharma",
			PhoneNumber: "+91 98765 43210",
			Email:       "aarav.sharma@bvcoe.edu",
			Role:        types.RoleMember,
			SubmittedAt: now.Add(-72 * time.Hour),
			Status:      types.RequestPending,
		},
		{
			ID:          "req-2",
			FullName:    "Priya Nair",
			PhoneNumber: "+91 91234 56789",
			Email:       "priya.nair@bvcoe.edu",
			Role:        types.RoleCoreMember,
			SubmittedAt: now.Add(-48 * time.Hour),
			Status:      types.RequestPending,
		},
		{
			ID:          "req-3",
			FullName:    "Karan Mehta",
			PhoneNumber: "(011) 2345-6789",
			Email:       "karan.mehta@bvcoe.edu",
			Role:        types.RoleMember,
			SubmittedAt: now.Add(-24 * time.Hour),
			Status:      types.RequestPending,
		},
	}
}

// Profile builds the starting profile. Names fall back to the placeholder
// member when the session came from a login rather than a signup.
func Profile(email, firstName, lastName, passwordHash string) repository.Profile {
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		firstName, lastName = "John", "Doe"
	}
	if strings.TrimSpace(email) == "" {
		email = "john.doe@bvcoe.edu"
	}
	return repository.Profile{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Branch:       "CSE",
		Section:      "A",
		Department:   types.Departments[0],
		PasswordHash: passwordHash,
		Settings: repository.Settings{
			TaskReminders:      true,
			EmailNotifications: true,
		},
	}
}

func task(id, title, description, assignedTo, deadline string, status types.TaskStatus, reason *string) *repository.Task {
	d, _ := time.Parse("2006-01-02", deadline)
	created := d.AddDate(0, 0, -14)
	return &repository.Task{
		ID:              id,
		Title:           title,
		Description:     description,
		AssignedTo:      assignedTo,
		Deadline:        d,
		Status:          status,
		RejectionReason: reason,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func stringPtr(s string) *string {
	return &s
}
