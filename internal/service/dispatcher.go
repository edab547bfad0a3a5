package service

import "github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"

// Capabilities parameterize the single dashboard implementation.
type Capabilities struct {
	CanCreateTask     bool `json:"canCreateTask"`
	CanApproveMembers bool `json:"canApproveMembers"`
	CanReassign       bool `json:"canReassign"`
}

// Dispatch selects the dashboard variant for a role.
func Dispatch(role types.Role) types.DashboardKind {
	if role.IsAdmin() {
		return types.DashboardAdmin
	}
	return types.DashboardMember
}

// CapabilitiesFor returns what a role may do on its dashboard.
func CapabilitiesFor(role types.Role) Capabilities {
	if Dispatch(role) == types.DashboardAdmin {
		return Capabilities{CanCreateTask: true, CanApproveMembers: true, CanReassign: true}
	}
	return Capabilities{}
}

// SectionsFor lists the sidebar sections, in display order.
func SectionsFor(caps Capabilities) []string {
	var sections []string
	if caps.CanCreateTask {
		sections = append(sections, types.SectionCreateTask, types.SectionManageTasks)
	} else {
		sections = append(sections, types.SectionTotalTasks, types.SectionAvailableTasks, types.SectionCurrentTasks)
	}
	if caps.CanApproveMembers {
		sections = append(sections, types.SectionMemberRequests)
	}
	return append(sections, types.SectionProfile, types.SectionSettings)
}
