package service

import (
	"testing"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		role types.Role
		want types.DashboardKind
	}{
		{types.RoleMember, types.DashboardMember},
		{types.RoleCoreMember, types.DashboardAdmin},
		{types.RoleHeadOfDept, types.DashboardAdmin},
	}
	for _, tt := range tests {
		if got := Dispatch(tt.role); got != tt.want {
			t.Errorf("Dispatch(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
}

func TestCapabilitiesFor(t *testing.T) {
	admin := CapabilitiesFor(types.RoleHeadOfDept)
	if !admin.CanCreateTask || !admin.CanApproveMembers || !admin.CanReassign {
		t.Fatalf("admin should have every capability: %+v", admin)
	}
	if member := CapabilitiesFor(types.RoleMember); member != (Capabilities{}) {
		t.Fatalf("member should have no capabilities: %+v", member)
	}
}

func TestSectionsFor(t *testing.T) {
	member := SectionsFor(CapabilitiesFor(types.RoleMember))
	want := []string{types.SectionTotalTasks, types.SectionAvailableTasks, types.SectionCurrentTasks, types.SectionProfile, types.SectionSettings}
	if !equalIDs(member, want...) {
		t.Fatalf("member sections: got %v, want %v", member, want)
	}

	admin := SectionsFor(CapabilitiesFor(types.RoleCoreMember))
	want = []string{types.SectionCreateTask, types.SectionManageTasks, types.SectionMemberRequests, types.SectionProfile, types.SectionSettings}
	if !equalIDs(admin, want...) {
		t.Fatalf("admin sections: got %v, want %v", admin, want)
	}
}
