package constants

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"location_specialist", RoleLocationSpecialist},
		{"Location Manager", RoleLocationManager},
		{"  BRANCH_MANAGER  ", RoleBranchManager},
		{"regional_manager", RoleRegionalManager},
		{"General Manager", RoleGeneralManager},
		{"admin", RoleUnknown},
		{"", RoleUnknown},
	}
	for _, tc := range cases {
		if got := ParseRole(tc.in); got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanAct_StageRecord(t *testing.T) {
	// Hanya Location Manager yang boleh mutasi record tahapan.
	mutations := []Action{ActionCreate, ActionUpdate, ActionDelete}
	for _, act := range mutations {
		if !CanAct(RoleLocationManager, act, ResourceStageRecord) {
			t.Errorf("location_manager harus boleh %s stage_record", act)
		}
	}
	for _, role := range []Role{RoleLocationSpecialist, RoleBranchManager, RoleRegionalManager, RoleGeneralManager} {
		for _, act := range mutations {
			if CanAct(role, act, ResourceStageRecord) {
				t.Errorf("%s tidak boleh %s stage_record", role, act)
			}
		}
	}
}

func TestCanAct_ReadAllRoles(t *testing.T) {
	for _, role := range []Role{
		RoleLocationSpecialist, RoleLocationManager,
		RoleBranchManager, RoleRegionalManager, RoleGeneralManager,
	} {
		if !CanAct(role, ActionRead, ResourceKplt) {
			t.Errorf("%s harus boleh read kplt", role)
		}
		if !CanAct(role, ActionRead, ResourceStageRecord) {
			t.Errorf("%s harus boleh read stage_record", role)
		}
	}
}

func TestCanAct_UnknownRoleDenied(t *testing.T) {
	for _, act := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		for _, res := range []Resource{ResourceKplt, ResourceStageRecord} {
			if CanAct(RoleUnknown, act, res) {
				t.Errorf("role kosong tidak boleh %s %s", act, res)
			}
			if CanAct(Role("superuser"), act, res) {
				t.Errorf("role tak terdaftar tidak boleh %s %s", act, res)
			}
		}
	}
}

func TestIsBranchExempt(t *testing.T) {
	if !IsBranchExempt(RoleRegionalManager) || !IsBranchExempt(RoleGeneralManager) {
		t.Error("RM dan GM harus lintas cabang")
	}
	for _, role := range []Role{RoleLocationSpecialist, RoleLocationManager, RoleBranchManager, RoleUnknown} {
		if IsBranchExempt(role) {
			t.Errorf("%s tidak boleh lintas cabang", role)
		}
	}
}
