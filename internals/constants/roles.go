package constants

import (
	"fmt"
	"strings"
)

/* ==========================
   Role (position di tabel users)
========================== */

type Role string

const (
	RoleLocationSpecialist Role = "location_specialist"
	RoleLocationManager    Role = "location_manager"
	RoleBranchManager      Role = "branch_manager"
	RoleRegionalManager    Role = "regional_manager"
	RoleGeneralManager     Role = "general_manager"
	RoleUnknown            Role = ""
)

// ParseRole menormalkan string position dari token/DB ke Role.
// Role tak dikenal → RoleUnknown (selalu deny).
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_"))) {
	case "location_specialist":
		return RoleLocationSpecialist
	case "location_manager":
		return RoleLocationManager
	case "branch_manager":
		return RoleBranchManager
	case "regional_manager":
		return RoleRegionalManager
	case "general_manager":
		return RoleGeneralManager
	default:
		return RoleUnknown
	}
}

/* ==========================
   Action & Resource
========================== */

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceKplt        Resource = "kplt"
	ResourceStageRecord Resource = "stage_record"
)

/* ==========================
   Capability matrix
   (role, action, resource) → allow/deny. Pure & total:
   kombinasi yang tidak terdaftar otomatis deny.
========================== */

type capKey struct {
	role Role
	act  Action
	res  Resource
}

var capabilities = map[capKey]bool{
	// Location Specialist: pengusul lokasi; hanya memantau tahapan.
	{RoleLocationSpecialist, ActionRead, ResourceKplt}:        true,
	{RoleLocationSpecialist, ActionRead, ResourceStageRecord}: true,

	// Location Manager: menjalankan seluruh tahapan KPLT.
	{RoleLocationManager, ActionRead, ResourceKplt}:          true,
	{RoleLocationManager, ActionUpdate, ResourceKplt}:        true, // terbatas allow-list field
	{RoleLocationManager, ActionRead, ResourceStageRecord}:   true,
	{RoleLocationManager, ActionCreate, ResourceStageRecord}: true,
	{RoleLocationManager, ActionUpdate, ResourceStageRecord}: true,
	{RoleLocationManager, ActionDelete, ResourceStageRecord}: true,

	// Branch Manager: tanda tangan persetujuan cabang.
	{RoleBranchManager, ActionRead, ResourceKplt}:          true,
	{RoleBranchManager, ActionUpdate, ResourceKplt}:        true,
	{RoleBranchManager, ActionRead, ResourceStageRecord}:   true,

	// Regional Manager: tanda tangan regional, lintas cabang (read).
	{RoleRegionalManager, ActionRead, ResourceKplt}:        true,
	{RoleRegionalManager, ActionUpdate, ResourceKplt}:      true,
	{RoleRegionalManager, ActionRead, ResourceStageRecord}: true,

	// General Manager: keputusan akhir forum, lintas cabang (read).
	{RoleGeneralManager, ActionRead, ResourceKplt}:        true,
	{RoleGeneralManager, ActionUpdate, ResourceKplt}:      true,
	{RoleGeneralManager, ActionRead, ResourceStageRecord}: true,
}

func CanAct(role Role, act Action, res Resource) bool {
	return capabilities[capKey{role, act, res}]
}

// IsBranchExempt: role yang boleh membaca lintas cabang
// (existence check tetap berlaku, hanya branch-equality yang dilewati).
func IsBranchExempt(role Role) bool {
	return role == RoleRegionalManager || role == RoleGeneralManager
}

/* ==========================
   Pembatasan field per role
========================== */

// KpltManagerAllowedFields: Location Manager boleh update KPLT,
// tapi HANYA field keputusan approval. Key lain di payload = error validasi.
var KpltManagerAllowedFields = map[string]bool{
	"approval_status": true,
	"approver_id":     true,
	"approved_at":     true,
}

/* ==========================
   Template pesan error role
========================== */

const (
	ErrRoleForbidden   = "❌ Role Anda tidak diizinkan mengakses fitur %s."
	ErrBranchForbidden = "❌ Data ini milik cabang lain."
	ErrOwnerForbidden  = "❌ Dokumen ini milik user lain."
)

func RoleError(feature string) string {
	return fmt.Sprintf(ErrRoleForbidden, feature)
}
