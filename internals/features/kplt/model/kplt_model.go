package model

import (
	"time"

	"github.com/google/uuid"
)

/* ==========================
   Status KPLT
========================== */

const (
	KpltStatusNeedInput       = "Need Input"
	KpltStatusInProgress      = "In Progress"
	KpltStatusWaitingForForum = "Waiting for Forum"
	KpltStatusOK              = "OK"
	KpltStatusNOK             = "NOK"
)

// KpltStatusTerminal: OK/NOK tidak bisa dibuka kembali.
func KpltStatusTerminal(status string) bool {
	return status == KpltStatusOK || status == KpltStatusNOK
}

// KpltModel: permohonan formal yang diturunkan dari Ulok yang disetujui.
type KpltModel struct {
	KpltID         uuid.UUID  `json:"kplt_id" gorm:"column:kplt_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	KpltUlokID     uuid.UUID  `json:"ulok_id" gorm:"column:ulok_id;type:uuid;not null;uniqueIndex"`
	KpltStatus     string     `json:"status" gorm:"column:status;type:varchar(32);not null;default:'Need Input'"`
	KpltApproverID *uuid.UUID `json:"approver_id,omitempty" gorm:"column:approver_id;type:uuid"`
	KpltApprovedAt *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	KpltCreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	KpltUpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (KpltModel) TableName() string {
	return "kplt"
}

/* ==========================
   Ledger tanda tangan per role
========================== */

// KpltSignOffModel: satu tanda tangan per role per KPLT
// (unique index kplt_id+role menopang idempotensi di level DB).
type KpltSignOffModel struct {
	SignOffID         uuid.UUID `json:"sign_off_id" gorm:"column:sign_off_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	SignOffKpltID     uuid.UUID `json:"kplt_id" gorm:"column:kplt_id;type:uuid;not null;uniqueIndex:uq_kplt_sign_offs_role"`
	SignOffRole       string    `json:"role" gorm:"column:role;type:varchar(32);not null;uniqueIndex:uq_kplt_sign_offs_role"`
	SignOffDecision   string    `json:"decision" gorm:"column:decision;type:varchar(8);not null"`
	SignOffApproverID uuid.UUID `json:"approver_id" gorm:"column:approver_id;type:uuid;not null"`
	SignOffCreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (KpltSignOffModel) TableName() string {
	return "kplt_sign_offs"
}
