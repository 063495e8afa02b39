package model

import (
	"time"

	"github.com/google/uuid"
)

// UlokModel: usulan lokasi kandidat. CRUD generiknya di luar lingkup
// service ini — di sini Ulok hanya dibaca untuk scope cabang/pemilik
// dan lampirannya (foto lokasi, dokumen survey).
type UlokModel struct {
	UlokID             uuid.UUID  `json:"ulok_id" gorm:"column:ulok_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	UlokBranchID       uuid.UUID  `json:"branch_id" gorm:"column:branch_id;type:uuid;not null;index"`
	UlokCreatedBy      uuid.UUID  `json:"created_by" gorm:"column:created_by;type:uuid;not null"`
	UlokNamaLokasi     string     `json:"nama_lokasi" gorm:"column:nama_lokasi;type:varchar(255);not null"`
	UlokAlamat         string     `json:"alamat" gorm:"column:alamat;type:text"`
	UlokLatitude       *float64   `json:"latitude,omitempty" gorm:"column:latitude"`
	UlokLongitude      *float64   `json:"longitude,omitempty" gorm:"column:longitude"`
	UlokApprovalStatus string     `json:"approval_status" gorm:"column:approval_status;type:varchar(32);not null;default:'Pending'"`
	UlokApproverID     *uuid.UUID `json:"approver_id,omitempty" gorm:"column:approver_id;type:uuid"`
	UlokApprovedAt     *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	UlokFotoLokasi     *string    `json:"foto_lokasi,omitempty" gorm:"column:foto_lokasi;type:text"`
	UlokCreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UlokUpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (UlokModel) TableName() string {
	return "ulok"
}
