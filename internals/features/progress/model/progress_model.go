package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressModel: satu thread workflow per KPLT, menunjuk tahapan berjalan.
// current_stage digeser sebagai side effect create tahapan tertentu (MOU)
// oleh stored function, bukan oleh aplikasi.
type ProgressModel struct {
	ProgressID           uuid.UUID `json:"progress_id" gorm:"column:progress_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	ProgressKpltID       uuid.UUID `json:"kplt_id" gorm:"column:kplt_id;type:uuid;not null;uniqueIndex"`
	ProgressCurrentStage string    `json:"current_stage" gorm:"column:current_stage;type:varchar(32);not null;default:'notaris'"`
	ProgressCreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	ProgressUpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (ProgressModel) TableName() string {
	return "kplt_progress"
}
