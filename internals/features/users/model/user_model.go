package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel: position menentukan capability matrix,
// branch_id menentukan partisi tenant.
type UserModel struct {
	UserID       uuid.UUID `json:"user_id" gorm:"column:user_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	UserName     string    `json:"user_name" gorm:"column:user_name;type:varchar(100);not null"`
	UserEmail    string    `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	UserPassword string    `json:"-" gorm:"column:password;type:varchar(255);not null"`
	UserPosition string    `json:"position" gorm:"column:position;type:varchar(50);not null"`
	UserBranchID uuid.UUID `json:"branch_id" gorm:"column:branch_id;type:uuid;not null;index"`
	UserIsActive bool      `json:"is_active" gorm:"column:is_active;not null;default:true"`
	UserCreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UserUpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}
