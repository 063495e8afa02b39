package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenBlacklist: token yang sudah logout, dicek middleware tiap request.
// Baris kedaluwarsa dibersihkan scheduler (lihat main.go).
type TokenBlacklist struct {
	BlacklistID        uuid.UUID `gorm:"column:blacklist_id;primaryKey;type:uuid;default:gen_random_uuid()"`
	BlacklistToken     string    `gorm:"column:token;type:text;not null;index"`
	BlacklistExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	BlacklistCreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
