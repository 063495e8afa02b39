package dto

import (
	"time"

	"github.com/google/uuid"

	"kplt_backend/internals/features/users/model"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Email    string    `json:"email"`
	Position string    `json:"position"`
	BranchID uuid.UUID `json:"branch_id"`
}

func ToUserResponse(u *model.UserModel) UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		UserName: u.UserName,
		Email:    u.UserEmail,
		Position: u.UserPosition,
		BranchID: u.UserBranchID,
	}
}
