package dto

import (
	"time"

	"github.com/google/uuid"

	"kplt_backend/internals/features/kplt/model"
)

type SignOffRequest struct {
	Decision string `json:"decision" validate:"required,oneof=OK NOK"`
}

type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=OK NOK"`
}

type KpltResponse struct {
	KpltID     uuid.UUID  `json:"kplt_id"`
	UlokID     uuid.UUID  `json:"ulok_id"`
	Status     string     `json:"status"`
	ApproverID *uuid.UUID `json:"approver_id,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func ToKpltResponse(m *model.KpltModel) KpltResponse {
	return KpltResponse{
		KpltID:     m.KpltID,
		UlokID:     m.KpltUlokID,
		Status:     m.KpltStatus,
		ApproverID: m.KpltApproverID,
		ApprovedAt: m.KpltApprovedAt,
		CreatedAt:  m.KpltCreatedAt,
		UpdatedAt:  m.KpltUpdatedAt,
	}
}

type SignOffResponse struct {
	SignOffID  uuid.UUID `json:"sign_off_id"`
	KpltID     uuid.UUID `json:"kplt_id"`
	Role       string    `json:"role"`
	Decision   string    `json:"decision"`
	ApproverID uuid.UUID `json:"approver_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToSignOffResponse(m *model.KpltSignOffModel) SignOffResponse {
	return SignOffResponse{
		SignOffID:  m.SignOffID,
		KpltID:     m.SignOffKpltID,
		Role:       m.SignOffRole,
		Decision:   m.SignOffDecision,
		ApproverID: m.SignOffApproverID,
		CreatedAt:  m.SignOffCreatedAt,
	}
}
