package ledgermock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kplt_backend/internals/features/kplt/model"
)

// Repo is a function-backed mock that satisfies service.LedgerRepo.
type Repo struct {
	GetKpltFn          func(ctx context.Context, kpltID uuid.UUID) (*model.KpltModel, error)
	GetSignOffFn       func(ctx context.Context, kpltID uuid.UUID, role string) (*model.KpltSignOffModel, error)
	CreateSignOffFn    func(ctx context.Context, row *model.KpltSignOffModel) error
	CountSignOffsFn    func(ctx context.Context, kpltID uuid.UUID) (int64, error)
	UpdateKpltStatusFn func(ctx context.Context, kpltID uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error
}

func (m *Repo) GetKplt(ctx context.Context, kpltID uuid.UUID) (*model.KpltModel, error) {
	if m.GetKpltFn != nil {
		return m.GetKpltFn(ctx, kpltID)
	}
	return nil, nil
}

func (m *Repo) GetSignOff(ctx context.Context, kpltID uuid.UUID, role string) (*model.KpltSignOffModel, error) {
	if m.GetSignOffFn != nil {
		return m.GetSignOffFn(ctx, kpltID, role)
	}
	return nil, nil
}

func (m *Repo) CreateSignOff(ctx context.Context, row *model.KpltSignOffModel) error {
	if m.CreateSignOffFn != nil {
		return m.CreateSignOffFn(ctx, row)
	}
	return nil
}

func (m *Repo) CountSignOffs(ctx context.Context, kpltID uuid.UUID) (int64, error) {
	if m.CountSignOffsFn != nil {
		return m.CountSignOffsFn(ctx, kpltID)
	}
	return 0, nil
}

func (m *Repo) UpdateKpltStatus(ctx context.Context, kpltID uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error {
	if m.UpdateKpltStatusFn != nil {
		return m.UpdateKpltStatusFn(ctx, kpltID, status, approverID, approvedAt)
	}
	return nil
}
