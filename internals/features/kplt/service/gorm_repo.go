package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kplt_backend/internals/features/kplt/model"
)

type GormLedgerRepo struct {
	DB *gorm.DB
}

func NewGormLedgerRepo(db *gorm.DB) *GormLedgerRepo {
	return &GormLedgerRepo{DB: db}
}

func (r *GormLedgerRepo) GetKplt(ctx context.Context, kpltID uuid.UUID) (*model.KpltModel, error) {
	var row model.KpltModel
	err := r.DB.WithContext(ctx).First(&row, "kplt_id = ?", kpltID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormLedgerRepo) GetSignOff(ctx context.Context, kpltID uuid.UUID, role string) (*model.KpltSignOffModel, error) {
	var row model.KpltSignOffModel
	err := r.DB.WithContext(ctx).
		First(&row, "kplt_id = ? AND role = ?", kpltID, role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GormLedgerRepo) CreateSignOff(ctx context.Context, row *model.KpltSignOffModel) error {
	err := r.DB.WithContext(ctx).Create(row).Error
	if err != nil && isUniqueViolation(err) {
		// balapan dua request role sama: unique index yang menang memutuskan
		return ErrDuplicateSignOff
	}
	return err
}

func (r *GormLedgerRepo) CountSignOffs(ctx context.Context, kpltID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.KpltSignOffModel{}).
		Where("kplt_id = ?", kpltID).
		Count(&n).Error
	return n, err
}

func (r *GormLedgerRepo) UpdateKpltStatus(ctx context.Context, kpltID uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if approverID != nil {
		updates["approver_id"] = *approverID
	}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	// Guard terminal di WHERE: dua finalize beradu → satu menang,
	// yang kalah tidak menimpa status terminal.
	res := r.DB.WithContext(ctx).
		Model(&model.KpltModel{}).
		Where("kplt_id = ? AND status NOT IN ?", kpltID, []string{model.KpltStatusOK, model.KpltStatusNOK}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrKpltTerminal
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "23505") || strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
