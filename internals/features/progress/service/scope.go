package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/progress/stage"
	"kplt_backend/internals/features/progress/store"
)

/* =======================================================================
   Access Resolver — menelusuri rantai FK
   record tahapan → progress → kplt → ulok → cabang.
   Dipanggil SEBELUM parsing payload, jadi kegagalan otorisasi tidak
   pernah memicu file I/O. Rantai putus di mana pun → NotFound utuh,
   tidak ada resolusi parsial.
======================================================================= */

type Scope struct {
	ProgressID uuid.UUID
	UlokID     uuid.UUID
	KpltID     uuid.UUID
	BranchID   uuid.UUID
	OwnerID    uuid.UUID
	KpltStatus string
}

type ScopeResolver interface {
	ByProgress(ctx context.Context, progressID uuid.UUID) (*Scope, error)
	ByRecord(ctx context.Context, desc *stage.Descriptor, recordID uuid.UUID) (*Scope, error)
}

type GormScopeResolver struct {
	DB *gorm.DB
}

func NewGormScopeResolver(db *gorm.DB) *GormScopeResolver {
	return &GormScopeResolver{DB: db}
}

type scopeRow struct {
	ProgressID uuid.UUID `gorm:"column:progress_id"`
	UlokID     uuid.UUID `gorm:"column:ulok_id"`
	KpltID     uuid.UUID `gorm:"column:kplt_id"`
	BranchID   uuid.UUID `gorm:"column:branch_id"`
	OwnerID    uuid.UUID `gorm:"column:owner_id"`
	KpltStatus string    `gorm:"column:kplt_status"`
}

func (r *GormScopeResolver) ByProgress(ctx context.Context, progressID uuid.UUID) (*Scope, error) {
	var row scopeRow
	err := r.DB.WithContext(ctx).Raw(`
		SELECT p.progress_id, u.ulok_id, k.kplt_id,
		       u.branch_id, u.created_by AS owner_id, k.status AS kplt_status
		FROM kplt_progress p
		JOIN kplt k ON k.kplt_id = p.kplt_id
		JOIN ulok u ON u.ulok_id = k.ulok_id
		WHERE p.progress_id = ?
	`, progressID).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if row.ProgressID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return scopeFromRow(row), nil
}

// ByRecord: resolusi dari id record tahapan (dipakai route /files).
// Nama tabel berasal dari registry descriptor, bukan input user.
func (r *GormScopeResolver) ByRecord(ctx context.Context, desc *stage.Descriptor, recordID uuid.UUID) (*Scope, error) {
	var row scopeRow
	q := fmt.Sprintf(`
		SELECT p.progress_id, u.ulok_id, k.kplt_id,
		       u.branch_id, u.created_by AS owner_id, k.status AS kplt_status
		FROM %s t
		JOIN kplt_progress p ON p.progress_id = t.progress_id
		JOIN kplt k ON k.kplt_id = p.kplt_id
		JOIN ulok u ON u.ulok_id = k.ulok_id
		WHERE t.id = ?
	`, desc.Table)
	err := r.DB.WithContext(ctx).Raw(q, recordID).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("resolve scope by record: %w", err)
	}
	if row.ProgressID == uuid.Nil {
		return nil, store.ErrNotFound
	}
	return scopeFromRow(row), nil
}

func scopeFromRow(row scopeRow) *Scope {
	return &Scope{
		ProgressID: row.ProgressID,
		UlokID:     row.UlokID,
		KpltID:     row.KpltID,
		BranchID:   row.BranchID,
		OwnerID:    row.OwnerID,
		KpltStatus: row.KpltStatus,
	}
}

/* =======================================================================
   Guard scope cabang/pemilik
======================================================================= */

// AuthorizeBranch menolak akses lintas cabang kecuali role-nya exempt
// (Regional/General Manager). Existence check sudah lewat (scope != nil).
func AuthorizeBranch(sc *Scope, role constants.Role, branchID uuid.UUID) error {
	if constants.IsBranchExempt(role) {
		return nil
	}
	if sc.BranchID != branchID {
		return fiber.NewError(fiber.StatusForbidden, constants.ErrBranchForbidden)
	}
	return nil
}

// AuthorizeOwner: pembatasan kepemilikan untuk Location Specialist
// (berlaku pada lampiran Ulok, independen dari cek cabang).
func AuthorizeOwner(sc *Scope, role constants.Role, userID uuid.UUID) error {
	if role != constants.RoleLocationSpecialist {
		return nil
	}
	if sc.OwnerID != userID {
		return fiber.NewError(fiber.StatusForbidden, constants.ErrOwnerForbidden)
	}
	return nil
}

// IsNotFound membantu controller membedakan rantai putus vs error lain.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
