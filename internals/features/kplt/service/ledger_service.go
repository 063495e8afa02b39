package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/kplt/model"
)

/* =======================================================================
   Approval Ledger — tanda tangan BM/RM lalu keputusan akhir GM.

   Aturan:
   - satu tanda tangan per role per KPLT (repeat = error, bukan overwrite);
   - keputusan GM hanya saat status Waiting for Forum dan kedua tanda
     tangan sudah ada;
   - OK/NOK terminal.
======================================================================= */

var (
	ErrKpltNotFound       = errors.New("kplt tidak ditemukan")
	ErrKpltTerminal       = errors.New("kplt sudah OK/NOK dan tidak bisa diubah")
	ErrDuplicateSignOff   = errors.New("role ini sudah menandatangani kplt tersebut")
	ErrSignOffRole        = errors.New("role ini tidak ikut menandatangani")
	ErrNotWaitingForForum = errors.New("kplt belum berstatus Waiting for Forum")
	ErrSignOffsIncomplete = errors.New("tanda tangan BM/RM belum lengkap")
	ErrInvalidDecision    = errors.New("decision harus OK atau NOK")
)

// LedgerRepo: akses data ledger. GORM impl di gorm_repo.go,
// mock function-field di internals/testutil/ledgermock.
type LedgerRepo interface {
	GetKplt(ctx context.Context, kpltID uuid.UUID) (*model.KpltModel, error)
	GetSignOff(ctx context.Context, kpltID uuid.UUID, role string) (*model.KpltSignOffModel, error)
	CreateSignOff(ctx context.Context, row *model.KpltSignOffModel) error
	CountSignOffs(ctx context.Context, kpltID uuid.UUID) (int64, error)
	UpdateKpltStatus(ctx context.Context, kpltID uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error
}

type LedgerService struct {
	Repo LedgerRepo
}

func NewLedgerService(repo LedgerRepo) *LedgerService {
	return &LedgerService{Repo: repo}
}

// signOffRoles: role yang ikut menandatangani sebelum forum.
var signOffRoles = map[constants.Role]bool{
	constants.RoleBranchManager:   true,
	constants.RoleRegionalManager: true,
}

// RecordSignOff mencatat tanda tangan satu role. Idempoten per role:
// pengulangan oleh role yang sama adalah error, bukan overwrite diam-diam.
func (s *LedgerService) RecordSignOff(ctx context.Context, kpltID uuid.UUID, role constants.Role, decision string, approverID uuid.UUID) (*model.KpltSignOffModel, error) {
	if !signOffRoles[role] {
		return nil, ErrSignOffRole
	}
	if decision != model.KpltStatusOK && decision != model.KpltStatusNOK {
		return nil, ErrInvalidDecision
	}

	kplt, err := s.Repo.GetKplt(ctx, kpltID)
	if err != nil {
		return nil, err
	}
	if kplt == nil {
		return nil, ErrKpltNotFound
	}
	if model.KpltStatusTerminal(kplt.KpltStatus) {
		return nil, ErrKpltTerminal
	}

	existing, err := s.Repo.GetSignOff(ctx, kpltID, string(role))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateSignOff
	}

	row := &model.KpltSignOffModel{
		SignOffKpltID:     kpltID,
		SignOffRole:       string(role),
		SignOffDecision:   decision,
		SignOffApproverID: approverID,
	}
	if err := s.Repo.CreateSignOff(ctx, row); err != nil {
		return nil, err
	}

	// Kedua role sudah teken → geser ke Waiting for Forum.
	n, err := s.Repo.CountSignOffs(ctx, kpltID)
	if err != nil {
		// Tanda tangan sudah tercatat; transisi status disusul oleh
		// Finalize yang menghitung ulang sendiri.
		log.Printf("[LEDGER] hitung sign-off gagal kplt=%s err=%v", kpltID, err)
		return row, nil
	}
	if n >= int64(len(signOffRoles)) && kplt.KpltStatus != model.KpltStatusWaitingForForum {
		if uerr := s.Repo.UpdateKpltStatus(ctx, kpltID, model.KpltStatusWaitingForForum, nil, nil); uerr != nil {
			return nil, uerr
		}
	}
	return row, nil
}

// Finalize mencatat keputusan akhir General Manager. Terminal.
func (s *LedgerService) Finalize(ctx context.Context, kpltID uuid.UUID, role constants.Role, decision string, approverID uuid.UUID) error {
	if role != constants.RoleGeneralManager {
		return ErrSignOffRole
	}
	if decision != model.KpltStatusOK && decision != model.KpltStatusNOK {
		return ErrInvalidDecision
	}

	kplt, err := s.Repo.GetKplt(ctx, kpltID)
	if err != nil {
		return err
	}
	if kplt == nil {
		return ErrKpltNotFound
	}
	if model.KpltStatusTerminal(kplt.KpltStatus) {
		return ErrKpltTerminal
	}

	// Hitung dulu, baru cek status: kalau kedua tanda tangan sudah ada
	// tapi statusnya tertinggal di In Progress (transisi Waiting for
	// Forum gagal tercatat), keputusan forum tetap jalan.
	n, err := s.Repo.CountSignOffs(ctx, kpltID)
	if err != nil {
		return err
	}
	if n < int64(len(signOffRoles)) {
		if kplt.KpltStatus != model.KpltStatusWaitingForForum {
			return ErrNotWaitingForForum
		}
		return ErrSignOffsIncomplete
	}

	now := time.Now()
	return s.Repo.UpdateKpltStatus(ctx, kpltID, decision, &approverID, &now)
}
