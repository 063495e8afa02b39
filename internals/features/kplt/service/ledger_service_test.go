package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"kplt_backend/internals/constants"
	"kplt_backend/internals/features/kplt/model"
	"kplt_backend/internals/features/kplt/service"
	"kplt_backend/internals/testutil/ledgermock"
)

func kpltInProgress(id uuid.UUID) *model.KpltModel {
	return &model.KpltModel{KpltID: id, KpltStatus: model.KpltStatusInProgress}
}

func TestRecordSignOff_HappyPath(t *testing.T) {
	ctx := context.Background()
	kpltID := uuid.New()
	approver := uuid.New()

	var created *model.KpltSignOffModel
	repo := &ledgermock.Repo{
		GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
			return kpltInProgress(kpltID), nil
		},
		CreateSignOffFn: func(_ context.Context, row *model.KpltSignOffModel) error {
			created = row
			return nil
		},
		CountSignOffsFn: func(context.Context, uuid.UUID) (int64, error) { return 1, nil },
	}
	svc := service.NewLedgerService(repo)

	row, err := svc.RecordSignOff(ctx, kpltID, constants.RoleBranchManager, model.KpltStatusOK, approver)
	if err != nil {
		t.Fatalf("RecordSignOff: %v", err)
	}
	if row != created {
		t.Error("row hasil harus baris yang disimpan repo")
	}
	if created.SignOffRole != "branch_manager" || created.SignOffDecision != model.KpltStatusOK {
		t.Errorf("row tersimpan salah: %+v", created)
	}
}

func TestRecordSignOff_SecondSignOffMovesToForum(t *testing.T) {
	ctx := context.Background()
	kpltID := uuid.New()

	var movedTo string
	repo := &ledgermock.Repo{
		GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
			return kpltInProgress(kpltID), nil
		},
		CountSignOffsFn: func(context.Context, uuid.UUID) (int64, error) { return 2, nil },
		UpdateKpltStatusFn: func(_ context.Context, _ uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error {
			movedTo = status
			if approverID != nil || approvedAt != nil {
				t.Error("transisi ke forum tidak mencatat approver")
			}
			return nil
		},
	}
	svc := service.NewLedgerService(repo)

	if _, err := svc.RecordSignOff(ctx, kpltID, constants.RoleRegionalManager, model.KpltStatusOK, uuid.New()); err != nil {
		t.Fatalf("RecordSignOff: %v", err)
	}
	if movedTo != model.KpltStatusWaitingForForum {
		t.Errorf("status = %q, want Waiting for Forum", movedTo)
	}
}

func TestRecordSignOff_Rejections(t *testing.T) {
	ctx := context.Background()
	kpltID := uuid.New()

	cases := []struct {
		name     string
		role     constants.Role
		decision string
		repo     *ledgermock.Repo
		want     error
	}{
		{
			"role bukan penandatangan",
			constants.RoleLocationManager, model.KpltStatusOK,
			&ledgermock.Repo{},
			service.ErrSignOffRole,
		},
		{
			"decision tidak valid",
			constants.RoleBranchManager, "Mungkin",
			&ledgermock.Repo{},
			service.ErrInvalidDecision,
		},
		{
			"kplt tidak ada",
			constants.RoleBranchManager, model.KpltStatusOK,
			&ledgermock.Repo{},
			service.ErrKpltNotFound,
		},
		{
			"kplt sudah terminal",
			constants.RoleBranchManager, model.KpltStatusOK,
			&ledgermock.Repo{
				GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
					return &model.KpltModel{KpltID: kpltID, KpltStatus: model.KpltStatusOK}, nil
				},
			},
			service.ErrKpltTerminal,
		},
		{
			"role sudah teken",
			constants.RoleBranchManager, model.KpltStatusOK,
			&ledgermock.Repo{
				GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
					return kpltInProgress(kpltID), nil
				},
				GetSignOffFn: func(context.Context, uuid.UUID, string) (*model.KpltSignOffModel, error) {
					return &model.KpltSignOffModel{SignOffKpltID: kpltID}, nil
				},
			},
			service.ErrDuplicateSignOff,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewLedgerService(tc.repo)
			_, err := svc.RecordSignOff(ctx, kpltID, tc.role, tc.decision, uuid.New())
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	kpltID := uuid.New()
	gm := constants.RoleGeneralManager

	waiting := func(context.Context, uuid.UUID) (*model.KpltModel, error) {
		return &model.KpltModel{KpltID: kpltID, KpltStatus: model.KpltStatusWaitingForForum}, nil
	}

	t.Run("sukses", func(t *testing.T) {
		var gotStatus string
		var gotApprover *uuid.UUID
		repo := &ledgermock.Repo{
			GetKpltFn:       waiting,
			CountSignOffsFn: func(context.Context, uuid.UUID) (int64, error) { return 2, nil },
			UpdateKpltStatusFn: func(_ context.Context, _ uuid.UUID, status string, approverID *uuid.UUID, approvedAt *time.Time) error {
				gotStatus = status
				gotApprover = approverID
				if approvedAt == nil {
					t.Error("approved_at harus terisi")
				}
				return nil
			},
		}
		approver := uuid.New()
		if err := service.NewLedgerService(repo).Finalize(ctx, kpltID, gm, model.KpltStatusNOK, approver); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if gotStatus != model.KpltStatusNOK {
			t.Errorf("status = %q, want NOK", gotStatus)
		}
		if gotApprover == nil || *gotApprover != approver {
			t.Errorf("approver = %v, want %s", gotApprover, approver)
		}
	})

	t.Run("bukan GM", func(t *testing.T) {
		err := service.NewLedgerService(&ledgermock.Repo{}).Finalize(ctx, kpltID, constants.RoleBranchManager, model.KpltStatusOK, uuid.New())
		if !errors.Is(err, service.ErrSignOffRole) {
			t.Errorf("err = %v, want ErrSignOffRole", err)
		}
	})

	t.Run("belum Waiting for Forum", func(t *testing.T) {
		repo := &ledgermock.Repo{
			GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
				return kpltInProgress(kpltID), nil
			},
		}
		err := service.NewLedgerService(repo).Finalize(ctx, kpltID, gm, model.KpltStatusOK, uuid.New())
		if !errors.Is(err, service.ErrNotWaitingForForum) {
			t.Errorf("err = %v, want ErrNotWaitingForForum", err)
		}
	})

	t.Run("tanda tangan kurang", func(t *testing.T) {
		repo := &ledgermock.Repo{
			GetKpltFn:       waiting,
			CountSignOffsFn: func(context.Context, uuid.UUID) (int64, error) { return 1, nil },
		}
		err := service.NewLedgerService(repo).Finalize(ctx, kpltID, gm, model.KpltStatusOK, uuid.New())
		if !errors.Is(err, service.ErrSignOffsIncomplete) {
			t.Errorf("err = %v, want ErrSignOffsIncomplete", err)
		}
	})

	t.Run("sudah terminal", func(t *testing.T) {
		repo := &ledgermock.Repo{
			GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
				return &model.KpltModel{KpltID: kpltID, KpltStatus: model.KpltStatusNOK}, nil
			},
		}
		err := service.NewLedgerService(repo).Finalize(ctx, kpltID, gm, model.KpltStatusOK, uuid.New())
		if !errors.Is(err, service.ErrKpltTerminal) {
			t.Errorf("err = %v, want ErrKpltTerminal", err)
		}
	})
}

// Kegagalan hitung setelah tanda tangan kedua tidak boleh menggantung
// workflow: tanda tangannya tetap tercatat, dan Finalize menghitung
// ulang sendiri walau status masih In Progress.
func TestRecordSignOff_CountFailureThenFinalizeRecovers(t *testing.T) {
	ctx := context.Background()
	kpltID := uuid.New()

	statusUpdated := false
	repo := &ledgermock.Repo{
		GetKpltFn: func(context.Context, uuid.UUID) (*model.KpltModel, error) {
			return kpltInProgress(kpltID), nil
		},
		CountSignOffsFn: func(context.Context, uuid.UUID) (int64, error) {
			return 0, errors.New("koneksi putus")
		},
		UpdateKpltStatusFn: func(context.Context, uuid.UUID, string, *uuid.UUID, *time.Time) error {
			statusUpdated = true
			return nil
		},
	}
	svc := service.NewLedgerService(repo)

	row, err := svc.RecordSignOff(ctx, kpltID, constants.RoleRegionalManager, model.KpltStatusOK, uuid.New())
	if err != nil {
		t.Fatalf("RecordSignOff: %v", err)
	}
	if row == nil {
		t.Fatal("tanda tangan harus tetap tercatat walau hitung gagal")
	}
	if statusUpdated {
		t.Error("status tidak boleh bergeser saat hitung gagal")
	}

	// Finalize: count sudah lengkap, status tertinggal di In Progress.
	var finalStatus string
	repo.CountSignOffsFn = func(context.Context, uuid.UUID) (int64, error) { return 2, nil }
	repo.UpdateKpltStatusFn = func(_ context.Context, _ uuid.UUID, status string, _ *uuid.UUID, _ *time.Time) error {
		finalStatus = status
		return nil
	}
	if err := svc.Finalize(ctx, kpltID, constants.RoleGeneralManager, model.KpltStatusOK, uuid.New()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if finalStatus != model.KpltStatusOK {
		t.Errorf("status = %q, want OK", finalStatus)
	}
}
