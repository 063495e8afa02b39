package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kplt_backend/internals/features/progress/stage"
)

/* =======================================================================
   Implementasi GORM/Postgres.
   fn_<module>_<get|create|update|delete|approval> mengembalikan satu
   jsonb (row hasil) atau RAISE EXCEPTION dengan prefix pesan yang dikenal
   FromStoreError. Mutual exclusion optimistik: unique index menopang
   DUPLICATE_RECORD, UPDATE ... WHERE final_status='Belum' menopang
   ALREADY_FINALIZED — tanpa lock aplikasi.
======================================================================= */

type GormStageStore struct {
	DB *gorm.DB
}

func NewGormStageStore(db *gorm.DB) *GormStageStore {
	return &GormStageStore{DB: db}
}

func (s *GormStageStore) Get(ctx context.Context, p CallParams) (*StageRow, error) {
	return s.call(ctx, "get", p)
}

func (s *GormStageStore) Create(ctx context.Context, p CallParams) (*StageRow, error) {
	return s.call(ctx, "create", p)
}

func (s *GormStageStore) Update(ctx context.Context, p CallParams) (*StageRow, error) {
	return s.call(ctx, "update", p)
}

func (s *GormStageStore) Delete(ctx context.Context, p CallParams) error {
	_, err := s.call(ctx, "delete", p)
	return err
}

func (s *GormStageStore) Approve(ctx context.Context, p CallParams) (*StageRow, error) {
	return s.call(ctx, "approval", p)
}

func (s *GormStageStore) call(ctx context.Context, op string, p CallParams) (*StageRow, error) {
	payload := p.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	// Nama function berasal dari registry descriptor, bukan input user.
	q := fmt.Sprintf(
		`SELECT fn_%s_%s(?::uuid, ?::uuid, ?::uuid, ?::jsonb) AS row_data`,
		p.Stage.Proc, op,
	)

	var result struct {
		RowData datatypes.JSON `gorm:"column:row_data"`
	}
	err = s.DB.WithContext(ctx).
		Raw(q, p.ActorID, p.BranchID, p.ProgressID, datatypes.JSON(raw)).
		Scan(&result).Error
	if err != nil {
		return nil, FromStoreError(err)
	}
	if len(result.RowData) == 0 || string(result.RowData) == "null" {
		// get/delete atas record yang tidak ada
		return nil, ErrNotFound
	}

	return decodeRow(p.Stage, result.RowData)
}

func decodeRow(desc *stage.Descriptor, raw []byte) (*StageRow, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	row := &StageRow{Fields: fields, FinalStatus: stage.StatusDraft}

	if v, ok := fields["id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			row.ID = id
		}
		delete(fields, "id")
	}
	if v, ok := fields["progress_id"].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			row.ProgressID = id
		}
		delete(fields, "progress_id")
	}
	if v, ok := fields["final_status"].(string); ok {
		if st, ok := desc.Labels.ToStatus(v); ok {
			row.FinalStatus = st
		}
		delete(fields, "final_status")
	}
	return row, nil
}
