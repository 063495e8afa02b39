package store

import (
	"context"

	"github.com/google/uuid"

	"kplt_backend/internals/features/progress/stage"
)

/* =======================================================================
   StageStore — satu-satunya jalur mutasi record tahapan.
   Semua operasi lewat stored function bernama yang menerima
   (actor_user_id, branch_id, progress_id, payload) dan memvalidasi ulang
   scope cabang + invariant di sisi DB.
======================================================================= */

// CallParams: parameter seragam semua operasi store.
type CallParams struct {
	Stage      *stage.Descriptor
	ActorID    uuid.UUID
	BranchID   uuid.UUID
	ProgressID uuid.UUID
	// Payload untuk create/update/approval. Field file berisi object key.
	Payload map[string]any
}

// StageRow: record tahapan yang sudah dinormalkan (status kanonik).
type StageRow struct {
	ID          uuid.UUID
	ProgressID  uuid.UUID
	FinalStatus stage.Status
	Fields      map[string]any
}

// FileKey mengembalikan object key tersimpan untuk satu field file ("" bila kosong).
func (r *StageRow) FileKey(field string) string {
	if r == nil {
		return ""
	}
	if v, ok := r.Fields[field].(string); ok {
		return v
	}
	return ""
}

type StageStore interface {
	Get(ctx context.Context, p CallParams) (*StageRow, error)
	Create(ctx context.Context, p CallParams) (*StageRow, error)
	Update(ctx context.Context, p CallParams) (*StageRow, error)
	Delete(ctx context.Context, p CallParams) error
	// Approve = finalisasi: payload berisi final_status label legacy
	// (+ field lain bila dikirim bersamaan).
	Approve(ctx context.Context, p CallParams) (*StageRow, error)
}
