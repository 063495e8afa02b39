package storemock

import (
	"context"

	"kplt_backend/internals/features/progress/store"
)

// Store is a function-backed mock that satisfies store.StageStore.
type Store struct {
	GetFn     func(ctx context.Context, p store.CallParams) (*store.StageRow, error)
	CreateFn  func(ctx context.Context, p store.CallParams) (*store.StageRow, error)
	UpdateFn  func(ctx context.Context, p store.CallParams) (*store.StageRow, error)
	DeleteFn  func(ctx context.Context, p store.CallParams) error
	ApproveFn func(ctx context.Context, p store.CallParams) (*store.StageRow, error)
}

func (m *Store) Get(ctx context.Context, p store.CallParams) (*store.StageRow, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, p)
	}
	return nil, store.ErrNotFound
}

func (m *Store) Create(ctx context.Context, p store.CallParams) (*store.StageRow, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil, context.Canceled
}

func (m *Store) Update(ctx context.Context, p store.CallParams) (*store.StageRow, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p)
	}
	return nil, context.Canceled
}

func (m *Store) Delete(ctx context.Context, p store.CallParams) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, p)
	}
	return nil
}

func (m *Store) Approve(ctx context.Context, p store.CallParams) (*store.StageRow, error) {
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, p)
	}
	return nil, context.Canceled
}
