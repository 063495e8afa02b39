package scopemock

import (
	"context"

	"github.com/google/uuid"

	"kplt_backend/internals/features/progress/service"
	"kplt_backend/internals/features/progress/stage"
	"kplt_backend/internals/features/progress/store"
)

// Resolver is a function-backed mock that satisfies service.ScopeResolver.
type Resolver struct {
	ByProgressFn func(ctx context.Context, progressID uuid.UUID) (*service.Scope, error)
	ByRecordFn   func(ctx context.Context, desc *stage.Descriptor, recordID uuid.UUID) (*service.Scope, error)
}

func (m *Resolver) ByProgress(ctx context.Context, progressID uuid.UUID) (*service.Scope, error) {
	if m.ByProgressFn != nil {
		return m.ByProgressFn(ctx, progressID)
	}
	return nil, store.ErrNotFound
}

func (m *Resolver) ByRecord(ctx context.Context, desc *stage.Descriptor, recordID uuid.UUID) (*service.Scope, error) {
	if m.ByRecordFn != nil {
		return m.ByRecordFn(ctx, desc, recordID)
	}
	return nil, store.ErrNotFound
}

// Fixed returns a resolver that always yields the given scope.
func Fixed(s *service.Scope) *Resolver {
	return &Resolver{
		ByProgressFn: func(context.Context, uuid.UUID) (*service.Scope, error) { return s, nil },
		ByRecordFn: func(context.Context, *stage.Descriptor, uuid.UUID) (*service.Scope, error) {
			return s, nil
		},
	}
}
