package blobmock

import (
	"context"
	"io"
	"time"

	helperOSS "kplt_backend/internals/helpers/oss"
)

// Store is a function-backed mock that satisfies helperOSS.ObjectStore.
// Only methods you need are included; add more as tests require.
type Store struct {
	PutFn     func(ctx context.Context, key string, r io.Reader, contentType string) error
	DeleteFn  func(ctx context.Context, key string) error
	ExistsFn  func(ctx context.Context, key string) (bool, error)
	SignURLFn func(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error)
	ListFn    func(ctx context.Context, prefix string) ([]helperOSS.ObjectInfo, error)
}

func (m *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, key, r, contentType)
	}
	return nil
}

func (m *Store) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

func (m *Store) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, key)
	}
	return true, nil
}

func (m *Store) SignURL(ctx context.Context, key string, expiry time.Duration, downloadName string) (string, error) {
	if m.SignURLFn != nil {
		return m.SignURLFn(ctx, key, expiry, downloadName)
	}
	return "https://signed.example/" + key, nil
}

func (m *Store) List(ctx context.Context, prefix string) ([]helperOSS.ObjectInfo, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, prefix)
	}
	return nil, nil
}

// Recorder keeps per-key object state so tests can assert the
// upload → rollback / replace lifecycle without a real bucket.
type Recorder struct {
	Store
	Puts    []string
	Deletes []string
	Objects map[string]bool
}

func NewRecorder() *Recorder {
	rec := &Recorder{Objects: map[string]bool{}}
	rec.PutFn = func(_ context.Context, key string, r io.Reader, _ string) error {
		_, _ = io.Copy(io.Discard, r)
		rec.Puts = append(rec.Puts, key)
		rec.Objects[key] = true
		return nil
	}
	rec.DeleteFn = func(_ context.Context, key string) error {
		rec.Deletes = append(rec.Deletes, key)
		delete(rec.Objects, key)
		return nil
	}
	rec.ExistsFn = func(_ context.Context, key string) (bool, error) {
		return rec.Objects[key], nil
	}
	return rec
}
