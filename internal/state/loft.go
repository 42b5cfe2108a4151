package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// LoftAPI is the loft service the store calls.
type LoftAPI interface {
	Create(ctx context.Context, in domain.LoftInput) (domain.Loft, error)
	List(ctx context.Context) ([]domain.Loft, error)
	Get(ctx context.Context, id string) (domain.Loft, error)
	Update(ctx context.Context, id string, updates domain.LoftUpdate) (domain.Loft, error)
	Delete(ctx context.Context, id string) (domain.MessageResponse, error)
}

// LoftSnapshot is a copy of the loft store state.
type LoftSnapshot = CollectionSnapshot[domain.Loft]

// LoftStore caches the signed-in user's lofts.
type LoftStore struct {
	api LoftAPI
	c   *collection[domain.Loft]
}

// NewLoftStore builds a LoftStore. logger may be nil.
func NewLoftStore(api LoftAPI, logger *zap.Logger) *LoftStore {
	return &LoftStore{api: api, c: newCollection[domain.Loft]("lofts", logger)}
}

// FetchAll replaces the cached lofts with the server's list. Failures are
// recorded in the snapshot only.
func (s *LoftStore) FetchAll(ctx context.Context) {
	_ = s.fetchAll(ctx)
}

// Refresh re-fetches the lofts and reports the failure FetchAll absorbs.
func (s *LoftStore) Refresh(ctx context.Context) error {
	return s.fetchAll(ctx)
}

func (s *LoftStore) fetchAll(ctx context.Context) error {
	s.c.begin()
	lofts, err := s.api.List(ctx)
	if err != nil {
		return s.c.fail(ctx, "fetch_all", err, "failed to load lofts")
	}
	return s.c.succeed(ctx, func() { s.c.replaceAllLocked(lofts) })
}

// FetchOne loads a loft into Current. Failures are recorded in the snapshot only.
func (s *LoftStore) FetchOne(ctx context.Context, id string) {
	s.c.begin()
	loft, err := s.api.Get(ctx, id)
	if err != nil {
		_ = s.c.fail(ctx, "fetch_one", err, "failed to load loft")
		return
	}
	_ = s.c.succeed(ctx, func() { s.c.setCurrentLocked(&loft) })
}

// Create stores a new loft and appends the server's copy to the cache.
func (s *LoftStore) Create(ctx context.Context, in domain.LoftInput) (domain.Loft, error) {
	s.c.begin()
	loft, err := s.api.Create(ctx, in)
	if err != nil {
		return domain.Loft{}, s.c.fail(ctx, "create", err, "failed to create loft")
	}
	if err := s.c.succeed(ctx, func() { s.c.appendLocked(loft) }); err != nil {
		return domain.Loft{}, err
	}
	return loft, nil
}

// Update applies updates and replaces the cached loft with the server's copy.
func (s *LoftStore) Update(ctx context.Context, id string, updates domain.LoftUpdate) (domain.Loft, error) {
	s.c.begin()
	loft, err := s.api.Update(ctx, id, updates)
	if err != nil {
		return domain.Loft{}, s.c.fail(ctx, "update", err, "failed to update loft")
	}
	if err := s.c.succeed(ctx, func() { s.c.replaceLocked(id, loft) }); err != nil {
		return domain.Loft{}, err
	}
	return loft, nil
}

// Delete removes a loft and drops it from the cache once the server confirms.
func (s *LoftStore) Delete(ctx context.Context, id string) error {
	s.c.begin()
	if _, err := s.api.Delete(ctx, id); err != nil {
		return s.c.fail(ctx, "delete", err, "failed to delete loft")
	}
	return s.c.succeed(ctx, func() { s.c.removeLocked(id) })
}

// SetCurrent selects a loft locally; nil clears the selection.
func (s *LoftStore) SetCurrent(loft *domain.Loft) {
	s.c.setCurrent(loft)
}

// ClearError resets the error field.
func (s *LoftStore) ClearError() {
	s.c.clearError()
}

// Reset drops all cached lofts, used when the session ends.
func (s *LoftStore) Reset() {
	s.c.reset()
}

// Snapshot returns a copy of the current state.
func (s *LoftStore) Snapshot() LoftSnapshot {
	return s.c.snapshot()
}
