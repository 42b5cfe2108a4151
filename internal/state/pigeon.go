package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/domain"
)

// PigeonAPI is the pigeon service the store calls.
type PigeonAPI interface {
	Create(ctx context.Context, in domain.PigeonInput) (domain.Pigeon, error)
	List(ctx context.Context) ([]domain.Pigeon, error)
	ListByLoft(ctx context.Context, loftID string) ([]domain.Pigeon, error)
	Get(ctx context.Context, id string) (domain.Pigeon, error)
	Update(ctx context.Context, id string, updates domain.PigeonUpdate) (domain.Pigeon, error)
	Delete(ctx context.Context, id string) (domain.MessageResponse, error)
	UploadImage(ctx context.Context, file api.File) (domain.UploadResponse, error)
}

// PigeonSnapshot is a copy of the pigeon store state.
type PigeonSnapshot = CollectionSnapshot[domain.Pigeon]

// PigeonStore caches pigeons, either all of them or one loft's.
type PigeonStore struct {
	api PigeonAPI
	c   *collection[domain.Pigeon]

	scopeMu sync.Mutex
	loftID  string // scope of the last list fetch, empty for all pigeons
}

// NewPigeonStore builds a PigeonStore. logger may be nil.
func NewPigeonStore(api PigeonAPI, logger *zap.Logger) *PigeonStore {
	return &PigeonStore{api: api, c: newCollection[domain.Pigeon]("pigeons", logger)}
}

// FetchAll replaces the cache with every pigeon of the user.
func (s *PigeonStore) FetchAll(ctx context.Context) {
	_ = s.fetchList(ctx, "")
}

// FetchByLoft replaces the cache with the pigeons of one loft.
func (s *PigeonStore) FetchByLoft(ctx context.Context, loftID string) {
	_ = s.fetchList(ctx, loftID)
}

// Scope returns the loft the cached list was last fetched for, or "" when it
// holds every pigeon.
func (s *PigeonStore) Scope() string {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()
	return s.loftID
}

// Refresh repeats the last list fetch (all or by loft) and reports its failure.
func (s *PigeonStore) Refresh(ctx context.Context) error {
	return s.fetchList(ctx, s.Scope())
}

func (s *PigeonStore) fetchList(ctx context.Context, loftID string) error {
	s.scopeMu.Lock()
	s.loftID = loftID
	s.scopeMu.Unlock()

	s.c.begin()
	var (
		pigeons []domain.Pigeon
		err     error
		action  = "fetch_all"
	)
	if loftID == "" {
		pigeons, err = s.api.List(ctx)
	} else {
		action = "fetch_by_loft"
		pigeons, err = s.api.ListByLoft(ctx, loftID)
	}
	if err != nil {
		return s.c.fail(ctx, action, err, "failed to load pigeons")
	}
	return s.c.succeed(ctx, func() { s.c.replaceAllLocked(pigeons) })
}

// FetchOne loads a pigeon into Current.
func (s *PigeonStore) FetchOne(ctx context.Context, id string) {
	s.c.begin()
	p, err := s.api.Get(ctx, id)
	if err != nil {
		_ = s.c.fail(ctx, "fetch_one", err, "failed to load pigeon")
		return
	}
	_ = s.c.succeed(ctx, func() { s.c.setCurrentLocked(&p) })
}

// Create stores a new pigeon and appends the server's copy to the cache.
func (s *PigeonStore) Create(ctx context.Context, in domain.PigeonInput) (domain.Pigeon, error) {
	s.c.begin()
	p, err := s.api.Create(ctx, in)
	if err != nil {
		return domain.Pigeon{}, s.c.fail(ctx, "create", err, "failed to create pigeon")
	}
	if err := s.c.succeed(ctx, func() { s.c.appendLocked(p) }); err != nil {
		return domain.Pigeon{}, err
	}
	return p, nil
}

// Update applies updates and replaces the cached pigeon with the server's copy.
func (s *PigeonStore) Update(ctx context.Context, id string, updates domain.PigeonUpdate) (domain.Pigeon, error) {
	s.c.begin()
	p, err := s.api.Update(ctx, id, updates)
	if err != nil {
		return domain.Pigeon{}, s.c.fail(ctx, "update", err, "failed to update pigeon")
	}
	if err := s.c.succeed(ctx, func() { s.c.replaceLocked(id, p) }); err != nil {
		return domain.Pigeon{}, err
	}
	return p, nil
}

// Delete removes a pigeon and drops it from the cache once the server confirms.
func (s *PigeonStore) Delete(ctx context.Context, id string) error {
	s.c.begin()
	if _, err := s.api.Delete(ctx, id); err != nil {
		return s.c.fail(ctx, "delete", err, "failed to delete pigeon")
	}
	return s.c.succeed(ctx, func() { s.c.removeLocked(id) })
}

// UploadImage stores a photo and returns its URL. The cache is not touched;
// callers attach the URL to a later Create or Update.
func (s *PigeonStore) UploadImage(ctx context.Context, file api.File) (string, error) {
	s.c.begin()
	resp, err := s.api.UploadImage(ctx, file)
	if err != nil {
		return "", s.c.fail(ctx, "upload_image", err, "failed to upload image")
	}
	if err := s.c.succeed(ctx, func() {}); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// SetCurrent selects a pigeon locally; nil clears the selection.
func (s *PigeonStore) SetCurrent(p *domain.Pigeon) {
	s.c.setCurrent(p)
}

// ClearError resets the error field.
func (s *PigeonStore) ClearError() {
	s.c.clearError()
}

// Reset drops all cached pigeons, used when the session ends.
func (s *PigeonStore) Reset() {
	s.scopeMu.Lock()
	s.loftID = ""
	s.scopeMu.Unlock()
	s.c.reset()
}

// Snapshot returns a copy of the current state.
func (s *PigeonStore) Snapshot() PigeonSnapshot {
	return s.c.snapshot()
}
