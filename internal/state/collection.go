package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// CollectionSnapshot is a point-in-time copy of a collection store.
type CollectionSnapshot[T domain.Entity] struct {
	Items     []T
	Current   *T
	IsLoading bool
	Error     string
}

// collection holds the cached copy of one server-side collection plus the
// loading/error envelope shared by every action on it.
type collection[T domain.Entity] struct {
	mu      sync.RWMutex
	items   []T
	current *T
	loading bool
	err     string

	name   string
	logger *zap.Logger
}

func newCollection[T domain.Entity](name string, logger *zap.Logger) *collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &collection[T]{name: name, logger: logger}
}

// begin marks an action in flight and clears the previous error.
func (c *collection[T]) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	c.err = ""
}

// succeed clears loading and applies mutate unless the caller has lost
// interest, in which case the result is dropped and the context error returned.
func (c *collection[T]) succeed(ctx context.Context, mutate func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err := ctx.Err(); err != nil {
		c.logger.Debug("dropping result of cancelled action", zap.String("store", c.name))
		return err
	}
	mutate()
	return nil
}

// fail clears loading and records err unless the caller has lost interest.
func (c *collection[T]) fail(ctx context.Context, action string, err error, fallback string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if ctx.Err() != nil {
		return err
	}
	c.err = messageFor(err, fallback)
	c.logger.Warn("store action failed",
		zap.String("store", c.name),
		zap.String("action", action),
		zap.Error(err),
	)
	return &ActionError{Action: action, Message: c.err, Err: err}
}

// The helpers below run with c.mu held.

func (c *collection[T]) replaceAllLocked(items []T) {
	c.items = cloneItems(items)
}

func (c *collection[T]) appendLocked(item T) {
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	c.items = append(next, item)
}

func (c *collection[T]) replaceLocked(id string, item T) {
	next := make([]T, len(c.items))
	for i, existing := range c.items {
		if existing.EntityID() == id {
			next[i] = item
			continue
		}
		next[i] = existing
	}
	c.items = next
	if c.current != nil && (*c.current).EntityID() == id {
		updated := item
		c.current = &updated
	}
}

func (c *collection[T]) removeLocked(id string) {
	next := make([]T, 0, len(c.items))
	for _, existing := range c.items {
		if existing.EntityID() != id {
			next = append(next, existing)
		}
	}
	c.items = next
	if c.current != nil && (*c.current).EntityID() == id {
		c.current = nil
	}
}

func (c *collection[T]) setCurrent(item *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCurrentLocked(item)
}

func (c *collection[T]) setCurrentLocked(item *T) {
	if item == nil {
		c.current = nil
		return
	}
	dup := *item
	c.current = &dup
}

func (c *collection[T]) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
}

func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.current = nil
	c.err = ""
}

func (c *collection[T]) snapshot() CollectionSnapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := CollectionSnapshot[T]{
		Items:     cloneItems(c.items),
		IsLoading: c.loading,
		Error:     c.err,
	}
	if c.current != nil {
		dup := *c.current
		snap.Current = &dup
	}
	return snap
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
