package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Ensure contextRegistry implements ContextRegistry
var _ driving.ContextRegistry = (*contextRegistry)(nil)

// contextRegistry holds one session's contexts and the active pointer.
// Reads take mu; switches are serialized by switchMu so that subscribers
// receive views in the order the switches happened.
type contextRegistry struct {
	switchMu sync.Mutex

	mu          sync.RWMutex
	contexts    []domain.Context
	active      int
	subscribers map[int]func(domain.ContextView)
	nextSubID   int
}

// NewContextRegistry creates a registry over contexts, in the given order.
// activeID selects the initial context; an empty or unknown id selects the first.
func NewContextRegistry(contexts []domain.Context, activeID string) (driving.ContextRegistry, error) {
	if err := validateContexts(contexts); err != nil {
		return nil, err
	}
	r := &contextRegistry{
		contexts:    cloneContexts(contexts),
		subscribers: make(map[int]func(domain.ContextView)),
	}
	if idx := indexOfContext(r.contexts, activeID); idx >= 0 {
		r.active = idx
	}
	return r, nil
}

// ListContexts returns a copy of the contexts in presentation order.
func (r *contextRegistry) ListContexts() []domain.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneContexts(r.contexts)
}

// Active returns the active context.
func (r *contextRegistry) Active() domain.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contexts[r.active]
}

// SetActive switches the active context and notifies every subscriber before
// returning. Subscribers must not call SetActive or Replace.
func (r *contextRegistry) SetActive(id string) (domain.ContextView, error) {
	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	r.mu.Lock()
	idx := indexOfContext(r.contexts, id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.ContextView{}, fmt.Errorf("%w: %s", domain.ErrUnknownContext, id)
	}
	r.active = idx
	view := domain.BindContext(r.contexts[idx])
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
	return view, nil
}

// Subscribe registers fn and returns a func that removes it.
func (r *contextRegistry) Subscribe(fn func(domain.ContextView)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}
}

// Replace swaps in fresh contexts, typically with updated balances.
// The active id is kept when still present, otherwise the first context becomes active.
func (r *contextRegistry) Replace(contexts []domain.Context) error {
	if err := validateContexts(contexts); err != nil {
		return err
	}

	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	r.mu.Lock()
	activeID := r.contexts[r.active].ID
	r.contexts = cloneContexts(contexts)
	r.active = 0
	if idx := indexOfContext(r.contexts, activeID); idx >= 0 {
		r.active = idx
	}
	view := domain.BindContext(r.contexts[r.active])
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
	return nil
}

// snapshotSubscribers copies the subscriber set in registration order. Caller holds mu.
func (r *contextRegistry) snapshotSubscribers() []func(domain.ContextView) {
	subs := make([]func(domain.ContextView), 0, len(r.subscribers))
	for id := 0; id < r.nextSubID; id++ {
		if fn, ok := r.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func validateContexts(contexts []domain.Context) error {
	if len(contexts) == 0 {
		return fmt.Errorf("%w: at least one context is required", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(contexts))
	for i := range contexts {
		if err := contexts[i].Validate(); err != nil {
			return err
		}
		if seen[contexts[i].ID] {
			return fmt.Errorf("%w: duplicate context id %s", domain.ErrInvalidInput, contexts[i].ID)
		}
		seen[contexts[i].ID] = true
	}
	return nil
}

func indexOfContext(contexts []domain.Context, id string) int {
	if id == "" {
		return -1
	}
	for i := range contexts {
		if contexts[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneContexts(contexts []domain.Context) []domain.Context {
	return append([]domain.Context(nil), contexts...)
}
