// Package identity maps raw in-game names onto persistent player
// identities, merging registered aliases and inferring which identity
// is the local user.
package identity

import (
	"context"
	"fmt"
	"sync"
)

// Identity is a persistent player entity. Name is the canonical name;
// aliases resolve to the same identity through the store's lookup.
type Identity struct {
	ID     int64
	Name   string
	IsSelf bool
}

// Store is the long-lived identity store contract. LookupByName must
// search canonical names and aliases alike and return (nil, nil) for an
// unseen name. Implementations live in the persistence layer.
type Store interface {
	LookupByName(ctx context.Context, name string) (*Identity, error)
	CreateIdentity(ctx context.Context, name string) (*Identity, error)
	ListAliases(ctx context.Context, id int64) ([]string, error)
	RegisterAlias(ctx context.Context, id int64, altName string) error
}

// AliasConflictError reports an alias registration that collided with a
// name already bound to a different identity. No state is mutated when
// it is returned.
type AliasConflictError struct {
	Name       string
	ExistingID int64
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("name %q is already bound to identity %d", e.Name, e.ExistingID)
}

// Resolver performs name-to-identity resolution on top of a Store.
// Creation is serialized per name, so concurrent decodes seeing the
// same new name produce exactly one identity.
type Resolver struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver wraps an identity store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, locks: make(map[string]*sync.Mutex)}
}

// ResolveSlotIdentity looks a raw name up as a canonical name or alias
// and creates a fresh identity when the name is unseen. Resolution is
// deterministic and idempotent for a given name.
func (r *Resolver) ResolveSlotIdentity(ctx context.Context, rawName string) (*Identity, error) {
	lock := r.nameLock(rawName)
	lock.Lock()
	defer lock.Unlock()

	ident, err := r.store.LookupByName(ctx, rawName)
	if err != nil {
		return nil, fmt.Errorf("look up %q: %w", rawName, err)
	}
	if ident != nil {
		return ident, nil
	}

	ident, err = r.store.CreateIdentity(ctx, rawName)
	if err != nil {
		return nil, fmt.Errorf("create identity %q: %w", rawName, err)
	}
	return ident, nil
}

// RegisterAlias binds altName to ident. Registering a name already
// bound to the same identity is a no-op; a name bound to a different
// identity fails with AliasConflictError.
func (r *Resolver) RegisterAlias(ctx context.Context, ident *Identity, altName string) error {
	lock := r.nameLock(altName)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.store.LookupByName(ctx, altName)
	if err != nil {
		return fmt.Errorf("look up %q: %w", altName, err)
	}
	if existing != nil {
		if existing.ID == ident.ID {
			return nil
		}
		return &AliasConflictError{Name: altName, ExistingID: existing.ID}
	}

	if err := r.store.RegisterAlias(ctx, ident.ID, altName); err != nil {
		return fmt.Errorf("register alias %q: %w", altName, err)
	}
	return nil
}

func (r *Resolver) nameLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[name] = lock
	}
	return lock
}

// FrequencyCount pairs an identity with its occurrence count across
// processed replays. The caller accumulates counts; inference itself is
// a pure function.
type FrequencyCount struct {
	Identity *Identity
	Count    int
}

// InferSelf picks the identity with the strictly highest occurrence
// count. When the maximum is shared, inference is ambiguous and nil is
// returned; the caller must fall back to manual registration.
func InferSelf(counts []FrequencyCount) *Identity {
	var best *Identity
	bestCount := 0
	tied := false
	for _, c := range counts {
		switch {
		case c.Count > bestCount:
			best = c.Identity
			bestCount = c.Count
			tied = false
		case c.Count == bestCount && bestCount > 0:
			tied = true
		}
	}
	if best == nil || tied {
		return nil
	}
	return best
}
