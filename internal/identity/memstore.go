package identity

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process identity store. It backs one-off decodes
// that never touch the database and the package tests. The same
// name-uniqueness rules as the persistent store apply.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byName  map[string]*Identity // canonical name -> identity
	aliases map[string]int64     // alias -> identity id
	byID    map[int64]*Identity
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		byName:  make(map[string]*Identity),
		aliases: make(map[string]int64),
		byID:    make(map[int64]*Identity),
	}
}

// LookupByName implements Store.
func (s *MemoryStore) LookupByName(_ context.Context, name string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident, ok := s.byName[name]; ok {
		copy := *ident
		return &copy, nil
	}
	if id, ok := s.aliases[name]; ok {
		copy := *s.byID[id]
		return &copy, nil
	}
	return nil, nil
}

// CreateIdentity implements Store.
func (s *MemoryStore) CreateIdentity(_ context.Context, name string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("name %q already exists", name)
	}
	if _, ok := s.aliases[name]; ok {
		return nil, fmt.Errorf("name %q already exists as an alias", name)
	}
	ident := &Identity{ID: s.nextID, Name: name}
	s.nextID++
	s.byName[name] = ident
	s.byID[ident.ID] = ident
	copy := *ident
	return &copy, nil
}

// ListAliases implements Store.
func (s *MemoryStore) ListAliases(_ context.Context, id int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for alias, owner := range s.aliases {
		if owner == id {
			out = append(out, alias)
		}
	}
	return out, nil
}

// RegisterAlias implements Store.
func (s *MemoryStore) RegisterAlias(_ context.Context, id int64, altName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("identity %d does not exist", id)
	}
	if _, ok := s.byName[altName]; ok {
		return fmt.Errorf("name %q already exists", altName)
	}
	if _, ok := s.aliases[altName]; ok {
		return fmt.Errorf("name %q already exists as an alias", altName)
	}
	s.aliases[altName] = id
	return nil
}

// MarkSelf flags a canonical name as the local user. Unknown names are
// ignored.
func (s *MemoryStore) MarkSelf(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident, ok := s.byName[name]; ok {
		ident.IsSelf = true
	}
}
