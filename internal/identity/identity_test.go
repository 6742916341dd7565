package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"starrecord/internal/identity"
)

func TestResolveSlotIdentityIdempotent(t *testing.T) {
	ctx := context.Background()
	r := identity.NewResolver(identity.NewMemoryStore())

	first, err := r.ResolveSlotIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := r.ResolveSlotIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same name resolved to ids %d and %d", first.ID, second.ID)
	}
}

func TestResolveSlotIdentityConcurrentFirstSight(t *testing.T) {
	ctx := context.Background()
	r := identity.NewResolver(identity.NewMemoryStore())

	const workers = 16
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident, err := r.ResolveSlotIdentity(ctx, "NewPlayer")
			if err != nil {
				t.Errorf("resolve failed: %v", err)
				return
			}
			ids[i] = ident.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent resolves produced ids %v", ids)
		}
	}
}

func TestResolveSlotIdentityThroughAlias(t *testing.T) {
	ctx := context.Background()
	r := identity.NewResolver(identity.NewMemoryStore())

	main, err := r.ResolveSlotIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := r.RegisterAlias(ctx, main, "AliceSmurf"); err != nil {
		t.Fatalf("RegisterAlias failed: %v", err)
	}

	got, err := r.ResolveSlotIdentity(ctx, "AliceSmurf")
	if err != nil {
		t.Fatalf("resolve via alias failed: %v", err)
	}
	if got.ID != main.ID {
		t.Errorf("alias resolved to id %d, want %d", got.ID, main.ID)
	}
	if got.Name != "Alice" {
		t.Errorf("alias resolved to name %q, want canonical %q", got.Name, "Alice")
	}
}

func TestRegisterAliasIdempotent(t *testing.T) {
	ctx := context.Background()
	r := identity.NewResolver(identity.NewMemoryStore())

	main, err := r.ResolveSlotIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if err := r.RegisterAlias(ctx, main, "AliceSmurf"); err != nil {
		t.Fatalf("first RegisterAlias failed: %v", err)
	}
	if err := r.RegisterAlias(ctx, main, "AliceSmurf"); err != nil {
		t.Errorf("re-registering the same alias failed: %v", err)
	}
}

func TestRegisterAliasConflict(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()
	r := identity.NewResolver(store)

	alice, err := r.ResolveSlotIdentity(ctx, "Alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	bob, err := r.ResolveSlotIdentity(ctx, "Bob")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	err = r.RegisterAlias(ctx, alice, "Bob")
	var conflict *identity.AliasConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want AliasConflictError", err)
	}
	if conflict.ExistingID != bob.ID {
		t.Errorf("conflict.ExistingID = %d, want %d", conflict.ExistingID, bob.ID)
	}

	// The failed registration must not have touched the store.
	got, err := r.ResolveSlotIdentity(ctx, "Bob")
	if err != nil {
		t.Fatalf("resolve after conflict failed: %v", err)
	}
	if got.ID != bob.ID {
		t.Errorf("Bob resolved to id %d after conflict, want %d", got.ID, bob.ID)
	}
	aliases, err := store.ListAliases(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	if len(aliases) != 0 {
		t.Errorf("aliases = %v, want none", aliases)
	}
}

func TestInferSelf(t *testing.T) {
	a := &identity.Identity{ID: 1, Name: "Alice"}
	b := &identity.Identity{ID: 2, Name: "Bob"}

	tests := []struct {
		name   string
		counts []identity.FrequencyCount
		want   *identity.Identity
	}{
		{"empty", nil, nil},
		{"clear majority", []identity.FrequencyCount{{a, 6}, {b, 5}}, a},
		{"tie", []identity.FrequencyCount{{a, 5}, {b, 5}}, nil},
		{"single", []identity.FrequencyCount{{b, 1}}, b},
		{"zero counts only", []identity.FrequencyCount{{a, 0}, {b, 0}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identity.InferSelf(tt.counts)
			if got != tt.want {
				t.Errorf("InferSelf = %v, want %v", got, tt.want)
			}
		})
	}
}
