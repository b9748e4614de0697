package session

import (
	"testing"
	"time"
)

func TestStoreReturnsSameController(t *testing.T) {
	created := 0
	store := NewStore(StoreOptions{
		TTL: time.Hour,
		NewController: func(int64) *Controller {
			created++
			return New(Options{})
		},
	})

	a := store.Get(1)
	if store.Get(1) != a {
		t.Fatal("Get returned a different controller for the same owner")
	}
	if store.Get(2) == a {
		t.Fatal("owners share a controller")
	}
	if created != 2 || store.Len() != 2 {
		t.Fatalf("created = %d, len = %d", created, store.Len())
	}

	seen := map[int64]bool{}
	store.Each(func(owner int64, _ *Controller) { seen[owner] = true })
	if !seen[1] || !seen[2] {
		t.Fatalf("Each visited %v", seen)
	}

	store.Delete(1)
	if _, ok := store.Peek(1); ok {
		t.Fatal("Peek found a deleted owner")
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store := NewStore(StoreOptions{TTL: 20 * time.Millisecond})
	first := store.Get(7)

	time.Sleep(50 * time.Millisecond)
	if _, ok := store.Peek(7); ok {
		t.Fatal("idle session not expired")
	}
	if store.Get(7) == first {
		t.Fatal("expired controller was reused")
	}
}
