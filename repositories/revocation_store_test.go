package repositories

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh store reports token as revoked")
	}

	if err := store.Revoke(ctx, "token-a"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("revoked token not reported as revoked")
	}

	// Another token is unaffected.
	revoked, _ = store.IsRevoked(ctx, "token-b")
	if revoked {
		t.Fatal("unrelated token reported as revoked")
	}
}

func TestMemoryRevocationStoreIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRevocationStore(50 * time.Millisecond)

	if err := store.Revoke(ctx, "token-a"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	// A second revocation must not extend the retention window.
	if err := store.Revoke(ctx, "token-a"); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("retention window was extended by a duplicate revocation")
	}
}

func TestMemoryRevocationStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryRevocationStore(20 * time.Millisecond)

	if err := store.Revoke(ctx, "token-a"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, _ := store.IsRevoked(ctx, "token-a")
	if !revoked {
		t.Fatal("token not revoked inside the retention window")
	}

	time.Sleep(30 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "token-a")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("token still revoked after the retention window")
	}
}

func TestMemoryRevocationStoreSweep(t *testing.T) {
	store := newMemoryRevocationStore(10 * time.Millisecond)
	ctx := context.Background()

	for _, token := range []string{"a", "b", "c"} {
		if err := store.Revoke(ctx, token); err != nil {
			t.Fatalf("Revoke: %v", err)
		}
	}

	time.Sleep(20 * time.Millisecond)
	store.sweep()

	store.mu.RLock()
	remaining := len(store.revokedAt)
	store.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("sweep left %d expired records", remaining)
	}
}
