package scanhold

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestHoldAndTake(t *testing.T) {
	st, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := st.Hold(ctx, "SESSION_abc_20260314092653")
	if err != nil {
		t.Fatalf("Hold failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	payload, err := st.Take(ctx, token)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if payload != "SESSION_abc_20260314092653" {
		t.Fatalf("unexpected payload: %q", payload)
	}
}

func TestTakeIsOneShot(t *testing.T) {
	st, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := st.Hold(ctx, "payload")
	if err != nil {
		t.Fatalf("Hold failed: %v", err)
	}
	if _, err := st.Take(ctx, token); err != nil {
		t.Fatalf("first Take failed: %v", err)
	}
	if _, err := st.Take(ctx, token); err != ErrNotFound {
		t.Fatalf("second Take = %v, want ErrNotFound", err)
	}
}

func TestTakeUnknownToken(t *testing.T) {
	st, _ := newTestStore(t, time.Minute)
	if _, err := st.Take(context.Background(), "no-such-token"); err != ErrNotFound {
		t.Fatalf("Take = %v, want ErrNotFound", err)
	}
}

func TestHoldExpires(t *testing.T) {
	st, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := st.Hold(ctx, "payload")
	if err != nil {
		t.Fatalf("Hold failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := st.Take(ctx, token); err != ErrNotFound {
		t.Fatalf("Take after expiry = %v, want ErrNotFound", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	st, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := st.Hold(ctx, "p")
		if err != nil {
			t.Fatalf("Hold failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %q", token)
		}
		seen[token] = true
	}
}

func TestDisabledStore(t *testing.T) {
	st := New(nil, time.Minute)
	if st.Enabled() {
		t.Fatal("store with nil client must be disabled")
	}
	if _, err := st.Hold(context.Background(), "p"); err == nil {
		t.Fatal("Hold on a disabled store must fail")
	}
	if _, err := st.Take(context.Background(), "t"); err != ErrNotFound {
		t.Fatalf("Take on a disabled store = %v, want ErrNotFound", err)
	}
}
