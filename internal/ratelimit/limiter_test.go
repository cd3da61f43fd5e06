package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLimiter(rdb, "ratelimit:contact", limit, window), mr
}

func TestCheck_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Check(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("check %d: expected allowed", i)
		}
		if res.Remaining != 3-i-1 {
			t.Fatalf("check %d: expected remaining %d, got %d", i, 3-i-1, res.Remaining)
		}
	}

	res, err := limiter.Check(ctx, "203.0.113.7")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("fourth submission in the window should be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", res.Remaining)
	}
	if res.RetryAfterSeconds() < 1 {
		t.Fatal("expected a positive retry-after")
	}
}

func TestCheck_SeparateIdentifiers(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := limiter.Check(ctx, "198.51.100.1"); !res.Allowed {
		t.Fatal("first identifier should be allowed")
	}
	if res, _ := limiter.Check(ctx, "198.51.100.2"); !res.Allowed {
		t.Fatal("second identifier has its own window")
	}
	if res, _ := limiter.Check(ctx, "198.51.100.1"); res.Allowed {
		t.Fatal("first identifier should now be over quota")
	}
}

func TestCheck_WindowResets(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if res, _ := limiter.Check(ctx, "203.0.113.9"); !res.Allowed {
		t.Fatal("first submission should be allowed")
	}
	if res, _ := limiter.Check(ctx, "203.0.113.9"); res.Allowed {
		t.Fatal("second submission should be denied")
	}

	mr.FastForward(61 * time.Second)

	if res, _ := limiter.Check(ctx, "203.0.113.9"); !res.Allowed {
		t.Fatal("submission after window expiry should be allowed")
	}
}
