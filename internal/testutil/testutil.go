package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

var _ TestingTB = (*testing.T)(nil)

// TestRedis bundles a client with the in-process server backing it.
// Server is nil when TEST_REDIS_ADDR points the tests at a real Redis.
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// FastForward advances server time so TTLs expire. It is a no-op against a real Redis.
func (r *TestRedis) FastForward(d time.Duration) {
	if r.Server != nil {
		r.Server.FastForward(d)
	}
}

// SetupTestRedis returns a Redis client for tests.
// By default it starts an in-process miniredis; set TEST_REDIS_ADDR to run
// against a real server (the selected DB is flushed first).
func SetupTestRedis(t TestingTB) *TestRedis {
	t.Helper()

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return setupExternalRedis(t, addr)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client: %v", cerr)
		}
	})
	return &TestRedis{Client: client, Server: mr}
}

func setupExternalRedis(t TestingTB, addr string) *TestRedis {
	t.Helper()

	db := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			db = i
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client: %v", cerr)
		}
	})
	return &TestRedis{Client: client}
}

// MakeToken signs claims with a throwaway HMAC key. The UI never verifies
// tokens, so any key works for tests.
func MakeToken(t TestingTB, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// FixedTimeFunc returns a clock that always reports tm.
func FixedTimeFunc(tm time.Time) func() time.Time {
	return func() time.Time { return tm }
}

// TestTime returns a fixed instant for deterministic tests.
func TestTime() time.Time {
	return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
}

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int {
	return &i
}

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string {
	return &s
}
