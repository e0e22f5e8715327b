package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_ReplaysCachedResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	cached := []byte(`{"id":"stl_01","status":"completed"}`)
	if err := client.Set(ctx, store.prefix+"settle-req-1", cached, time.Minute).Err(); err != nil {
		t.Fatalf("seed cached response: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "settle-req-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}
	if !exists {
		t.Fatal("expected hit for cached key")
	}
	if string(resp) != string(cached) {
		t.Fatalf("replayed body = %s, want %s", resp, cached)
	}
}

func TestIdempotencyStore_FirstCallerTakesLock(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "settle-req-2", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}
	if exists || resp != nil {
		t.Fatalf("first caller should miss, got exists=%v resp=%q", exists, resp)
	}

	// The in-flight placeholder must be visible to a concurrent caller.
	val, err := client.Get(ctx, store.prefix+"settle-req-2").Result()
	if err != nil {
		t.Fatalf("read placeholder: %v", err)
	}
	if val != "processing" {
		t.Fatalf("placeholder = %q, want %q", val, "processing")
	}

	exists, resp, err = store.CheckAndSet(ctx, "settle-req-2", nil, time.Minute)
	if err != nil {
		t.Fatalf("second CheckAndSet: %v", err)
	}
	if !exists || string(resp) != "processing" {
		t.Fatalf("second caller should observe the lock, got exists=%v resp=%q", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetWithResponseStoresDirectly(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	body := []byte(`{"id":"jrn_07"}`)
	exists, _, err := store.CheckAndSet(ctx, "journal-req-1", body, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}
	if exists {
		t.Fatal("fresh key reported as existing")
	}

	val, err := client.Get(ctx, store.prefix+"journal-req-1").Bytes()
	if err != nil {
		t.Fatalf("read stored body: %v", err)
	}
	if string(val) != string(body) {
		t.Fatalf("stored body = %s, want %s", val, body)
	}
}

func TestIdempotencyStore_UpdateOverwritesPlaceholder(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "settle-req-3", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet: %v", err)
	}

	final := []byte(`{"id":"stl_02","status":"pending"}`)
	if err := store.Update(ctx, "settle-req-3", final, time.Minute); err != nil {
		t.Fatalf("Update: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"settle-req-3").Result()
	if err != nil {
		t.Fatalf("read final body: %v", err)
	}
	if val != string(final) {
		t.Fatalf("final body = %s, want %s", val, final)
	}
}
