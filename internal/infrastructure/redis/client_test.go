package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if err := client.Set(ctx, "probe", "1", 0).Err(); err != nil {
		t.Fatalf("write through new client: %v", err)
	}
}

func TestNewClientRejectsMalformedURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "://not-a-url"); err == nil {
		t.Fatal("want error for malformed URL")
	}
}

func TestNewClientFailsWhenServerUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()
	mr.Close()

	if _, err := NewClient(context.Background(), url); err == nil {
		t.Fatal("want ping error against stopped server")
	}
}
