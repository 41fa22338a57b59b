package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestConfigOptions(t *testing.T) {
	opts := Config{Addr: "cache:6379", DB: -1}.options()
	if opts.Addr != "cache:6379" || opts.DB != defaultDB {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got %v / %v", opts.DialTimeout, opts.ReadTimeout)
	}

	if opts := (Config{Timeout: time.Second, DB: 2}).options(); opts.WriteTimeout != time.Second || opts.DB != 2 {
		t.Fatalf("explicit settings ignored: %+v", opts)
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if err := Ping(client)(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if err := Ping(client)(context.Background()); err == nil {
		t.Fatal("expected ping to fail once the server is gone")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	if _, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 100 * time.Millisecond}); err == nil {
		t.Fatal("expected connect error")
	}
}
