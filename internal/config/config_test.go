package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Cache.Prefix != "fastcart-cache" {
		t.Fatalf("unexpected cache prefix: %s", cfg.Cache.Prefix)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.Cache.TTL)
	}
	if cfg.Stream.OrderCompletedStream != "order_completed" {
		t.Fatalf("unexpected stream name: %s", cfg.Stream.OrderCompletedStream)
	}
	if cfg.Stream.BlockTimeout != 3*time.Second {
		t.Fatalf("unexpected block timeout: %v", cfg.Stream.BlockTimeout)
	}
	if cfg.Stream.IdleBackoff != time.Second {
		t.Fatalf("unexpected idle backoff: %v", cfg.Stream.IdleBackoff)
	}
}

func TestLoadProcessingDefaults(t *testing.T) {
	cfg := LoadProcessing()
	if cfg.Delay != 5*time.Second {
		t.Fatalf("unexpected delay: %v", cfg.Delay)
	}
	if cfg.BufferSize != 1024 {
		t.Fatalf("unexpected buffer size: %d", cfg.BufferSize)
	}
	if cfg.Workers != 8 {
		t.Fatalf("unexpected worker count: %d", cfg.Workers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("REDIS_PORT", "12538")
	t.Setenv("STREAM_INVENTORY_GROUP", "inv-group-2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Fatalf("env ttl ignored: %v", cfg.Cache.TTL)
	}
	if cfg.Redis.Address() != "localhost:12538" {
		t.Fatalf("env redis port ignored: %s", cfg.Redis.Address())
	}
	if cfg.Stream.InventoryGroup != "inv-group-2" {
		t.Fatalf("env group ignored: %s", cfg.Stream.InventoryGroup)
	}
}

func TestValidateProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_SSLMODE", "disable")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation failure in production")
	}
	if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Fatalf("expected password error, got: %v", err)
	}
}

func TestValidateStreamNamesMustDiffer(t *testing.T) {
	t.Setenv("STREAM_ORDER_COMPLETED", "same")
	t.Setenv("STREAM_REFUND_ORDER", "same")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation failure for identical streams")
	}
}
