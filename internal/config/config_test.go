package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Stream.RetryCount != DefaultConfig().Stream.RetryCount {
		t.Fatalf("expected default retry count, got %d", cfg.Stream.RetryCount)
	}
}

func TestLoadFillsMissingFieldsFromDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[stream]\nurl = \"wss://example.test/stream\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Stream.URL != "wss://example.test/stream" {
		t.Fatalf("expected explicit url to survive, got %q", cfg.Stream.URL)
	}
	if cfg.Stream.RetryCount != DefaultConfig().Stream.RetryCount {
		t.Fatalf("expected retry count default to be filled in, got %d", cfg.Stream.RetryCount)
	}
}

func TestManagerReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[stream]\nurl = \"wss://a\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	mgr, err := NewManager(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if mgr.Current().Stream.URL != "wss://a" {
		t.Fatalf("unexpected initial url: %q", mgr.Current().Stream.URL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Watch(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer mgr.Stop()

	if err := os.WriteFile(path, []byte("[stream]\nurl = \"wss://b\"\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mgr.Current().Stream.URL == "wss://b" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected reload to observe new url, still %q", mgr.Current().Stream.URL)
}
