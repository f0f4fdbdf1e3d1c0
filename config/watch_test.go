package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(p, []byte("cleanup_days: 10\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Settings, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, p, func(s Settings) {
			select {
			case got <- s:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(p, []byte("cleanup_days: 21\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case s := <-got:
		if s.CleanupDays != 21 {
			t.Errorf("reloaded cleanup_days: got %d, want 21", s.CleanupDays)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch: no reload delivered within 5s")
	}

	cancel()
	<-done
}

func TestWatch_KeepsPreviousOnInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(p, []byte("cleanup_days: 10\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Settings, 4)
	go func() {
		_ = Watch(ctx, p, func(s Settings) { got <- s })
	}()

	time.Sleep(100 * time.Millisecond)
	// Broken yaml must not produce a callback.
	if err := os.WriteFile(p, []byte(": not yaml ["), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case s := <-got:
		t.Errorf("Watch delivered settings for invalid yaml: %+v", s)
	case <-time.After(500 * time.Millisecond):
		// expected: no callback
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), func(Settings) {})
	if err == nil {
		t.Fatal("Watch on missing file: expected error")
	}
}
