package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("New() without paths should fail")
	}
	w, err := New(Config{Paths: []string{"parameters.tsv"}}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.debounce == nil || len(w.files) != 1 {
		t.Errorf("watcher not initialized: %+v", w)
	}
	_ = w.Stop()
}

func TestWatcher_ReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "parameters.tsv")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("a\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(Config{Paths: []string{watched}, Debounce: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	changes := make(chan []string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Watch(ctx, func(changed []string) error {
			changes <- changed
			return nil
		})
	}()

	// Wait for watcher to start
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := os.WriteFile(watched, []byte{byte('0' + i), '\n'}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case changed := <-changes:
		want, _ := filepath.Abs(watched)
		if len(changed) != 1 || changed[0] != want {
			t.Errorf("changed = %v, want [%s]", changed, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}

	// The burst of writes is reported once
	select {
	case changed := <-changes:
		t.Errorf("unexpected second notification: %v", changed)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_SetPaths(t *testing.T) {
	first := filepath.Join(t.TempDir(), "observables.tsv")
	second := filepath.Join(t.TempDir(), "observables_v2.tsv")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte("a\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(Config{Paths: []string{first}, Debounce: 30 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	changes := make(chan []string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Watch(ctx, func(changed []string) error {
			changes <- changed
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	if err := w.SetPaths([]string{second}); err != nil {
		t.Fatalf("SetPaths() error = %v", err)
	}
	want, _ := filepath.Abs(second)
	if got := w.Paths(); len(got) != 1 || got[0] != want {
		t.Fatalf("Paths() = %v, want [%s]", got, want)
	}
	if len(w.dirs) != 1 || !w.dirs[filepath.Dir(want)] {
		t.Errorf("watched directories = %v, want only %s", w.dirs, filepath.Dir(want))
	}

	if err := os.WriteFile(first, []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case changed := <-changes:
		if len(changed) != 1 || changed[0] != want {
			t.Errorf("changed = %v, want [%s]", changed, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change on the new path")
	}

	if err := w.SetPaths(nil); err == nil {
		t.Error("SetPaths(nil) should fail")
	}
}

func TestWatcher_StopsOnContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problem.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(Config{Paths: []string{path}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func([]string) error { return nil }) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var (
		mu    sync.Mutex
		calls [][]string
	)
	record := func(keys []string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, keys)
	}

	d.Trigger("b", record)
	d.Trigger("a", record)
	d.Trigger("b", record)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if len(calls) != 1 || len(calls[0]) != 2 || calls[0][0] != "a" || calls[0][1] != "b" {
		t.Errorf("calls = %v, want [[a b]]", calls)
	}
	mu.Unlock()

	d.Stop()
	d.Trigger("c", record)
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Errorf("Trigger after Stop ran the callback: %v", calls)
	}
}
