// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fgardt/factorio-scanner-sub002/internal/discovery"
)

func documentMatcher(t *testing.T) *discovery.Matcher {
	t.Helper()

	m, err := discovery.NewMatcher([]string{"**/*.json", "**/*.json.gz"}, []string{"archive/**"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// start runs w in the background and returns a stop function that cancels
// it and checks that Run returned cleanly.
func start(t *testing.T, w *Watcher) (context.Context, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	return ctx, func() {
		t.Helper()
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return after context cancellation")
		}
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestWatcherDebounce verifies that rapid writes are coalesced into a single
// callback carrying every changed path.
func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Roots:    []string{dir},
		Matcher:  documentMatcher(t),
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)

	for _, name := range []string{"a.json", "b.json", "c.json"} {
		write(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		if !slices.Contains(collected, filepath.Join(dir, name)) {
			t.Errorf("expected %q in changed files, got %v", name, collected)
		}
	}
}

// TestWatcherFiltering checks that only files selected by the matcher
// trigger the callback.
func TestWatcherFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []string{dir},
		Matcher:  documentMatcher(t),
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)
	defer stop()

	write(t, filepath.Join(dir, "notes.txt"))
	write(t, filepath.Join(dir, "archive", "old.json"))
	time.Sleep(200 * time.Millisecond)
	write(t, filepath.Join(dir, "mall.json"))

	select {
	case changed := <-fired:
		want := []string{filepath.Join(dir, "mall.json")}
		if !slices.Equal(changed, want) {
			t.Errorf("changed = %v, want %v", changed, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on a document file")
	}
}

// TestWatcherFileRoot checks that a file root only reacts to its own events.
func TestWatcherFileRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "single.txt")
	write(t, target)

	fired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []string{target},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)
	defer stop()

	write(t, filepath.Join(dir, "sibling.json"))
	time.Sleep(200 * time.Millisecond)
	write(t, target)

	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{target}) {
			t.Errorf("changed = %v, want only %s", changed, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on the file root")
	}
}

// TestWatcherNewDirectory verifies that directories created after New are
// watched recursively.
func TestWatcherNewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)
	w, err := New(Config{
		Roots:    []string{dir},
		Matcher:  documentMatcher(t),
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)
	defer stop()

	sub := filepath.Join(dir, "books")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(sub, "rail.json"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, filepath.Join(sub, "rail.json")) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for an event from the new directory")
		}
	}
}

// TestWatcherSkipIfBusy verifies that a slow callback is never entered twice
// at the same time.
func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		calls   int
	)
	firstDone := make(chan struct{})

	var logs bytes.Buffer
	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}),
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			active++
			calls++
			n := calls
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			if n == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstDone)
			}

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)

	write(t, filepath.Join(dir, "first.json"))
	time.Sleep(100 * time.Millisecond)
	write(t, filepath.Join(dir, "second.json"))

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("callback ran concurrently with itself")
	}
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
}

// TestWatcherCallbackError checks that a failing callback is logged and the
// watcher keeps running.
func TestWatcherCallbackError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		logs  bytes.Buffer
		logMu sync.Mutex
	)
	fired := make(chan struct{}, 10)
	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   log.New(&lockedWriter{mu: &logMu, w: &logs}),
		OnChange: func(_ context.Context, _ []string) error {
			fired <- struct{}{}
			return errors.New("document holds no blueprint")
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, stop := start(t, w)

	write(t, filepath.Join(dir, "broken.json"))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(50 * time.Millisecond)
	stop()

	logMu.Lock()
	defer logMu.Unlock()
	if !strings.Contains(logs.String(), "rescan failed") {
		t.Errorf("callback error was not logged: %q", logs.String())
	}
}

func TestWatcherDoubleRun(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Roots: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, stop := start(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	stop()
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrInvalidWatchConfig) {
		t.Errorf("New() without roots error = %v, want ErrInvalidWatchConfig", err)
	}
	if _, err := New(Config{Roots: []string{filepath.Join(t.TempDir(), "missing")}}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New() with a missing root error = %v, want os.ErrNotExist", err)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
