package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clauserisk/internal/model"
)

const contract = "The Supplier shall indemnify the Buyer for any penalty imposed by a regulator."

func startWatcher(t *testing.T, cfg Config, dir string) *Watcher {
	t.Helper()
	cfg.Debounce = 50 * time.Millisecond

	w, err := New(cfg, dir, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(wait):
	}
}

// drain discards events still settling from a previous write
func drain(w *Watcher, settle time.Duration) {
	deadline := time.After(settle)
	for {
		select {
		case <-w.Events():
		case <-deadline:
			return
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	w, err := New(Config{Extensions: []string{"TXT", ".pdf"}}, t.TempDir(), nil)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.True(t, w.extensions[".txt"])
	assert.True(t, w.extensions[".pdf"])
	assert.False(t, w.extensions[".md"])
	assert.Equal(t, DefaultConfig().Debounce, w.config.Debounce)
}

func TestWatcher_CreateAndModify(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, DefaultConfig(), dir)

	path := filepath.Join(dir, "supply.txt")
	require.NoError(t, os.WriteFile(path, []byte(contract), 0o644))

	ev := nextEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpCreate, ev.Operation)
	drain(w, 200*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(contract+" Arbitration applies."), 0o644))

	ev = nextEvent(t, w)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, OpModify, ev.Operation)
}

func TestWatcher_UnchangedContentIsSkipped(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, DefaultConfig(), dir)

	path := filepath.Join(dir, "supply.txt")
	require.NoError(t, os.WriteFile(path, []byte(contract), 0o644))
	nextEvent(t, w)
	drain(w, 200*time.Millisecond)

	// same bytes again
	require.NoError(t, os.WriteFile(path, []byte(contract), 0o644))
	expectNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_IgnoresUnsupportedAndIgnoredPaths(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(out, 0o755))

	cfg := DefaultConfig()
	cfg.IgnorePaths = []string{out}
	w := startWatcher(t, cfg, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap.txt"), []byte(contract), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "report.md"), []byte("# report"), 0o644))

	expectNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_ExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(path, []byte(contract), 0o644))

	t.Run("skipped by default", func(t *testing.T) {
		w := startWatcher(t, DefaultConfig(), dir)
		expectNoEvent(t, w, 200*time.Millisecond)
	})

	t.Run("scanned on request", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ScanExisting = true
		w := startWatcher(t, cfg, dir)

		ev := nextEvent(t, w)
		assert.Equal(t, path, ev.Path)
		assert.Equal(t, OpCreate, ev.Operation)
	})
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, DefaultConfig(), dir)

	sub := filepath.Join(dir, "vendors")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// let the directory watch register before writing into it
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "acme.md")
	require.NoError(t, os.WriteFile(path, []byte(contract), 0o644))

	ev := nextEvent(t, w)
	assert.Equal(t, path, ev.Path)
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	if strings.Contains(source, "broken") {
		return nil, errors.New("unreadable")
	}
	return &model.Report{Source: source}, nil
}

func TestProcess(t *testing.T) {
	events := make(chan Event, 3)
	events <- Event{Path: "a.txt"}
	events <- Event{Path: "broken.pdf"}
	events <- Event{Path: "c.txt"}
	close(events)

	var (
		mu     sync.Mutex
		ok     []string
		failed []string
	)
	err := Process(context.Background(), events, fakeAnalyzer{}, 2, func(ev Event, report *model.Report, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed = append(failed, ev.Path)
			return
		}
		ok = append(ok, report.Source)
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "c.txt"}, ok)
	assert.Equal(t, []string{"broken.pdf"}, failed)
}

func TestProcess_StopsOnCancel(t *testing.T) {
	events := make(chan Event)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Process(ctx, events, fakeAnalyzer{}, 1, func(Event, *model.Report, error) {})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Process did not return after cancel")
	}
}
