package skills

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadRecorder struct {
	mu      sync.Mutex
	changes []Changes
	errs    []error
}

func (r *reloadRecorder) onReload(_ context.Context, changes Changes, _, _ *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes)
}

func (r *reloadRecorder) onError(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reloadRecorder) added() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, c := range r.changes {
		names = append(names, c.Added...)
	}
	return names
}

func (r *reloadRecorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func startWatcher(t *testing.T, registry *Registry, dir string) *reloadRecorder {
	t.Helper()
	recorder := &reloadRecorder{}
	watcher := NewWatcher(registry, dir,
		WithDebounce(20*time.Millisecond),
		OnReload(recorder.onReload),
		OnError(recorder.onError),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// give fsnotify time to register the watches
	time.Sleep(50 * time.Millisecond)
	return recorder
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	registry := newLoadedRegistry(t, dir)
	recorder := startWatcher(t, registry, dir)

	writeSkillFile(t, dir, "b.md", "---\ndescription: added later\n---\nb")

	require.Eventually(t, func() bool {
		skill, err := registry.Get("b")
		return err == nil && skill.Description == "added later"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, recorder.added(), "b")

	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
	require.Eventually(t, func() bool {
		return slices.Equal(registry.Names(), []string{"b"})
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_NewSkillDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	registry := newLoadedRegistry(t, dir)
	startWatcher(t, registry, dir)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "deploy"), 0o755))
	time.Sleep(50 * time.Millisecond)
	writeSkillFile(t, dir, "deploy/SKILL.md", "deploy steps")

	require.Eventually(t, func() bool {
		_, err := registry.Get("deploy")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	writeSkillFile(t, dir, "deploy/SKILL.md", "updated steps")
	require.Eventually(t, func() bool {
		skill, err := registry.Get("deploy")
		return err == nil && skill.Body == "updated steps"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_FailedReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	registry := newLoadedRegistry(t, dir)
	prior := registry.Snapshot()
	recorder := startWatcher(t, registry, dir)

	writeSkillFile(t, dir, "b.md", "---\nname: a\n---\n")

	require.Eventually(t, func() bool {
		return recorder.errorCount() > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Same(t, prior, registry.Snapshot())
	recorder.mu.Lock()
	assert.True(t, IsDuplicateIdentifier(recorder.errs[0]))
	recorder.mu.Unlock()
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	registry := newLoadedRegistry(t, dir)
	prior := registry.Snapshot()
	startWatcher(t, registry, dir)

	writeSkillFile(t, dir, ".a.md.swp", "swap")
	time.Sleep(200 * time.Millisecond)

	assert.Same(t, prior, registry.Snapshot())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	watcher := NewWatcher(registry, filepath.Join(t.TempDir(), "missing"))
	err = watcher.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestWithDebounce_IgnoresNonPositive(t *testing.T) {
	w := NewWatcher(nil, ".", WithDebounce(0))
	assert.Equal(t, DefaultDebounce, w.debounce)

	w = NewWatcher(nil, ".", WithDebounce(time.Second))
	assert.Equal(t, time.Second, w.debounce)
}
