package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/dataset"
	"church-map/internal/model"
	"church-map/internal/source"
	"church-map/internal/store"
)

func setup(t *testing.T) (string, *dataset.Holder, *Reloader) {
	t.Helper()
	fixture, err := os.ReadFile("../dataset/testdata/locations.json")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "locations.json")
	require.NoError(t, os.WriteFile(path, fixture, 0644))

	s, err := store.NewLocal(dir)
	require.NoError(t, err)
	src := source.FromStore(s, "locations", model.LatestRevision)

	d, err := src.Load(context.Background())
	require.NoError(t, err)
	holder := dataset.NewHolder(d)

	r := NewReloader(path, src, holder)
	r.SetDebounce(10 * time.Millisecond)
	return path, holder, r
}

func TestReload(t *testing.T) {
	path, holder, r := setup(t)
	before := holder.Get()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), "Uppsala", "Upsala", 1)), 0644))

	require.NoError(t, r.Reload(context.Background()))
	assert.NotEqual(t, before.Version(), holder.Get().Version())
}

func TestReloadRejectsInvalid(t *testing.T) {
	path, holder, r := setup(t)
	before := holder.Get()

	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "X", "name": "X", "latitude": [1, 2]}]`), 0644))
	err := r.Reload(context.Background())
	assert.ErrorIs(t, err, dataset.ErrIncompleteState)
	assert.Same(t, before, holder.Get())
}

func TestReloadKeepsSnapshotOnNullDocument(t *testing.T) {
	for _, doc := range []string{"null", ""} {
		path, holder, r := setup(t)
		before := holder.Get()

		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
		err := r.Reload(context.Background())
		require.Error(t, err, "document %q", doc)
		assert.ErrorIs(t, err, dataset.ErrMalformed)
		assert.Same(t, before, holder.Get())
		assert.Equal(t, 3, holder.Get().Len())
	}
}

func TestRunPicksUpChanges(t *testing.T) {
	path, holder, r := setup(t)
	before := holder.Get().Version()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	changed := strings.Replace(string(data), "Göteborg", "Gothenburg", 1)

	// The watcher may not be registered yet; keep rewriting until it reloads.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(changed), 0644)
		return holder.Get().Version() != before
	}, 5*time.Second, 50*time.Millisecond)

	st, ok := holder.Get().State("GBG")
	require.True(t, ok)
	assert.Equal(t, "Gothenburg", st.Name)
}
