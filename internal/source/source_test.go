package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/cache"
	"church-map/internal/dataset"
	"church-map/internal/model"
	"church-map/internal/store"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../dataset/testdata/locations.json")
	require.NoError(t, err)
	return data
}

func TestStoreSource(t *testing.T) {
	s, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	src := FromStore(s, DatasetKey, model.LatestRevision)

	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, DatasetKey, fixture(t)))
	d, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	require.NoError(t, s.Put(ctx, DatasetKey, []byte(`[{"id": "X", "name": "X", "latitude": [1, 2]}]`)))
	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, dataset.ErrIncompleteState)
}

type fakeLister struct {
	states []model.State
	err    error
}

func (f *fakeLister) GetAllStates(ctx context.Context) ([]model.State, error) {
	return f.states, f.err
}

func (f *fakeLister) Collection() string { return "states" }

func TestFirestoreSource(t *testing.T) {
	d, err := dataset.Parse(fixture(t), model.LatestRevision)
	require.NoError(t, err)

	src := FromFirestore(&fakeLister{states: d.States()}, model.LatestRevision)
	assert.Equal(t, "firestore:states", src.Name())
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d.Version(), got.Version())

	src = FromFirestore(&fakeLister{states: []model.State{{ID: "bad"}}}, model.LatestRevision)
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}

type flakySource struct {
	d   *dataset.Dataset
	err error
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(ctx context.Context) (*dataset.Dataset, error) {
	return f.d, f.err
}

func TestFallback(t *testing.T) {
	d, err := dataset.Parse(fixture(t), model.LatestRevision)
	require.NoError(t, err)
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	primary := &flakySource{err: errors.New("bucket unreachable")}
	fb := WithFallback(primary, c)

	_, err = fb.Load(context.Background())
	assert.ErrorContains(t, err, "bucket unreachable")

	primary.d, primary.err = d, nil
	got, err := fb.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d.Version(), got.Version())

	primary.d, primary.err = nil, errors.New("bucket unreachable")
	got, err = fb.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d.Version(), got.Version())
	assert.Equal(t, 4, got.ChurchCount())
}

func TestFallbackOnInvalidDataset(t *testing.T) {
	s, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)
	c, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	var buf bytes.Buffer
	fb := WithFallback(FromStore(s, DatasetKey, model.LatestRevision), c)
	fb.logger = zerolog.New(&buf)

	require.NoError(t, s.Put(ctx, DatasetKey, fixture(t)))
	good, err := fb.Load(ctx)
	require.NoError(t, err)

	bad := `[{"id": "X", "name": "X", "latitude": [1, 2], "family": "F", "location": "L", "img": "i",
		"socials": [{"name": "twitter", "socialUrl": "https://twitter.com/x"}]}]`
	require.NoError(t, s.Put(ctx, DatasetKey, []byte(bad)))

	got, err := fb.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, good.Version(), got.Version())
	assert.Equal(t, 3, got.Len())

	logs := buf.String()
	assert.Contains(t, logs, `"record":"X"`)
	assert.Contains(t, logs, `"field":"socials[0].name"`)
	assert.Contains(t, logs, "serving cached dataset")

	// A null document is rejected like any other invalid one.
	require.NoError(t, s.Put(ctx, DatasetKey, []byte(`null`)))
	got, err = fb.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	require.NoError(t, c.InvalidateAll())
	_, err = fb.Load(ctx)
	assert.ErrorIs(t, err, dataset.ErrMalformed)
}
