package search

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/dataset"
	"church-map/internal/model"
)

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	data, err := os.ReadFile("../dataset/testdata/locations.json")
	require.NoError(t, err)
	d, err := dataset.Parse(data, model.LatestRevision)
	require.NoError(t, err)
	return d
}

func ids(results []model.SearchResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.State.ID+"/"+r.Church.ID)
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "goteborg", Normalize("  Göteborg "))
	assert.Equal(t, "kristi forklarings", Normalize("Kristi   FÖRKLARINGS"))
	assert.Equal(t, "", Normalize("   "))
}

func TestMatcherStateLevel(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "stockholm", 0)
	require.NoError(t, err)

	require.Equal(t, []string{"STO/sto-georgios", "STO/sto-kristi"}, ids(results))
	for _, r := range results {
		assert.True(t, r.IsRegion)
		assert.Equal(t, "STO", r.State.ID)
	}
}

func TestMatcherRegion(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "svealand", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"STO/sto-georgios", "STO/sto-kristi", "UPP/UPP"}, ids(results))
}

func TestMatcherChurchLevel(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "rysk", 0)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "sto-kristi", results[0].Church.ID)
	assert.Equal(t, "STO", results[0].State.ID)
	assert.False(t, results[0].IsRegion)
}

func TestMatcherSingleChurchState(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "serbisk", 0)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "GBG", results[0].Church.ID)
	assert.Equal(t, "Göteborg", results[0].Church.Name)
	assert.False(t, results[0].IsRegion)
}

func TestMatcherDiacriticsAndLimit(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "ortodoxa", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = NewMatcher().Search(context.Background(), d, "GOTEBORG", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"GBG/GBG"}, ids(results))
}

func TestMatcherNoMatch(t *testing.T) {
	d := loadFixture(t)
	results, err := NewMatcher().Search(context.Background(), d, "zanzibar", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatcherEmptyQuery(t *testing.T) {
	d := loadFixture(t)
	_, err := NewMatcher().Search(context.Background(), d, " \t", 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestMatcherCancelled(t *testing.T) {
	d := loadFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMatcher().Search(ctx, d, "stockholm", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
