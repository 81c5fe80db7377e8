package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/mapview"
	"church-map/internal/model"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SourceFile, cfg.DatasetSource)
	assert.Equal(t, model.LatestRevision, cfg.Revision)
	assert.Equal(t, 10*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, mapview.DefaultIconBase, cfg.IconBaseURL)
	assert.Equal(t, "app", cfg.MountAnchor)
	assert.True(t, cfg.WatchDataset)
	assert.Equal(t, "data", cfg.DatasetDir())
	assert.Equal(t, "locations", cfg.DatasetKey())
}

func TestOverrides(t *testing.T) {
	cfg, err := Parse(map[string]string{
		"DATASET_SOURCE":   "gcs",
		"GCS_BUCKET":       "church-map-data",
		"DATASET_REVISION": "1",
		"RATE_LIMIT_RPM":   "0",
		"ICON_BASE_URL":    "/static/leaflet",
		"WATCH_DATASET":    "false",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RevisionBase, cfg.Revision)
	assert.Equal(t, "church-map-data", cfg.GCSBucket)
	assert.Equal(t, "/static/leaflet", cfg.IconBaseURL)
	assert.False(t, cfg.WatchDataset)
}

func TestInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown source":       {"DATASET_SOURCE": "ftp"},
		"gcs without bucket":   {"DATASET_SOURCE": "gcs"},
		"firestore no project": {"DATASET_SOURCE": "firestore"},
		"not json":             {"DATASET_PATH": "data/locations.yaml"},
		"bad revision":         {"DATASET_REVISION": "7"},
		"bad duration":         {"CACHE_TTL": "soon"},
		"negative rate":        {"RATE_LIMIT_RPM": "-1"},
		"blank anchor":         {"MOUNT_ANCHOR": " "},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(vars)
			assert.Error(t, err)
		})
	}
}
