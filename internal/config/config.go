// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"church-map/internal/mapview"
	"church-map/internal/model"
)

// Dataset sources.
const (
	SourceFile      = "file"
	SourceGCS       = "gcs"
	SourceFirestore = "firestore"
)

// Config is the server configuration.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatasetSource string         `env:"DATASET_SOURCE" envDefault:"file"`
	DatasetPath   string         `env:"DATASET_PATH" envDefault:"data/locations.json"`
	Revision      model.Revision `env:"DATASET_REVISION" envDefault:"3"`
	WatchDataset  bool           `env:"WATCH_DATASET" envDefault:"true"`

	GCSBucket           string `env:"GCS_BUCKET"`
	ProjectID           string `env:"GCP_PROJECT_ID"`
	FirestoreCollection string `env:"FIRESTORE_COLLECTION" envDefault:"states"`

	CacheDir string        `env:"CACHE_DIR" envDefault:"cache"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"168h"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASS"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"10m"`

	IconBaseURL  string `env:"ICON_BASE_URL"`
	CheckAssets  bool   `env:"CHECK_ASSETS" envDefault:"true"`
	MountAnchor  string `env:"MOUNT_ANCHOR" envDefault:"app"`
	RateLimitRPM int    `env:"RATE_LIMIT_RPM" envDefault:"120"`

	ChromePath string `env:"CHROME_PATH"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return parse(env.Options{})
}

// Parse reads configuration from the given variables only. Used by tests.
func Parse(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.IconBaseURL == "" {
		cfg.IconBaseURL = mapview.DefaultIconBase
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations the struct tags cannot express.
func (c Config) Validate() error {
	switch c.DatasetSource {
	case SourceFile:
		if filepath.Ext(c.DatasetPath) != ".json" {
			return fmt.Errorf("DATASET_PATH must name a .json file, got %q", c.DatasetPath)
		}
	case SourceGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when DATASET_SOURCE=%s", SourceGCS)
		}
	case SourceFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when DATASET_SOURCE=%s", SourceFirestore)
		}
	default:
		return fmt.Errorf("unknown DATASET_SOURCE %q", c.DatasetSource)
	}
	if strings.TrimSpace(c.MountAnchor) == "" {
		return fmt.Errorf("MOUNT_ANCHOR must not be empty")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must not be negative")
	}
	return nil
}

// DatasetDir and DatasetKey split DatasetPath into a store directory and key.
func (c Config) DatasetDir() string {
	return filepath.Dir(c.DatasetPath)
}

func (c Config) DatasetKey() string {
	return strings.TrimSuffix(filepath.Base(c.DatasetPath), ".json")
}
