// Package source loads the dataset from its configured origin.
package source

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"church-map/internal/cache"
	"church-map/internal/dataset"
	"church-map/internal/firestore"
	"church-map/internal/log"
	"church-map/internal/metrics"
	"church-map/internal/model"
	"church-map/internal/store"
)

// DatasetKey is the store key of the dataset document.
const DatasetKey = "locations"

// Source produces validated dataset snapshots.
type Source interface {
	// Name identifies the source in logs, metrics and the fallback cache.
	Name() string
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// StoreSource reads the dataset document from a blob store.
type StoreSource struct {
	store    store.Store
	key      string
	revision model.Revision
}

// FromStore returns a Source reading key from s.
func FromStore(s store.Store, key string, rev model.Revision) *StoreSource {
	return &StoreSource{store: s, key: key, revision: rev}
}

func (s *StoreSource) Name() string {
	return s.store.Location(s.key)
}

func (s *StoreSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	d, err := dataset.Parse(data, s.revision)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", s.Name(), err)
	}
	return d, nil
}

// StateLister is the part of the Firestore client a FirestoreSource needs.
type StateLister interface {
	GetAllStates(ctx context.Context) ([]model.State, error)
	Collection() string
}

var _ StateLister = (*firestore.Client)(nil)

// FirestoreSource reads state documents from a Firestore collection.
type FirestoreSource struct {
	client   StateLister
	revision model.Revision
}

// FromFirestore returns a Source backed by a Firestore collection.
func FromFirestore(client StateLister, rev model.Revision) *FirestoreSource {
	return &FirestoreSource{client: client, revision: rev}
}

func (s *FirestoreSource) Name() string {
	return "firestore:" + s.client.Collection()
}

func (s *FirestoreSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	states, err := s.client.GetAllStates(ctx)
	if err != nil {
		return nil, err
	}
	d, err := dataset.New(states, s.revision)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", s.Name(), err)
	}
	return d, nil
}

// Fallback wraps a Source with the on-disk cache. Successful loads are
// written to the cache; failed loads are served from it when possible.
type Fallback struct {
	primary Source
	cache   *cache.Cache
	logger  zerolog.Logger
}

// WithFallback returns a Source that falls back to c when primary fails.
func WithFallback(primary Source, c *cache.Cache) *Fallback {
	return &Fallback{
		primary: primary,
		cache:   c,
		logger:  log.WithComponent("source"),
	}
}

func (f *Fallback) Name() string {
	return f.primary.Name()
}

func (f *Fallback) Load(ctx context.Context) (*dataset.Dataset, error) {
	name := f.primary.Name()
	d, err := f.primary.Load(ctx)
	if err == nil {
		metrics.DatasetLoadsTotal.WithLabelValues(name, "ok").Inc()
		entry := cache.Entry{States: d.States(), Revision: d.Revision(), Version: d.Version()}
		if err := f.cache.Set(name, entry); err != nil {
			f.logger.Warn().Err(err).Str("source", name).Msg("failed to cache dataset")
		}
		return d, nil
	}
	metrics.DatasetLoadsTotal.WithLabelValues(name, "error").Inc()
	for _, ve := range dataset.ValidationErrors(err) {
		f.logger.Error().Str("source", name).Str("record", ve.Record).Str("field", ve.Field).
			Err(ve.Err).Msg("invalid record")
	}

	entry, ok := f.cache.Get(name)
	if !ok {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	cached, cerr := dataset.New(entry.States, entry.Revision)
	if cerr != nil {
		return nil, fmt.Errorf("loading %s: %w (cached copy invalid: %v)", name, err, cerr)
	}
	metrics.DatasetLoadsTotal.WithLabelValues(name, "cache").Inc()
	f.logger.Warn().Err(err).Str("source", name).Time("fetched_at", entry.FetchedAt).
		Msg("primary source failed, serving cached dataset")
	return cached, nil
}
