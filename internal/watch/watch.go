// Package watch reloads the dataset when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"church-map/internal/dataset"
	"church-map/internal/log"
	"church-map/internal/metrics"
	"church-map/internal/source"
)

const defaultDebounce = 250 * time.Millisecond

// Reloader watches a dataset file and swaps a freshly validated snapshot
// into the holder after every change. A change that fails validation is
// logged and the previous snapshot stays active.
type Reloader struct {
	path     string
	src      source.Source
	holder   *dataset.Holder
	debounce time.Duration
	logger   zerolog.Logger
}

// NewReloader creates a Reloader for path, loading through src.
func NewReloader(path string, src source.Source, holder *dataset.Holder) *Reloader {
	return &Reloader{
		path:     filepath.Clean(path),
		src:      src,
		holder:   holder,
		debounce: defaultDebounce,
		logger:   log.WithComponent("watch"),
	}
}

// SetDebounce sets how long to wait for writes to settle before reloading.
func (r *Reloader) SetDebounce(d time.Duration) {
	r.debounce = d
}

// Run watches until ctx is cancelled. The parent directory is watched since
// editors and deploy tools often replace the file by renaming over it.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(r.path), err)
	}
	r.logger.Info().Str("path", r.path).Msg("watching dataset")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(r.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn().Err(err).Msg("watcher error")
		case <-pending:
			pending = nil
			r.Reload(ctx)
		}
	}
}

// Reload loads the dataset once and installs it if it is valid.
func (r *Reloader) Reload(ctx context.Context) error {
	d, err := r.src.Load(ctx)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(r.src.Name(), "error").Inc()
		ev := r.logger.Error().Err(err).Str("source", r.src.Name())
		if ves := dataset.ValidationErrors(err); len(ves) > 0 {
			ev = ev.Int("validation_errors", len(ves))
		}
		ev.Msg("dataset reload rejected, keeping previous snapshot")
		return err
	}
	metrics.DatasetLoadsTotal.WithLabelValues(r.src.Name(), "ok").Inc()
	Publish(r.holder, d)

	r.logger.Info().
		Str("version", d.Version()).
		Int("states", d.Len()).
		Int("churches", d.ChurchCount()).
		Msg("dataset reloaded")
	return nil
}

// Publish installs d in holder and updates the dataset gauges.
func Publish(holder *dataset.Holder, d *dataset.Dataset) {
	holder.Swap(d)
	metrics.DatasetStates.Set(float64(d.Len()))
	metrics.DatasetChurches.Set(float64(d.ChurchCount()))
}
