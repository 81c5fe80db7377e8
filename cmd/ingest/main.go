package main

import (
	"bytes"
	"context"
	"os"
	"time"

	"church-map/internal/config"
	"church-map/internal/dataset"
	"church-map/internal/firestore"
	"church-map/internal/log"
	"church-map/internal/source"
	"church-map/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Configure(log.Config{Level: cfg.LogLevel})
	logger := log.WithComponent("ingest")

	// Required environment variables
	if cfg.ProjectID == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID environment variable is required")
	}

	raw, err := os.ReadFile(cfg.DatasetPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DatasetPath).Msg("failed to read dataset")
	}
	d, err := dataset.Load(bytes.NewReader(raw), cfg.Revision)
	if err != nil {
		for _, ve := range dataset.ValidationErrors(err) {
			logger.Error().Str("record", ve.Record).Str("field", ve.Field).Err(ve.Err).Msg("invalid record")
		}
		logger.Fatal().Err(err).Msg("dataset rejected, nothing published")
	}
	for _, w := range d.Warnings() {
		logger.Warn().Msg(w)
	}
	logger.Info().Int("states", d.Len()).Int("churches", d.ChurchCount()).Str("version", d.Version()).Msg("dataset validated")

	// Initialize Firestore client
	fsClient, err := firestore.New(ctx, cfg.ProjectID, cfg.FirestoreCollection)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Firestore client")
	}
	defer fsClient.Close()

	// Generate batch ID for this ingestion run
	batchID := time.Now().UTC().Format("20060102-150405")
	if err := fsClient.ReplaceStates(ctx, d.States(), batchID); err != nil {
		logger.Fatal().Err(err).Str("batch", batchID).Msg("failed to store states")
	}
	logger.Info().Str("batch", batchID).Str("collection", fsClient.Collection()).Int("states", d.Len()).Msg("states stored")

	if cfg.GCSBucket == "" {
		logger.Info().Msg("GCS_BUCKET not set, skipping upload")
		return
	}
	gcsStore, err := store.NewGCS(ctx, cfg.GCSBucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize GCS store")
	}
	defer gcsStore.Close()

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		logger.Fatal().Err(err).Msg("failed to encode dataset")
	}
	if err := gcsStore.Put(ctx, source.DatasetKey, buf.Bytes()); err != nil {
		logger.Fatal().Err(err).Msg("failed to upload dataset")
	}
	logger.Info().Str("object", gcsStore.Location(source.DatasetKey)).Msg("dataset uploaded")
}
