package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"church-map/internal/cache"
	"church-map/internal/config"
	"church-map/internal/dataset"
	"church-map/internal/firestore"
	"church-map/internal/log"
	"church-map/internal/mapview"
	"church-map/internal/search"
	"church-map/internal/source"
	"church-map/internal/store"
	"church-map/internal/watch"
	"church-map/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Configure(log.Config{Level: cfg.LogLevel})
	logger := log.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cache
	c, err := cache.New(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache")
	}

	// Initialize dataset source (local file, GCS or Firestore)
	primary, closeSource := openSource(ctx, cfg, logger)
	defer closeSource()

	d, err := source.WithFallback(primary, c).Load(ctx)
	if err != nil {
		for _, ve := range dataset.ValidationErrors(err) {
			logger.Error().Str("record", ve.Record).Str("field", ve.Field).Err(ve.Err).Msg("invalid record")
		}
		logger.Fatal().Err(err).Str("source", primary.Name()).Msg("failed to load dataset")
	}
	for _, w := range d.Warnings() {
		logger.Warn().Msg(w)
	}
	holder := dataset.NewHolder(nil)
	watch.Publish(holder, d)
	logger.Info().
		Str("source", primary.Name()).
		Str("version", d.Version()).
		Stringer("revision", d.Revision()).
		Int("states", d.Len()).
		Int("churches", d.ChurchCount()).
		Msg("dataset loaded")

	// Icon configuration is an explicit value handed to the page
	icons := mapview.DefaultIcons(cfg.IconBaseURL)
	page, err := mapview.Mount(web.HostDocument(), cfg.MountAnchor, mapview.Page{
		Title:        "Ortodoxa kyrkor",
		Icons:        icons,
		StatesURL:    "/api/states",
		SearchURL:    "/api/search",
		PlatformsURL: "/api/platforms",
		Platforms:    web.PlatformInfos(d.Revision()),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("anchor", cfg.MountAnchor).Msg("failed to mount map page")
	}
	if cfg.CheckAssets {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		for _, err := range mapview.CheckAssets(checkCtx, nil, icons) {
			logger.Warn().Err(err).Msg("marker icon unreachable, markers may not render")
		}
		cancel()
	}

	var searcher search.Searcher = search.NewMatcher()
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, search cache will degrade")
		}
		searcher = search.NewCached(searcher, rc, cfg.SearchCacheTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("search cache enabled")
	} else {
		logger.Info().Msg("redis not configured (search cache disabled)")
	}

	if cfg.DatasetSource == config.SourceFile && cfg.WatchDataset {
		reloader := watch.NewReloader(cfg.DatasetPath, primary, holder)
		go func() {
			if err := reloader.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("dataset watcher stopped")
			}
		}()
	}

	// Initialize HTTP handlers
	handler := web.New(holder, searcher, page, web.Options{RateLimitRPM: cfg.RateLimitRPM})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.AccessMiddleware(log.WithComponent("http")))
	r.Use(middleware.Recoverer)
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

func openSource(ctx context.Context, cfg config.Config, logger zerolog.Logger) (source.Source, func()) {
	switch cfg.DatasetSource {
	case config.SourceGCS:
		gcsStore, err := store.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize GCS store")
		}
		logger.Info().Str("bucket", cfg.GCSBucket).Msg("store: GCS")
		return source.FromStore(gcsStore, source.DatasetKey, cfg.Revision), func() { gcsStore.Close() }

	case config.SourceFirestore:
		fsClient, err := firestore.New(ctx, cfg.ProjectID, cfg.FirestoreCollection)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Firestore client")
		}
		logger.Info().Str("project", cfg.ProjectID).Str("collection", cfg.FirestoreCollection).Msg("store: Firestore")
		return source.FromFirestore(fsClient, cfg.Revision), func() { fsClient.Close() }

	default:
		localStore, err := store.NewLocal(cfg.DatasetDir())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize local store")
		}
		logger.Info().Str("path", cfg.DatasetPath).Msg("store: local file")
		return source.FromStore(localStore, cfg.DatasetKey(), cfg.Revision), func() {}
	}
}
