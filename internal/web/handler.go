package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"church-map/internal/dataset"
	"church-map/internal/log"
	"church-map/internal/metrics"
	"church-map/internal/model"
	"church-map/internal/search"
)

//go:embed templates/index.html
var templates embed.FS

//go:embed static
var static embed.FS

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// HostDocument returns the unmounted page template.
func HostDocument() []byte {
	data, _ := templates.ReadFile("templates/index.html")
	return data
}

// Options tunes the HTTP surface.
type Options struct {
	// RateLimitRPM caps API requests per client IP per minute. Zero disables it.
	RateLimitRPM int
}

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	data     *dataset.Holder
	searcher search.Searcher
	page     []byte
	opts     Options
	logger   zerolog.Logger
}

// New creates a Handler serving the mounted page and the dataset in data.
func New(data *dataset.Holder, searcher search.Searcher, page []byte, opts Options) *Handler {
	return &Handler{
		data:     data,
		searcher: searcher,
		page:     page,
		opts:     opts,
		logger:   log.WithComponent("web"),
	}
}

// RegisterRoutes registers all HTTP routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(h.observe)

	r.Get("/", h.noCache(h.handleIndex))
	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	assets, _ := fs.Sub(static, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))

	r.Route("/api", func(r chi.Router) {
		if h.opts.RateLimitRPM > 0 {
			r.Use(httprate.LimitByIP(h.opts.RateLimitRPM, time.Minute))
		}
		r.Get("/states", h.handleStates)
		r.Get("/states/{id}", h.handleState)
		r.Get("/regions", h.handleRegions)
		r.Get("/search", h.handleSearch)
		r.Get("/platforms", h.handlePlatforms)
	})
}

func (h *Handler) noCache(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next(w, r)
	}
}

// observe records request durations by route pattern.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(h.page)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.data.Get() == nil {
		http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// current returns the active dataset or writes a 503.
func (h *Handler) current(w http.ResponseWriter) *dataset.Dataset {
	d := h.data.Get()
	if d == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
	}
	return d
}

func (h *Handler) handleStates(w http.ResponseWriter, r *http.Request) {
	d := h.current(w)
	if d == nil {
		return
	}
	etag := `"` + d.Version() + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	d := h.current(w)
	if d == nil {
		return
	}
	st, ok := d.State(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown state")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	d := h.current(w)
	if d == nil {
		return
	}
	writeJSON(w, http.StatusOK, d.Regions())
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	d := h.current(w)
	if d == nil {
		return
	}
	metrics.SearchRequestsTotal.Inc()

	limit := defaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	results, err := h.searcher.Search(r.Context(), d, r.URL.Query().Get("q"), limit)
	if errors.Is(err, search.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	d := h.current(w)
	if d == nil {
		return
	}
	writeJSON(w, http.StatusOK, PlatformInfos(d.Revision()))
}

// PlatformInfos lists the presentation descriptors of a revision's platforms.
func PlatformInfos(rev model.Revision) []model.PlatformInfo {
	var out []model.PlatformInfo
	for _, p := range rev.Platforms() {
		if info, ok := p.Info(); ok {
			out = append(out, info)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
