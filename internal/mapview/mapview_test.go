package mapview

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/model"
)

const host = `<!DOCTYPE html>
<html><head><title>x</title></head>
<body><div id="app"></div><script src="/static/app.js"></script></body></html>`

func TestDefaultIcons(t *testing.T) {
	icons := DefaultIcons("/static/leaflet/")
	assert.Equal(t, "/static/leaflet/marker-icon.png", icons.IconURL)
	assert.Equal(t, "/static/leaflet/marker-icon-2x.png", icons.IconRetinaURL)
	assert.Equal(t, "/static/leaflet/marker-shadow.png", icons.ShadowURL)

	assert.True(t, strings.HasPrefix(DefaultIcons("").IconURL, DefaultIconBase))
}

func TestMount(t *testing.T) {
	info, _ := model.Instagram.Info()
	page := Page{
		Title:        "Kyrkor",
		Icons:        DefaultIcons("/img"),
		StatesURL:    "/api/states",
		SearchURL:    "/api/search",
		PlatformsURL: "/api/platforms",
		Platforms:    []model.PlatformInfo{info},
	}

	out, err := Mount([]byte(host), "app", page)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.ToLower(string(out)), "<!doctype html>"))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	app := doc.Find("#app")
	require.Equal(t, 1, app.Length())

	assert.Equal(t, "/img/marker-icon.png", app.AttrOr("data-icon-url", ""))
	assert.Equal(t, "/img/marker-icon-2x.png", app.AttrOr("data-icon-retina-url", ""))
	assert.Equal(t, "/img/marker-shadow.png", app.AttrOr("data-shadow-url", ""))
	assert.Equal(t, "/api/states", app.AttrOr("data-states-url", ""))
	assert.Equal(t, "/api/search", app.AttrOr("data-search-url", ""))
	assert.Equal(t, "/api/platforms", app.AttrOr("data-platforms-url", ""))
	assert.Equal(t, "Kyrkor", doc.Find("title").Text())

	var platforms []model.PlatformInfo
	require.NoError(t, json.Unmarshal([]byte(app.AttrOr("data-platforms", "")), &platforms))
	assert.Equal(t, []model.PlatformInfo{info}, platforms)

	assert.Equal(t, 1, doc.Find(`script[src="/static/app.js"]`).Length())
}

func TestMountMissingAnchor(t *testing.T) {
	_, err := Mount([]byte(host), "root", Page{})
	assert.ErrorIs(t, err, ErrMountPointMissing)

	_, err = Mount([]byte(`<html><body></body></html>`), "app", Page{})
	assert.ErrorIs(t, err, ErrMountPointMissing)
}

func TestMountUnusualAnchorIDs(t *testing.T) {
	for _, anchor := range []string{`kyrkor\karta`, "kartö", `say"hi"`, "a b"} {
		t.Run(anchor, func(t *testing.T) {
			src := `<html><body><div id="other"></div><div id="` + html.EscapeString(anchor) + `"></div></body></html>`
			out, err := Mount([]byte(src), anchor, Page{StatesURL: "/api/states"})
			require.NoError(t, err)

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
			require.NoError(t, err)
			mounted := doc.Find("[data-states-url]")
			require.Equal(t, 1, mounted.Length())
			assert.Equal(t, anchor, mounted.AttrOr("id", ""))
		})
	}

	_, err := Mount([]byte(`<div id="kart"></div>`), "kartö", Page{})
	assert.ErrorIs(t, err, ErrMountPointMissing)
}

func TestMountDuplicateAnchor(t *testing.T) {
	_, err := Mount([]byte(`<div id="app"></div><div id="app"></div>`), "app", Page{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMountPointMissing)
}

func TestCheckAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/marker-shadow.png" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	errs := CheckAssets(context.Background(), srv.Client(), DefaultIcons(srv.URL))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "marker-shadow.png")
	assert.Contains(t, errs[0].Error(), "404")

	assert.Empty(t, CheckAssets(context.Background(), nil, DefaultIcons("/local")))
}
