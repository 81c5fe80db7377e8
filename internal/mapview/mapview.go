// Package mapview prepares the host document of the map page.
//
// The Leaflet marker icon paths and the API endpoints are passed to the page
// as data attributes on the mount element instead of being patched into the
// library's global defaults.
package mapview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"church-map/internal/model"
)

// DefaultIconBase serves the stock Leaflet marker images.
const DefaultIconBase = "https://unpkg.com/leaflet@1.9.4/dist/images"

// ErrMountPointMissing means the host document has no element with the
// configured anchor id.
var ErrMountPointMissing = errors.New("mount point missing from host document")

// IconConfig holds the three images of the default map marker.
type IconConfig struct {
	IconURL       string `json:"iconUrl"`
	IconRetinaURL string `json:"iconRetinaUrl"`
	ShadowURL     string `json:"shadowUrl"`
}

// DefaultIcons builds the marker configuration for images under base.
func DefaultIcons(base string) IconConfig {
	if base == "" {
		base = DefaultIconBase
	}
	base = strings.TrimSuffix(base, "/")
	return IconConfig{
		IconURL:       base + "/marker-icon.png",
		IconRetinaURL: base + "/marker-icon-2x.png",
		ShadowURL:     base + "/marker-shadow.png",
	}
}

// URLs returns the icon URLs in a fixed order.
func (c IconConfig) URLs() []string {
	return []string{c.IconURL, c.IconRetinaURL, c.ShadowURL}
}

// Page is everything the map page needs from the server.
type Page struct {
	Title        string
	Icons        IconConfig
	StatesURL    string
	SearchURL    string
	PlatformsURL string
	Platforms    []model.PlatformInfo
}

// Mount attaches the page configuration to the element with id anchor in the
// host document and returns the rendered document.
func Mount(src []byte, anchor string, page Page) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing host document: %w", err)
	}

	sel := doc.Find("[id]").FilterFunction(func(_ int, el *goquery.Selection) bool {
		id, _ := el.Attr("id")
		return id == anchor
	})
	switch sel.Length() {
	case 0:
		return nil, fmt.Errorf("%w: no element with id %q", ErrMountPointMissing, anchor)
	case 1:
	default:
		return nil, fmt.Errorf("host document has %d elements with id %q", sel.Length(), anchor)
	}

	platforms, err := json.Marshal(page.Platforms)
	if err != nil {
		return nil, fmt.Errorf("encoding platforms: %w", err)
	}
	sel.SetAttr("data-icon-url", page.Icons.IconURL)
	sel.SetAttr("data-icon-retina-url", page.Icons.IconRetinaURL)
	sel.SetAttr("data-shadow-url", page.Icons.ShadowURL)
	sel.SetAttr("data-states-url", page.StatesURL)
	sel.SetAttr("data-search-url", page.SearchURL)
	sel.SetAttr("data-platforms-url", page.PlatformsURL)
	sel.SetAttr("data-platforms", string(platforms))

	if page.Title != "" {
		doc.Find("title").SetText(page.Title)
	}

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("rendering host document: %w", err)
	}
	return []byte(out), nil
}

// CheckAssets probes every absolute icon URL with a HEAD request. Relative
// URLs are skipped. A missing icon only degrades the map, so callers are
// expected to log the returned errors rather than abort.
func CheckAssets(ctx context.Context, client *http.Client, icons IconConfig) []error {
	if client == nil {
		client = http.DefaultClient
	}
	var errs []error
	for _, raw := range icons.URLs() {
		u, err := url.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("icon %q: %w", raw, err))
			continue
		}
		if !u.IsAbs() {
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("icon %q: %w", raw, err))
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			errs = append(errs, fmt.Errorf("icon %q: %w", raw, err))
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			errs = append(errs, fmt.Errorf("icon %q: status %d", raw, resp.StatusCode))
		}
	}
	return errs
}
