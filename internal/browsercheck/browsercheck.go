// Package browsercheck renders the map page in headless Chrome and reports
// whether the markers came up.
package browsercheck

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const markerSelector = `.leaflet-marker-icon`

// brokenIconsJS counts marker images that failed to load.
const brokenIconsJS = `Array.from(document.querySelectorAll('img.leaflet-marker-icon'))
	.filter(function (img) { return !img.complete || img.naturalWidth === 0; }).length`

// Report summarises a rendered page.
type Report struct {
	Markers     int
	BrokenIcons int
}

// OK reports whether at least one marker rendered and none are broken.
func (r Report) OK() bool {
	return r.Markers > 0 && r.BrokenIcons == 0
}

// Options control the browser.
type Options struct {
	ChromePath string // empty uses the default lookup
	Settle     time.Duration
}

// CheckMarkers loads pageURL and counts the rendered Leaflet markers.
func CheckMarkers(ctx context.Context, pageURL string, opts Options) (Report, error) {
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	allocOpts = append(allocOpts,
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	settle := opts.Settle
	if settle == 0 {
		settle = time.Second
	}

	var report Report
	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(markerSelector, chromedp.ByQuery),
		// Let the remaining markers and icon images finish loading
		chromedp.Sleep(settle),
		chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%q).length`, markerSelector), &report.Markers),
		chromedp.Evaluate(brokenIconsJS, &report.BrokenIcons),
	)
	if err != nil {
		return Report{}, fmt.Errorf("rendering %s: %w", pageURL, err)
	}
	return report, nil
}
