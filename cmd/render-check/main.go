// Renders the map page in headless Chrome and checks that markers appear.
//
// Usage: CHROME_PATH=/path/to/chromium go run ./cmd/render-check -url http://localhost:8080/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"church-map/internal/browsercheck"
	"church-map/internal/config"
)

func main() {
	url := flag.String("url", "http://localhost:8080/", "map page to render")
	timeout := flag.Duration("timeout", 60*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := browsercheck.CheckMarkers(ctx, *url, browsercheck.Options{
		ChromePath: cfg.ChromePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("markers: %d, broken icons: %d\n", report.Markers, report.BrokenIcons)
	if !report.OK() {
		os.Exit(1)
	}
}
