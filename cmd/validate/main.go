// Command validate checks a dataset document against the schema and prints
// every violation.
//
// Usage: go run ./cmd/validate [-revision 3] data/locations.json
package main

import (
	"flag"
	"fmt"
	"os"

	"church-map/internal/dataset"
	"church-map/internal/model"
)

func main() {
	revision := flag.String("revision", "", "schema revision (default: latest)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: validate [-revision N] <locations.json>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	rev, err := model.ParseRevision(*revision)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	d, err := dataset.Load(f, rev)
	if err != nil {
		ves := dataset.ValidationErrors(err)
		if len(ves) == 0 {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, ve := range ves {
			fmt.Fprintln(os.Stderr, ve)
		}
		fmt.Fprintf(os.Stderr, "%d problem(s) found\n", len(ves))
		os.Exit(1)
	}

	for _, w := range d.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Printf("%s: %d states, %d churches, schema %s, version %s\n",
		flag.Arg(0), d.Len(), d.ChurchCount(), d.Revision(), d.Version())
}
