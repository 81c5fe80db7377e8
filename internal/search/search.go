// Package search produces SearchResult projections over a dataset.
package search

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"church-map/internal/dataset"
	"church-map/internal/model"
)

// ErrEmptyQuery is returned when the query has no searchable characters.
var ErrEmptyQuery = errors.New("empty search query")

// Searcher matches a query against a dataset.
type Searcher interface {
	Search(ctx context.Context, d *dataset.Dataset, query string, limit int) ([]model.SearchResult, error)
}

// Matcher is a case and diacritic insensitive substring matcher.
//
// A query matching a state's id, name, region or country yields every church
// of that state with IsRegion set. A query matching a church's name, family,
// location or address yields that church alone. State matches come first;
// within each group results follow dataset order.
type Matcher struct{}

// NewMatcher returns the default Searcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

type resultKey struct {
	state, church string
}

func (m *Matcher) Search(ctx context.Context, d *dataset.Dataset, query string, limit int) ([]model.SearchResult, error) {
	q := Normalize(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	var (
		results []model.SearchResult
		seen    = make(map[resultKey]bool)
	)
	full := func() bool { return limit > 0 && len(results) >= limit }
	add := func(st model.State, c model.Church, region bool) {
		k := resultKey{st.ID, c.ID}
		if seen[k] || full() {
			return
		}
		seen[k] = true
		results = append(results, model.SearchResult{State: st, Church: c, IsRegion: region})
	}

	states := d.States()
	for _, st := range states {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if matchAny(q, st.ID, st.Name, st.RegionName(), st.CountryName()) {
			for _, c := range st.ChurchList() {
				add(st, c, true)
			}
		}
	}
	for _, st := range states {
		for _, c := range st.ChurchList() {
			if matchAny(q, c.Name, c.Family, c.Location, deref(c.Address)) {
				add(st, c, false)
			}
		}
	}
	return results, nil
}

func matchAny(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(Normalize(f), q) {
			return true
		}
	}
	return false
}

// Normalize folds case, strips diacritics and collapses whitespace so that
// "  Göteborg " and "goteborg" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
