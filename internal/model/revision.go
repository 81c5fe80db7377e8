package model

import (
	"fmt"
	"slices"
	"strconv"
)

// Revision identifies a version of the dataset schema.
type Revision int

const (
	// RevisionBase is the original schema with instagram and facebook links.
	RevisionBase Revision = 1
	// RevisionAddress adds postal addresses and youtube links.
	RevisionAddress Revision = 2
	// RevisionRegions adds region, country and isFriend.
	RevisionRegions Revision = 3

	LatestRevision = RevisionRegions
)

var revisionPlatforms = map[Revision][]Platform{
	RevisionBase:    {Instagram, Facebook},
	RevisionAddress: {Instagram, Facebook, YouTube},
	RevisionRegions: {Instagram, Facebook, YouTube},
}

// ParseRevision parses a revision number. The empty string selects the latest.
func ParseRevision(s string) (Revision, error) {
	if s == "" {
		return LatestRevision, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing schema revision %q: %w", s, err)
	}
	r := Revision(n)
	if !r.Valid() {
		return 0, fmt.Errorf("unsupported schema revision %d", n)
	}
	return r, nil
}

// UnmarshalText lets configuration loaders decode a revision directly.
func (r *Revision) UnmarshalText(text []byte) error {
	parsed, err := ParseRevision(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Valid reports whether r is a known revision.
func (r Revision) Valid() bool {
	_, ok := revisionPlatforms[r]
	return ok
}

// Platforms returns the social platforms allowed in this revision.
func (r Revision) Platforms() []Platform {
	return slices.Clone(revisionPlatforms[r])
}

// Allows reports whether a social platform is valid in this revision.
func (r Revision) Allows(p Platform) bool {
	return slices.Contains(revisionPlatforms[r], p)
}

func (r Revision) String() string {
	return "r" + strconv.Itoa(int(r))
}
