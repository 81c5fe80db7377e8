package dataset

import (
	"encoding/json"
	"fmt"
	"slices"

	"church-map/internal/model"
)

// field describes one key of a record in the dataset document.
type field struct {
	key      string
	required bool
	since    model.Revision
}

var stateSchema = []field{
	{key: "id", required: true, since: model.RevisionBase},
	{key: "name", required: true, since: model.RevisionBase},
	{key: "latitude", required: true, since: model.RevisionBase},
	{key: "multiChurchState", since: model.RevisionBase},
	{key: "churches", since: model.RevisionBase},
	{key: "family", since: model.RevisionBase},
	{key: "location", since: model.RevisionBase},
	{key: "img", since: model.RevisionBase},
	{key: "locationUrl", since: model.RevisionBase},
	{key: "socials", since: model.RevisionBase},
	{key: "address", since: model.RevisionAddress},
	{key: "region", since: model.RevisionRegions},
	{key: "country", since: model.RevisionRegions},
	{key: "isFriend", since: model.RevisionRegions},
}

var churchSchema = []field{
	{key: "id", required: true, since: model.RevisionBase},
	{key: "name", required: true, since: model.RevisionBase},
	{key: "family", required: true, since: model.RevisionBase},
	{key: "location", required: true, since: model.RevisionBase},
	{key: "img", required: true, since: model.RevisionBase},
	{key: "latitude", required: true, since: model.RevisionBase},
	{key: "locationUrl", since: model.RevisionBase},
	{key: "socials", since: model.RevisionBase},
	{key: "address", since: model.RevisionAddress},
}

// checkKeys compares the keys present in a raw object against a schema.
// Missing required keys are errors. Keys that are unknown, or newer than
// the revision in force, are accepted and reported as warnings.
func checkKeys(obj map[string]json.RawMessage, schema []field, rev model.Revision, prefix string) (missing []string, warnings []string) {
	known := make(map[string]field, len(schema))
	for _, f := range schema {
		known[f.key] = f
		if f.required {
			if _, ok := obj[f.key]; !ok {
				missing = append(missing, prefix+f.key)
			}
		}
	}
	for key := range obj {
		f, ok := known[key]
		switch {
		case !ok:
			warnings = append(warnings, fmt.Sprintf("%s%s: unknown field ignored", prefix, key))
		case f.since > rev:
			warnings = append(warnings, fmt.Sprintf("%s%s: field introduced in %s accepted under %s", prefix, key, f.since, rev))
		}
	}
	slices.Sort(warnings)
	return missing, warnings
}
