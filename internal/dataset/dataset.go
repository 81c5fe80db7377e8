// Package dataset loads, validates and holds the church location dataset.
//
// A Dataset is an immutable snapshot: it is built once from a JSON document
// and never mutated afterwards. Reloading produces a new Dataset.
package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"church-map/internal/model"
)

// Dataset is a validated, read-only set of states.
type Dataset struct {
	states   []model.State
	index    map[string]int
	revision model.Revision
	version  string
	loadedAt time.Time
	warnings []string
}

// Load reads a JSON array of states from r and validates it.
func Load(r io.Reader, rev model.Revision) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return Parse(data, rev)
}

// Parse decodes and validates a dataset document.
func Parse(data []byte, rev model.Revision) (*Dataset, error) {
	if !rev.Valid() {
		return nil, fmt.Errorf("unsupported schema revision %d", rev)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w: top level must be an array of states: %w", ErrMalformed, err)
	}
	if raws == nil {
		return nil, fmt.Errorf("decoding dataset: %w: top level must be an array of states, got null", ErrMalformed)
	}

	var (
		states   = make([]model.State, 0, len(raws))
		errs     []error
		warnings []string
	)
	for i, raw := range raws {
		st, warns, err := decodeState(i, raw, rev)
		warnings = append(warnings, warns...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		states = append(states, st)
	}
	// Records that failed to decode are skipped; the rest are still
	// validated so every problem is reported in one pass.
	if err := Validate(states, rev); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	d := build(states, rev)
	d.warnings = warnings
	return d, nil
}

// New validates already decoded states and wraps them in a Dataset.
func New(states []model.State, rev model.Revision) (*Dataset, error) {
	if !rev.Valid() {
		return nil, fmt.Errorf("unsupported schema revision %d", rev)
	}
	if err := Validate(states, rev); err != nil {
		return nil, err
	}
	return build(cloneStates(states), rev), nil
}

func build(states []model.State, rev model.Revision) *Dataset {
	d := &Dataset{
		states:   states,
		index:    make(map[string]int, len(states)),
		revision: rev,
		loadedAt: time.Now(),
	}
	for i, st := range states {
		d.index[st.ID] = i
	}
	data, _ := json.Marshal(states)
	sum := sha256.Sum256(data)
	d.version = hex.EncodeToString(sum[:8])
	return d
}

func decodeState(index int, raw json.RawMessage, rev model.Revision) (model.State, []string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return model.State{}, nil, &ValidationError{Record: fmt.Sprintf("#%d", index),
			Err: fmt.Errorf("%w: record is not an object", ErrMalformed)}
	}

	var id string
	_ = json.Unmarshal(obj["id"], &id)
	record := recordName(id, index)

	var errs []error
	missing, warnings := checkKeys(obj, stateSchema, rev, "")
	for _, key := range missing {
		// id and name are re-checked on the typed record; only report
		// latitude here since a missing pair decodes as a valid [0, 0].
		if key == "latitude" {
			errs = append(errs, &ValidationError{Record: record, Field: key, Err: ErrMissingField})
		}
	}

	if rawChurches, ok := obj["churches"]; ok {
		var churches []map[string]json.RawMessage
		if err := json.Unmarshal(rawChurches, &churches); err == nil {
			for i, c := range churches {
				prefix := fmt.Sprintf("churches[%d].", i)
				missing, warns := checkKeys(c, churchSchema, rev, prefix)
				warnings = append(warnings, warns...)
				for _, key := range missing {
					if key == prefix+"latitude" {
						errs = append(errs, &ValidationError{Record: record, Field: key, Err: ErrMissingField})
					}
				}
			}
		}
	}
	for i, w := range warnings {
		warnings[i] = fmt.Sprintf("state %q: %s", record, w)
	}

	var st model.State
	if err := json.Unmarshal(raw, &st); err != nil {
		errs = append(errs, decodeErrors(record, obj["churches"], err)...)
	}
	if len(errs) > 0 {
		return model.State{}, warnings, errors.Join(errs...)
	}
	return st, warnings, nil
}

// decodeErrors turns a failed state decode into validation errors. The
// decoder reports nested paths without slice indices, so a type error inside
// churches is located by decoding each church on its own.
func decodeErrors(record string, rawChurches json.RawMessage, err error) []error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "churches.") {
		var churches []json.RawMessage
		if json.Unmarshal(rawChurches, &churches) == nil {
			var errs []error
			for i, rc := range churches {
				var c model.Church
				if cerr := json.Unmarshal(rc, &c); cerr != nil {
					errs = append(errs, malformed(record, fmt.Sprintf("churches[%d]", i), cerr))
				}
			}
			if len(errs) > 0 {
				return errs
			}
		}
	}
	return []error{malformed(record, "", err)}
}

func malformed(record, prefix string, err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return &ValidationError{Record: record, Field: prefix, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	field := typeErr.Field
	if prefix != "" {
		field = strings.TrimSuffix(prefix+"."+field, ".")
	}
	return &ValidationError{Record: record, Field: field,
		Err: fmt.Errorf("%w: expected %s, got %s", ErrMalformed, typeErr.Type, typeErr.Value)}
}

func cloneStates(states []model.State) []model.State {
	if states == nil {
		return nil
	}
	out := make([]model.State, len(states))
	for i, st := range states {
		out[i] = st.Clone()
	}
	return out
}

// States returns a deep copy of the states in document order.
func (d *Dataset) States() []model.State {
	return cloneStates(d.states)
}

// State looks up a state by identifier.
func (d *Dataset) State(id string) (model.State, bool) {
	i, ok := d.index[id]
	if !ok {
		return model.State{}, false
	}
	return d.states[i].Clone(), true
}

// Church looks up a church inside a state. For single-church states the
// church identifier is the state identifier.
func (d *Dataset) Church(stateID, churchID string) (model.Church, bool) {
	i, ok := d.index[stateID]
	if !ok {
		return model.Church{}, false
	}
	for _, c := range d.states[i].ChurchList() {
		if c.ID == churchID {
			return c.Clone(), true
		}
	}
	return model.Church{}, false
}

// Len returns the number of states.
func (d *Dataset) Len() int {
	return len(d.states)
}

// ChurchCount returns the number of churches across all states.
func (d *Dataset) ChurchCount() int {
	n := 0
	for _, st := range d.states {
		n += len(st.ChurchList())
	}
	return n
}

// Revision returns the schema revision the dataset was validated against.
func (d *Dataset) Revision() model.Revision {
	return d.revision
}

// Version is a short content hash of the dataset.
func (d *Dataset) Version() string {
	return d.version
}

// LoadedAt returns when the snapshot was built.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Warnings lists tolerated schema deviations found while parsing, such as
// unknown fields.
func (d *Dataset) Warnings() []string {
	return slices.Clone(d.warnings)
}

// MarshalJSON encodes the dataset back into its document form.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.states)
}

// Encode writes the dataset as indented JSON.
func (d *Dataset) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.states); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RegionGroup is a set of states sharing a region.
type RegionGroup struct {
	Region string        `json:"region"`
	States []model.State `json:"states"`
}

// Regions groups states by region in order of first appearance. States
// without a region are grouped under the empty name.
func (d *Dataset) Regions() []RegionGroup {
	var groups []RegionGroup
	pos := make(map[string]int)
	for _, st := range d.states {
		name := st.RegionName()
		i, ok := pos[name]
		if !ok {
			i = len(groups)
			pos[name] = i
			groups = append(groups, RegionGroup{Region: name})
		}
		groups[i].States = append(groups[i].States, st.Clone())
	}
	return groups
}
