package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// LatLng is a coordinate pair. On the wire it is a two element array
// [latitude, longitude] stored under the "latitude" key.
type LatLng struct {
	Lat float64
	Lng float64

	// set only when the decoded array did not have two components
	malformed bool
	arity     int
}

// Pair builds a coordinate pair.
func Pair(lat, lng float64) LatLng {
	return LatLng{Lat: lat, Lng: lng}
}

// UnmarshalJSON decodes a JSON array. A wrong arity is recorded instead of
// failing so that validation can report it against the owning record.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		*p = LatLng{malformed: true, arity: len(raw)}
		return nil
	}
	*p = LatLng{Lat: raw[0], Lng: raw[1]}
	return nil
}

// MarshalJSON encodes the pair as [lat, lng].
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

// Equal reports whether two pairs hold the same coordinates.
func (p LatLng) Equal(o LatLng) bool {
	return p.Lat == o.Lat && p.Lng == o.Lng && p.malformed == o.malformed && p.arity == o.arity
}

// Check returns an error if the pair had the wrong arity, or if either
// component is non-finite or out of range.
func (p LatLng) Check() error {
	if p.malformed {
		return fmt.Errorf("coordinates must have exactly 2 components, got %d", p.arity)
	}
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("coordinates must be finite, got [%v, %v]", p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v outside -90..90", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v outside -180..180", p.Lng)
	}
	return nil
}
