package model

import "slices"

// Church represents a single mapped church location.
type Church struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Family      string   `json:"family"`
	Location    string   `json:"location"`
	Img         string   `json:"img"`
	Latitude    LatLng   `json:"latitude"`
	Address     *string  `json:"address,omitempty"`
	LocationURL *string  `json:"locationUrl,omitempty"`
	Socials     []Social `json:"socials,omitempty"`
}

// State is a top-level region grouping. It either describes a single church
// inline (Family, Location, Img and friends) or holds a list of Churches.
type State struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Latitude         LatLng  `json:"latitude"`
	Region           *string `json:"region,omitempty"`
	Country          *string `json:"country,omitempty"`
	IsFriend         *bool   `json:"isFriend,omitempty"`
	MultiChurchState *bool   `json:"multiChurchState,omitempty"`

	Churches []Church `json:"churches,omitempty"`

	Family      *string  `json:"family,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Img         *string  `json:"img,omitempty"`
	LocationURL *string  `json:"locationUrl,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Socials     []Social `json:"socials,omitempty"`
}

// IsEmbedded reports whether any of the inline single-church fields are set.
func (s State) IsEmbedded() bool {
	return s.Family != nil || s.Location != nil || s.Img != nil ||
		s.LocationURL != nil || s.Address != nil || len(s.Socials) > 0
}

// HasChurches reports whether the state holds at least one church child.
func (s State) HasChurches() bool {
	return len(s.Churches) > 0
}

// AsChurch projects the inline fields of a single-church state to a Church.
// The church takes the state's identifier, name and coordinates.
func (s State) AsChurch() Church {
	return Church{
		ID:          s.ID,
		Name:        s.Name,
		Family:      deref(s.Family),
		Location:    deref(s.Location),
		Img:         deref(s.Img),
		Latitude:    s.Latitude,
		Address:     s.Address,
		LocationURL: s.LocationURL,
		Socials:     s.Socials,
	}
}

// ChurchList returns the churches of the state. Single-church states yield
// their projected church.
func (s State) ChurchList() []Church {
	if s.HasChurches() {
		return s.Churches
	}
	if s.IsEmbedded() {
		return []Church{s.AsChurch()}
	}
	return nil
}

// Clone returns a copy of the church that shares no memory with c.
func (c Church) Clone() Church {
	c.Address = clonePtr(c.Address)
	c.LocationURL = clonePtr(c.LocationURL)
	c.Socials = slices.Clone(c.Socials)
	return c
}

// Clone returns a copy of the state, its churches and socials included.
func (s State) Clone() State {
	s.Region = clonePtr(s.Region)
	s.Country = clonePtr(s.Country)
	s.IsFriend = clonePtr(s.IsFriend)
	s.MultiChurchState = clonePtr(s.MultiChurchState)
	s.Family = clonePtr(s.Family)
	s.Location = clonePtr(s.Location)
	s.Img = clonePtr(s.Img)
	s.LocationURL = clonePtr(s.LocationURL)
	s.Address = clonePtr(s.Address)
	s.Socials = slices.Clone(s.Socials)
	if s.Churches != nil {
		churches := make([]Church, len(s.Churches))
		for i, c := range s.Churches {
			churches[i] = c.Clone()
		}
		s.Churches = churches
	}
	return s
}

// RegionName returns the region, or the empty string when it is unset.
func (s State) RegionName() string {
	return deref(s.Region)
}

// CountryName returns the country, or the empty string when it is unset.
func (s State) CountryName() string {
	return deref(s.Country)
}

// Friend reports the isFriend flag, defaulting to false.
func (s State) Friend() bool {
	return s.IsFriend != nil && *s.IsFriend
}

// SearchResult pairs a matched state with the matched church.
// IsRegion is true when the match was at state granularity.
type SearchResult struct {
	State    State  `json:"state"`
	Church   Church `json:"church"`
	IsRegion bool   `json:"isRegion"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
