package dataset

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"church-map/internal/model"
)

// Validate checks decoded states against the schema revision. All
// violations are collected; the result is nil or a join of *ValidationError.
func Validate(states []model.State, rev model.Revision) error {
	var errs []error
	seen := make(map[string]int, len(states))
	for i, st := range states {
		record := recordName(st.ID, i)
		if st.ID != "" {
			if j, dup := seen[st.ID]; dup {
				errs = append(errs, &ValidationError{Record: record, Field: "id",
					Err: fmt.Errorf("%w: also used by record #%d", ErrDuplicateID, j)})
			} else {
				seen[st.ID] = i
			}
		}
		errs = append(errs, validateState(record, st, rev)...)
	}
	return errors.Join(errs...)
}

func recordName(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}

func validateState(record string, st model.State, rev model.Revision) []error {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &ValidationError{Record: record, Field: field, Err: err})
	}

	if st.ID == "" {
		fail("id", ErrMissingField)
	}
	if st.Name == "" {
		fail("name", ErrMissingField)
	}
	if err := st.Latitude.Check(); err != nil {
		fail("latitude", fmt.Errorf("%w: %v", ErrCoordinates, err))
	}

	embedded, multi := st.IsEmbedded(), st.HasChurches()
	switch {
	case embedded && multi:
		fail("", fmt.Errorf("%w: both churches and single-church fields are present", ErrAmbiguousState))
	case !embedded && !multi:
		fail("", fmt.Errorf("%w: neither churches nor single-church fields are present", ErrIncompleteState))
	case embedded:
		if isBlank(st.Family) {
			fail("family", ErrMissingField)
		}
		if isBlank(st.Location) {
			fail("location", ErrMissingField)
		}
		if isBlank(st.Img) {
			fail("img", ErrMissingField)
		}
		if st.MultiChurchState != nil && *st.MultiChurchState {
			fail("multiChurchState", fmt.Errorf("%w: flag set on a single-church state", ErrAmbiguousState))
		}
		if st.LocationURL != nil {
			if err := checkURL(*st.LocationURL); err != nil {
				fail("locationUrl", err)
			}
		}
		for i, s := range st.Socials {
			for _, err := range validateSocial(s, rev) {
				fail(fmt.Sprintf("socials[%d].%s", i, err.field), err.err)
			}
		}
	}

	churchIDs := make(map[string]int, len(st.Churches))
	for i, c := range st.Churches {
		prefix := fmt.Sprintf("churches[%d]", i)
		if c.ID != "" {
			if j, dup := churchIDs[c.ID]; dup {
				fail(prefix+".id", fmt.Errorf("%w: also used by churches[%d]", ErrDuplicateID, j))
			} else {
				churchIDs[c.ID] = i
			}
		}
		for _, err := range validateChurch(c, rev) {
			fail(prefix+"."+err.field, err.err)
		}
	}
	return errs
}

type fieldError struct {
	field string
	err   error
}

func validateChurch(c model.Church, rev model.Revision) []fieldError {
	var errs []fieldError
	required := []struct {
		name, value string
	}{
		{"id", c.ID}, {"name", c.Name}, {"family", c.Family}, {"location", c.Location}, {"img", c.Img},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fieldError{r.name, ErrMissingField})
		}
	}
	if err := c.Latitude.Check(); err != nil {
		errs = append(errs, fieldError{"latitude", fmt.Errorf("%w: %v", ErrCoordinates, err)})
	}
	if c.LocationURL != nil {
		if err := checkURL(*c.LocationURL); err != nil {
			errs = append(errs, fieldError{"locationUrl", err})
		}
	}
	for i, s := range c.Socials {
		for _, err := range validateSocial(s, rev) {
			errs = append(errs, fieldError{fmt.Sprintf("socials[%d].%s", i, err.field), err.err})
		}
	}
	return errs
}

func validateSocial(s model.Social, rev model.Revision) []fieldError {
	var errs []fieldError
	if !rev.Allows(s.Name) {
		errs = append(errs, fieldError{"name", fmt.Errorf("%w: %q is not allowed in schema %s", ErrUnknownPlatform, s.Name, rev)})
	}
	if err := checkURL(s.SocialURL); err != nil {
		errs = append(errs, fieldError{"socialUrl", err})
	}
	return errs
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidURL, raw)
	}
	return nil
}

func isBlank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
