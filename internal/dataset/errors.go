package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteState = errors.New("incomplete state record")
	ErrAmbiguousState  = errors.New("ambiguous state record")
	ErrMissingField    = errors.New("missing required field")
	ErrMalformed       = errors.New("malformed value")
	ErrCoordinates     = errors.New("invalid coordinates")
	ErrUnknownPlatform = errors.New("unknown social platform")
	ErrDuplicateID     = errors.New("duplicate identifier")
	ErrInvalidURL      = errors.New("invalid url")
)

// ValidationError reports a schema violation in one record of the dataset.
type ValidationError struct {
	// Record is the state identifier, or "#<index>" when the state has none.
	Record string
	// Field is the path of the offending field inside the record, e.g.
	// "churches[0].latitude". Empty for record-level errors.
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("state %q: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("state %q: %s: %v", e.Record, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors extracts every *ValidationError from a joined error.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var walk func(error)
	walk = func(err error) {
		if ve, ok := err.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
