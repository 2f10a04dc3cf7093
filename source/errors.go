package source

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
)

var (
	ErrUnsupportedSourceType = errors.New("unsupported source type")
	ErrInvalidHeader         = errors.New("invalid header")
	ErrEmptyURI              = errors.New("empty uri")
)

// UnsupportedError describes a URI/hint pair that resolves to no known type.
type UnsupportedError struct {
	URI  string
	Hint mo.Option[string]
	// Suggestion is the closest recognized hint when Hint was a near miss.
	Suggestion mo.Option[string]
}

func (e *UnsupportedError) Error() string {
	hint, ok := e.Hint.Get()
	if !ok {
		return fmt.Sprintf("%s: cannot infer type of %q", ErrUnsupportedSourceType, e.URI)
	}

	if suggestion, ok := e.Suggestion.Get(); ok {
		return fmt.Sprintf("%s: unknown format hint %q, did you mean %q?", ErrUnsupportedSourceType, hint, suggestion)
	}
	return fmt.Sprintf("%s: unknown format hint %q", ErrUnsupportedSourceType, hint)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupportedSourceType
}
