// Package source resolves a media URI and an optional format hint into the
// descriptor a playback engine is constructed with.
package source

import "strings"

// Type is the container/streaming protocol family an engine must use for a URI.
type Type int

const (
	TypeUnknown Type = iota
	TypeSmoothStreaming
	TypeDASH
	TypeHLS
	// TypeOther is progressive media (mp4, webm, mkv, mp3...).
	TypeOther
)

// String returns the lowercase identifier of the type.
func (t Type) String() string {
	switch t {
	case TypeSmoothStreaming:
		return "smooth-streaming"
	case TypeDASH:
		return "dash"
	case TypeHLS:
		return "hls"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// MarshalText makes the type render as its name in JSON output.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a name produced by MarshalText. Unknown names yield TypeUnknown.
func (t *Type) UnmarshalText(text []byte) error {
	*t = TypeUnknown
	for _, candidate := range []Type{TypeSmoothStreaming, TypeDASH, TypeHLS, TypeOther} {
		if candidate.String() == string(text) {
			*t = candidate
			break
		}
	}
	return nil
}

// Format hints accepted from clients.
const (
	HintSmoothStreaming = "ss"
	HintDASH            = "dash"
	HintHLS             = "hls"
	HintOther           = "other"
)

var hintTypes = map[string]Type{
	HintSmoothStreaming: TypeSmoothStreaming,
	HintDASH:            TypeDASH,
	HintHLS:             TypeHLS,
	HintOther:           TypeOther,
}

// Hints returns the recognized format hint values in a stable order.
func Hints() []string {
	return []string{HintSmoothStreaming, HintDASH, HintHLS, HintOther}
}

// TypeOfHint maps a format hint to its type. Unrecognized hints yield TypeUnknown.
func TypeOfHint(hint string) Type {
	if t, ok := hintTypes[strings.TrimSpace(hint)]; ok {
		return t
	}
	return TypeUnknown
}
