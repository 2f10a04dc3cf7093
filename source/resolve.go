package source

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/constant"
	"github.com/vidctl/vidctl/util"
	"golang.org/x/net/http/httpguts"
)

// maxSuggestionDistance bounds how far a mistyped hint may be from a known one to be suggested.
const maxSuggestionDistance = 2

// ismPath matches Smooth Streaming manifest paths such as "/a/video.ism/Manifest(format=m3u8-aapl)".
var ismPath = regexp.MustCompile(`(?i)^(?:.*\.)?isml?(?:/(?:manifest(?P<formats>.*))?)?$`)

// Request is the client input to Resolve.
type Request struct {
	URI     string
	Hint    mo.Option[string]
	Headers map[string]string

	// UserAgent is applied when Headers carries none. Defaults to constant.UserAgent.
	UserAgent string
}

// Resolve maps a URI and optional format hint to a Descriptor.
//
// A present hint decides the type on its own, with no sniffing. Without a hint the
// type is inferred from the URI. Any failure is reported before an engine exists.
func Resolve(req Request) (Descriptor, error) {
	uri := strings.TrimSpace(req.URI)
	if uri == "" {
		return Descriptor{}, ErrEmptyURI
	}

	var t Type
	if hint, ok := req.Hint.Get(); ok {
		t = TypeOfHint(hint)
	} else {
		t = Infer(uri)
	}

	if t == TypeUnknown {
		return Descriptor{}, &UnsupportedError{
			URI:        uri,
			Hint:       req.Hint,
			Suggestion: req.Hint.FlatMap(suggestHint),
		}
	}

	headers, err := normalizeHeaders(req.Headers, req.UserAgent)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{URI: uri, Type: t, Headers: headers}, nil
}

// Infer sniffs the source type from a URI's scheme and path. Unparseable URIs
// and RTSP streams yield TypeUnknown; anything without a streaming manifest
// extension is progressive media.
func Infer(uri string) Type {
	u, err := url.Parse(uri)
	if err != nil {
		return TypeUnknown
	}

	if strings.EqualFold(u.Scheme, "rtsp") {
		return TypeUnknown
	}

	segment := lastPathSegment(u.Path)
	if segment == "" {
		return TypeOther
	}

	if ext := path.Ext(segment); ext != "" {
		if t := typeOfExtension(ext[1:]); t != TypeOther {
			return t
		}
	}

	if ismPath.MatchString(u.Path) {
		formats := strings.ToLower(util.ReGroups(ismPath, u.Path)["formats"])
		switch {
		case strings.Contains(formats, "format=mpd-time-csf"):
			return TypeDASH
		case strings.Contains(formats, "format=m3u8-aapl"):
			return TypeHLS
		}
		return TypeSmoothStreaming
	}

	return TypeOther
}

func typeOfExtension(ext string) Type {
	switch strings.ToLower(ext) {
	case "mpd":
		return TypeDASH
	case "m3u8":
		return TypeHLS
	case "ism", "isml":
		return TypeSmoothStreaming
	default:
		return TypeOther
	}
}

// lastPathSegment returns the last non-empty segment of p.
func lastPathSegment(p string) string {
	segments := lo.Compact(strings.Split(p, "/"))
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

func suggestHint(hint string) mo.Option[string] {
	hint = strings.ToLower(strings.TrimSpace(hint))
	closest := lo.MinBy(Hints(), func(a, b string) bool {
		return levenshtein.Distance(hint, a) < levenshtein.Distance(hint, b)
	})

	if levenshtein.Distance(hint, closest) > maxSuggestionDistance {
		return mo.None[string]()
	}
	return mo.Some(closest)
}

// normalizeHeaders validates and copies headers under their canonical names,
// adding a User-Agent when absent.
func normalizeHeaders(in map[string]string, userAgent string) (map[string]string, error) {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("%w: name %q", ErrInvalidHeader, k)
		}
		if !httpguts.ValidHeaderFieldValue(v) {
			return nil, fmt.Errorf("%w: value of %q", ErrInvalidHeader, k)
		}

		name := http.CanonicalHeaderKey(k)
		if _, ok := out[name]; ok {
			return nil, fmt.Errorf("%w: %q given more than once", ErrInvalidHeader, name)
		}
		out[name] = v
	}

	if _, ok := out[UserAgentHeader]; !ok {
		if userAgent == "" {
			userAgent = constant.UserAgent
		}
		out[UserAgentHeader] = userAgent
	}

	return out, nil
}
