package source

import (
	"net/http"

	"github.com/samber/lo"
)

// UserAgentHeader is the header the engine's HTTP data source identifies itself with.
const UserAgentHeader = "User-Agent"

// Descriptor is the resolved, immutable description of a session's media.
// Built once by Resolve; Headers keys are canonical and must not be mutated.
type Descriptor struct {
	URI     string            `json:"uri"`
	Type    Type              `json:"type"`
	Headers map[string]string `json:"headers"`
}

// UserAgent returns the User-Agent the engine should present.
func (d Descriptor) UserAgent() string {
	return d.Headers[UserAgentHeader]
}

// HTTPHeader returns the headers as an http.Header, for engines that speak net/http.
func (d Descriptor) HTTPHeader() http.Header {
	h := make(http.Header, len(d.Headers))
	for _, k := range lo.Keys(d.Headers) {
		h.Set(k, d.Headers[k])
	}
	return h
}
