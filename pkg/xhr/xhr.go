// Package xhr marks and detects programmatic (non-navigation) requests.
package xhr

import (
	"net/http"
	"strings"
)

const (
	HeaderName  = "X-Requested-With"
	HeaderValue = "XMLHttpRequest"
)

// Mark flags req as issued by script rather than a full page navigation.
func Mark(req *http.Request) {
	req.Header.Set(HeaderName, HeaderValue)
}

func IsProgrammatic(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(HeaderName), HeaderValue)
}
