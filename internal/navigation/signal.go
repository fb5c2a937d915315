package navigation

import (
	"net/url"

	"github.com/iota-uz/labdesk/internal/toast"
)

const (
	successParam = "success"
	errorParam   = "error"
)

// Signal is a one-shot status message carried in a URL query.
type Signal struct {
	Kind    toast.Kind
	Message string
}

// ExtractSignals returns at most one success and one error signal from u,
// success first. Empty values carry no signal.
func ExtractSignals(u *url.URL) []Signal {
	if u == nil {
		return nil
	}
	q := u.Query()
	var out []Signal
	if msg := q.Get(successParam); msg != "" {
		out = append(out, Signal{Kind: toast.Success, Message: msg})
	}
	if msg := q.Get(errorParam); msg != "" {
		out = append(out, Signal{Kind: toast.Error, Message: msg})
	}
	return out
}

// StripSignals returns a copy of u without the status parameters. Path,
// fragment and every other parameter are kept.
func StripSignals(u *url.URL) *url.URL {
	cp := *u
	q := cp.Query()
	if !q.Has(successParam) && !q.Has(errorParam) {
		return &cp
	}
	q.Del(successParam)
	q.Del(errorParam)
	cp.RawQuery = q.Encode()
	return &cp
}

func hasSignalParams(u *url.URL) bool {
	q := u.Query()
	return q.Has(successParam) || q.Has(errorParam)
}
