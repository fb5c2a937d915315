package navigation

import (
	"net/url"
	"time"
)

// Result classifies how one submit event was handled.
type Result string

const (
	// ResultIgnored: not a form, or opted out; the browser navigates natively.
	ResultIgnored        Result = "ignored"
	ResultRedirected     Result = "redirected"
	ResultError          Result = "error"
	ResultPlain          Result = "plain"
	ResultNetworkFailure Result = "network_failure"
)

type Outcome struct {
	Result   Result
	Method   string
	Action   *url.URL
	FinalURL *url.URL
	Status   int
	Signals  []Signal
	Swapped  bool
	Reloaded bool
	// ActivePanel is the panel active after a swap.
	ActivePanel string
	Err         error
	Duration    time.Duration
}
