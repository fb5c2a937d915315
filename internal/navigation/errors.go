package navigation

import "github.com/iota-uz/labdesk/pkg/serrors"

var (
	// ErrNetworkFailure means the request never completed.
	ErrNetworkFailure = serrors.NewError("NAVIGATION_NETWORK_FAILURE", "network request failed", "")
	// ErrServerError means the server answered outside the 2xx range.
	ErrServerError = serrors.NewError("NAVIGATION_SERVER_ERROR", "server error", "")
	// ErrStructuralMismatch means the response or the live page lacks the content region.
	ErrStructuralMismatch = serrors.NewError("NAVIGATION_STRUCTURAL_MISMATCH", "content region not found", "")
)
