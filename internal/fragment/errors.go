package fragment

import "github.com/iota-uz/labdesk/pkg/serrors"

var (
	ErrContainerMissing = serrors.NewError("FRAGMENT_CONTAINER_MISSING", "fragment container not found", "")
	ErrFragmentStatus   = serrors.NewError("FRAGMENT_BAD_STATUS", "fragment endpoint returned a non-2xx status", "")
	ErrInvalidMonth     = serrors.NewError("FRAGMENT_INVALID_MONTH", "month must be between 1 and 12", "")
)
