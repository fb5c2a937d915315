package panels

import "github.com/iota-uz/labdesk/pkg/serrors"

var (
	ErrUnknownPanel  = serrors.NewError("PANELS_UNKNOWN_PANEL", "panel not found in document", "")
	ErrUnknownModal  = serrors.NewError("PANELS_UNKNOWN_MODAL", "modal not found in document", "")
	ErrUnknownLayout = serrors.NewError("PANELS_UNKNOWN_LAYOUT", "layout not defined", "")
)
