package browser

import "github.com/iota-uz/labdesk/pkg/serrors"

var (
	ErrFormNotFound  = serrors.NewError("BROWSER_FORM_NOT_FOUND", "form not found", "")
	ErrFieldNotFound = serrors.NewError("BROWSER_FIELD_NOT_FOUND", "form field not found", "")
)
