package serrors

// Base is a coded error usable as a sentinel with errors.Is.
type Base struct {
	Code      string
	Message   string
	LocaleKey string
}

func NewError(code, message, localeKey string) *Base {
	return &Base{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (b *Base) Error() string {
	return b.Message
}

// Localize returns the locale key if set, falling back to the message.
func (b *Base) Localize() string {
	if b.LocaleKey != "" {
		return b.LocaleKey
	}
	return b.Message
}
