package dom

import "sync/atomic"

// SubmitEvent is dispatched when a form is submitted. Submitter is the control
// that triggered the submission, if known.
type SubmitEvent struct {
	Target    *Element
	Submitter *Element

	prevented atomic.Bool
}

func (e *SubmitEvent) PreventDefault() {
	e.prevented.Store(true)
}

func (e *SubmitEvent) DefaultPrevented() bool {
	return e.prevented.Load()
}

// ClickEvent is dispatched for a click on Target.
type ClickEvent struct {
	Target *Element

	prevented atomic.Bool
}

func (e *ClickEvent) PreventDefault() {
	e.prevented.Store(true)
}

func (e *ClickEvent) DefaultPrevented() bool {
	return e.prevented.Load()
}

// LoadEvent is dispatched after a document finished loading into a window.
type LoadEvent struct {
	Window *Window
}
