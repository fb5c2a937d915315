// Package panels keeps the mutually exclusive content tabs and the modal
// dialogs of a dashboard page.
package panels

import (
	"fmt"

	"github.com/iota-uz/labdesk/pkg/dom"
)

const (
	panelClass       = "tab-content"
	selectorClass    = "tab"
	activeClass      = "active"
	selectorIDPrefix = "btn-"
)

// State is the part of the page the navigation layer carries across a swap.
type State struct {
	Active string
}

type Tabs struct {
	doc    *dom.Document
	layout Layout
}

func NewTabs(doc *dom.Document, layout Layout) *Tabs {
	return &Tabs{doc: doc, layout: layout}
}

func (t *Tabs) Default() string {
	return t.layout.DefaultPanel
}

// Activate marks panel id and its selector active after clearing every other
// panel. The document is left untouched when id does not resolve.
func (t *Tabs) Activate(id string) error {
	panel := t.doc.GetElementByID(id)
	selector := t.doc.GetElementByID(selectorIDPrefix + id)
	if panel == nil || selector == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}

	for _, el := range t.doc.QuerySelectorAll("." + panelClass) {
		el.RemoveClass(activeClass)
	}
	for _, el := range t.doc.QuerySelectorAll("." + selectorClass) {
		el.RemoveClass(activeClass)
	}
	panel.AddClass(activeClass)
	selector.AddClass(activeClass)
	return nil
}

// Active returns the id of the active panel, or "" when none is marked.
func (t *Tabs) Active() string {
	el := t.doc.QuerySelector("." + panelClass + "." + activeClass)
	if el == nil {
		return ""
	}
	return el.ID()
}

// Present reports whether the document has any panels at all.
func (t *Tabs) Present() bool {
	return t.doc.QuerySelector("."+panelClass) != nil
}

func (t *Tabs) Snapshot() State {
	return State{Active: t.Active()}
}

// Restore reactivates s.Active, falling back to the default panel when the
// state is empty or the panel no longer exists. It returns the panel that
// ended up active.
func (t *Tabs) Restore(s State) (string, error) {
	target := s.Active
	if target == "" {
		target = t.Default()
	}
	err := t.Activate(target)
	if err == nil {
		return target, nil
	}
	if target == t.Default() {
		return "", err
	}
	if fallbackErr := t.Activate(t.Default()); fallbackErr != nil {
		return "", fmt.Errorf("%w (fallback: %v)", err, fallbackErr)
	}
	return t.Default(), err
}
