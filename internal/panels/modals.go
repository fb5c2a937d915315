package panels

import (
	"context"
	"fmt"

	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/eventbus"
)

const overlayClass = "modal-overlay"

type Modals struct {
	doc      *dom.Document
	selector string
}

// NewModals manages dialogs matched by selector (".modal-overlay" when empty).
func NewModals(doc *dom.Document, selector string) *Modals {
	if selector == "" {
		selector = "." + overlayClass
	}
	return &Modals{doc: doc, selector: selector}
}

func (m *Modals) Open(id string) error {
	el := m.doc.GetElementByID(id)
	if el == nil {
		return fmt.Errorf("%w: %q", ErrUnknownModal, id)
	}
	el.SetStyle("display", "block")
	return nil
}

func (m *Modals) Close(id string) error {
	el := m.doc.GetElementByID(id)
	if el == nil {
		return fmt.Errorf("%w: %q", ErrUnknownModal, id)
	}
	el.SetStyle("display", "none")
	return nil
}

func (m *Modals) IsOpen(id string) bool {
	el := m.doc.GetElementByID(id)
	return el != nil && el.Style("display") == "block"
}

// CloseAll hides every dialog in the document.
func (m *Modals) CloseAll() {
	for _, el := range m.doc.QuerySelectorAll(m.selector) {
		el.SetStyle("display", "none")
	}
}

// Install hides a dialog when its dimmed backdrop, not its body, is clicked.
func (m *Modals) Install(bus eventbus.EventBus) func() {
	return bus.Subscribe(func(_ context.Context, ev *dom.ClickEvent) {
		if ev.Target.Matches(m.selector) {
			ev.Target.SetStyle("display", "none")
		}
	})
}
