package panels

import "github.com/iota-uz/labdesk/pkg/dom"

// Page bundles the tab and modal state of one dashboard page.
type Page struct {
	Layout Layout
	Tabs   *Tabs
	Modals *Modals
}

func NewPage(doc *dom.Document, layout Layout, modalSelector string) *Page {
	return &Page{
		Layout: layout,
		Tabs:   NewTabs(doc, layout),
		Modals: NewModals(doc, modalSelector),
	}
}
