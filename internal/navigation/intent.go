package navigation

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/iota-uz/labdesk/pkg/dom"
)

// intent is one captured submission. Fields are copied out of the document at
// capture time, so later edits to the form do not leak into the request.
type intent struct {
	method    string
	action    *url.URL
	fields    dom.Fields
	submitter *dom.Element
}

func (c *Controller) capture(form, submitter *dom.Element) (*intent, error) {
	rawAction, _ := form.Attr("action")
	action, err := c.window.ResolveURL(strings.TrimSpace(rawAction))
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(strings.TrimSpace(attrOr(form, "method", http.MethodGet)))
	if method == "" {
		method = http.MethodGet
	}
	if submitter == nil {
		submitter = form.SubmitControl()
	}
	return &intent{
		method:    method,
		action:    action,
		fields:    form.FormFields(),
		submitter: submitter,
	}, nil
}

func attrOr(el *dom.Element, name, fallback string) string {
	if v, ok := el.Attr(name); ok {
		return v
	}
	return fallback
}

// busyControl remembers what a submit control looked like before it was
// marked busy.
type busyControl struct {
	el    *dom.Element
	input bool
	label string
}

func markBusy(el *dom.Element, busyLabel string) *busyControl {
	if el == nil {
		return nil
	}
	b := &busyControl{el: el, input: el.TagName() == "input"}
	if b.input {
		b.label = attrOr(el, "value", "")
		el.SetAttr("value", busyLabel)
	} else {
		b.label = el.InnerHTML()
		el.SetText(busyLabel)
	}
	el.SetDisabled(true)
	return b
}

func (b *busyControl) restore() {
	if b == nil {
		return
	}
	if b.input {
		b.el.SetAttr("value", b.label)
	} else {
		b.el.SetInnerHTML(b.label)
	}
	b.el.SetDisabled(false)
}
