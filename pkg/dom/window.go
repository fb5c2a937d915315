package dom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/pkg/eventbus"
)

const blankPage = "<html><head></head><body></body></html>"

type WindowOptions struct {
	Client *http.Client
	Logger *logrus.Logger
	Events eventbus.EventBus
}

// Window owns the current document and location and performs native
// navigations. The Document pointer is stable for the window's lifetime;
// navigations replace its contents.
type Window struct {
	client *http.Client
	log    *logrus.Entry
	events eventbus.EventBus
	doc    *Document

	mu       sync.RWMutex
	location *url.URL
}

func NewWindow(opts WindowOptions) *Window {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	events := opts.Events
	if events == nil {
		events = eventbus.New(logger)
	}
	doc, _ := ParseString(blankPage)
	return &Window{
		client:   client,
		log:      logger.WithField("component", "window"),
		events:   events,
		doc:      doc,
		location: &url.URL{Scheme: "about", Opaque: "blank"},
	}
}

func (w *Window) Document() *Document {
	return w.doc
}

func (w *Window) Events() eventbus.EventBus {
	return w.events
}

func (w *Window) Client() *http.Client {
	return w.client
}

// Location returns a copy of the current URL.
func (w *Window) Location() *url.URL {
	w.mu.RLock()
	defer w.mu.RUnlock()
	u := *w.location
	return &u
}

// ReplaceState rewrites the current URL without navigating.
func (w *Window) ReplaceState(u *url.URL) {
	cp := *u
	w.mu.Lock()
	w.location = &cp
	w.mu.Unlock()
}

// ResolveURL resolves ref against the current location. An empty ref is the
// current location itself.
func (w *Window) ResolveURL(ref string) (*url.URL, error) {
	base := w.Location()
	if ref == "" {
		return base, nil
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(parsed), nil
}

// Open navigates to rawURL with a GET.
func (w *Window) Open(ctx context.Context, rawURL string) error {
	target, err := w.ResolveURL(rawURL)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	return w.Navigate(ctx, req)
}

// Reload re-fetches the current location and replaces the whole document.
func (w *Window) Reload(ctx context.Context) error {
	return w.Open(ctx, w.Location().String())
}

// Navigate performs req as a full page navigation. Like a browser, a non-2xx
// response still replaces the page with whatever the server returned.
func (w *Window) Navigate(ctx context.Context, req *http.Request) error {
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("navigate %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	w.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    resp.Request.URL.String(),
		"status": resp.StatusCode,
	}).Debug("navigation completed")

	return w.load(ctx, resp.Request.URL, resp.Body)
}

// LoadHTML installs markup as the current page at u, as if it had been
// navigated to.
func (w *Window) LoadHTML(ctx context.Context, u *url.URL, markup string) error {
	return w.load(ctx, u, strings.NewReader(markup))
}

func (w *Window) load(ctx context.Context, u *url.URL, body io.Reader) error {
	next, err := Parse(body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", u, err)
	}
	w.doc.Replace(next)
	w.ReplaceState(u)
	return w.publish(ctx, &LoadEvent{Window: w})
}

// Submit dispatches a submit event for form. If no listener prevents the
// default, the form is submitted natively.
func (w *Window) Submit(ctx context.Context, form, submitter *Element) error {
	ev := &SubmitEvent{Target: form, Submitter: submitter}
	if err := w.publish(ctx, ev); err != nil {
		return err
	}
	if ev.DefaultPrevented() || form.TagName() != "form" {
		return nil
	}

	action, _ := form.Attr("action")
	target, err := w.ResolveURL(action)
	if err != nil {
		return err
	}
	req, err := NewFormRequest(ctx, form.FormMethod(), target, form.FormFields())
	if err != nil {
		return err
	}
	return w.Navigate(ctx, req)
}

// Click dispatches a click event. An unprevented click on a submit control
// inside a form submits that form.
func (w *Window) Click(ctx context.Context, target *Element) error {
	ev := &ClickEvent{Target: target}
	if err := w.publish(ctx, ev); err != nil {
		return err
	}
	if ev.DefaultPrevented() || !target.IsConnected() || target.Disabled() {
		return nil
	}
	if !target.Matches("button[type='submit'], input[type='submit'], button:not([type])") {
		return nil
	}
	form := target.Closest("form")
	if form == nil {
		return nil
	}
	return w.Submit(ctx, form, target)
}

func (w *Window) publish(ctx context.Context, event any) error {
	err := w.events.Publish(ctx, event)
	if errors.Is(err, eventbus.ErrNoSubscribers) {
		return nil
	}
	return err
}
