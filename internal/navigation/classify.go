package navigation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/xhr"
)

const maxRedirects = 10

// classified is a response reduced to what the controller acts on.
type classified struct {
	result     Result
	status     int
	statusText string
	finalURL   *url.URL
	body       string
}

type redirectCounter struct {
	n int
}

type redirectCounterKey struct{}

func countRedirects(ctx context.Context) (context.Context, *redirectCounter) {
	rc := &redirectCounter{}
	return context.WithValue(ctx, redirectCounterKey{}, rc), rc
}

// newClients derives the follow and manual clients from base. Both share its
// transport and cookie jar.
func newClients(base *http.Client) (follow, manual *http.Client) {
	f := *base
	f.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if rc, ok := req.Context().Value(redirectCounterKey{}).(*redirectCounter); ok {
			rc.n++
		}
		return nil
	}
	m := *base
	m.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &f, &m
}

func (c *Controller) newRequest(ctx context.Context, method string, action *url.URL, fields dom.Fields) (*http.Request, error) {
	req, err := dom.NewFormRequest(ctx, method, action, fields)
	if err != nil {
		return nil, err
	}
	xhr.Mark(req)
	if loc := c.window.Location(); loc.Scheme == "http" || loc.Scheme == "https" {
		loc.Fragment = ""
		req.Header.Set("Referer", loc.String())
	}
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}
	return req, nil
}

// send performs the submission and classifies the answer. A returned error is
// always a network failure.
func (c *Controller) send(ctx context.Context, in *intent) (*classified, error) {
	ctx, rc := countRedirects(ctx)
	req, err := c.newRequest(ctx, in.method, in.action, in.fields)
	if err != nil {
		return nil, err
	}

	client := c.follow
	if c.redirectMode == redirectManual {
		client = c.manual
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.redirectMode == redirectManual && isRedirect(resp.StatusCode) && resp.Header.Get("Location") != "" {
		loc, err := resp.Location()
		if err != nil {
			return nil, errors.Wrap(err, "redirect location")
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return c.fetchFinal(ctx, loc)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	out := &classified{
		status:     resp.StatusCode,
		statusText: statusText(resp),
		finalURL:   resp.Request.URL,
		body:       string(body),
	}
	switch {
	case rc.n > 0:
		out.result = ResultRedirected
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		out.result = ResultError
	default:
		out.result = ResultPlain
	}
	return out, nil
}

// fetchFinal loads the target of an opaque redirect.
func (c *Controller) fetchFinal(ctx context.Context, loc *url.URL) (*classified, error) {
	req, err := c.newRequest(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.follow.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	return &classified{
		result:     ResultRedirected,
		status:     resp.StatusCode,
		statusText: statusText(resp),
		finalURL:   resp.Request.URL,
		body:       string(body),
	}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// statusText is the reason phrase the server sent, falling back to the
// canonical one.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
