// Package fragment loads server-rendered HTML fragments into a named container.
package fragment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"

	"github.com/iota-uz/labdesk/internal/toast"
	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/xhr"
)

const (
	DefaultEndpoint       = "/calendar/fragment"
	DefaultContainerID    = "calendar-container"
	DefaultFailureMessage = "Failed to load calendar. Please try again."

	loadingOpacity = "0.5"
	restOpacity    = "1"
)

var tracer = otel.Tracer("labdesk-fragment")

// Reporter receives a failure notice in addition to the inline message.
type Reporter interface {
	Enqueue(message string, kind toast.Kind) toast.Toast
}

type Options struct {
	Window         *dom.Window
	Client         *http.Client
	Endpoint       string
	ContainerID    string
	FailureMessage string
	Reporter       Reporter
	Logger         *logrus.Logger
}

type Loader struct {
	window         *dom.Window
	client         *http.Client
	endpoint       string
	containerID    string
	failureMessage string
	reporter       Reporter
	log            *logrus.Entry
}

func New(opts Options) *Loader {
	l := &Loader{
		window:         opts.Window,
		client:         opts.Client,
		endpoint:       opts.Endpoint,
		containerID:    opts.ContainerID,
		failureMessage: opts.FailureMessage,
		reporter:       opts.Reporter,
	}
	if l.client == nil {
		l.client = opts.Window.Client()
	}
	if l.endpoint == "" {
		l.endpoint = DefaultEndpoint
	}
	if l.containerID == "" {
		l.containerID = DefaultContainerID
	}
	if l.failureMessage == "" {
		l.failureMessage = DefaultFailureMessage
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l.log = logger.WithField("component", "fragment")
	return l
}

// LoadCalendar loads the month view for year/month.
func (l *Loader) LoadCalendar(ctx context.Context, year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return l.Load(ctx, url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(month)},
	})
}

// Load fetches the endpoint with params and replaces the container's content.
// On failure the container shows only the failure message. The container's
// opacity is restored on every path.
func (l *Loader) Load(ctx context.Context, params url.Values) (err error) {
	container := l.window.Document().GetElementByID(l.containerID)
	if container == nil {
		return fmt.Errorf("%w: #%s", ErrContainerMissing, l.containerID)
	}

	ctx, span := tracer.Start(ctx, "fragment.load")
	span.SetAttributes(
		attribute.String("fragment.endpoint", l.endpoint),
		attribute.String("fragment.params", params.Encode()),
	)
	start := time.Now()

	container.SetStyle("opacity", loadingOpacity)
	defer func() {
		container.SetStyle("opacity", restOpacity)

		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		getMetrics().loadsTotal.WithLabelValues(result).Inc()
		getMetrics().loadLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
		span.End()
	}()

	body, err := l.fetch(ctx, params)
	if err != nil {
		l.log.WithError(err).WithField("params", params.Encode()).Error("error loading fragment")
		container.SetInnerHTML(`<div class="error">` + html.EscapeString(l.failureMessage) + `</div>`)
		if l.reporter != nil {
			l.reporter.Enqueue(l.failureMessage, toast.Error)
		}
		return err
	}
	container.SetInnerHTML(body)
	return nil
}

func (l *Loader) fetch(ctx context.Context, params url.Values) (string, error) {
	target, err := l.window.ResolveURL(l.endpoint)
	if err != nil {
		return "", err
	}
	q := target.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", err
	}
	xhr.Mark(req)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s", ErrFragmentStatus, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
