// Package navigation intercepts form submissions, performs them in the
// background and applies the server's answer to the live page: a content
// swap, a status toast, or both.
package navigation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/internal/toast"
	"github.com/iota-uz/labdesk/pkg/dom"
)

const (
	DefaultContentSelector = ".container"
	DefaultOptOutAttribute = "data-no-ajax"
	DefaultBusyLabel       = "Processing..."

	redirectFollow = "follow"
	redirectManual = "manual"
)

var tracer = otel.Tracer("labdesk-navigation")

// Notifier shows status messages to the user.
type Notifier interface {
	Enqueue(message string, kind toast.Kind) toast.Toast
}

type Options struct {
	Window *dom.Window
	Toasts Notifier
	Page   *panels.Page
	// Client defaults to the window's client.
	Client          *http.Client
	ContentSelector string
	OptOutAttribute string
	BusyLabel       string
	// RedirectMode is "follow" (default) or "manual".
	RedirectMode    string
	RequestTimeout  time.Duration
	RequestIDHeader string
	Logger          *logrus.Logger
	// Observer, when set, receives the outcome of every submit event.
	Observer func(Outcome)
}

type Controller struct {
	window          *dom.Window
	toasts          Notifier
	page            *panels.Page
	follow          *http.Client
	manual          *http.Client
	contentSelector string
	optOutAttribute string
	busyLabel       string
	redirectMode    string
	timeout         time.Duration
	requestIDHeader string
	observer        func(Outcome)
	log             *logrus.Entry
}

func New(opts Options) *Controller {
	client := opts.Client
	if client == nil {
		client = opts.Window.Client()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Controller{
		window:          opts.Window,
		toasts:          opts.Toasts,
		page:            opts.Page,
		contentSelector: opts.ContentSelector,
		optOutAttribute: opts.OptOutAttribute,
		busyLabel:       opts.BusyLabel,
		redirectMode:    strings.ToLower(strings.TrimSpace(opts.RedirectMode)),
		timeout:         opts.RequestTimeout,
		requestIDHeader: opts.RequestIDHeader,
		observer:        opts.Observer,
		log:             logger.WithField("component", "navigation"),
	}
	c.follow, c.manual = newClients(client)
	if c.page == nil {
		c.page = panels.NewPage(opts.Window.Document(), panels.Layout{}, "")
	}
	if c.contentSelector == "" {
		c.contentSelector = DefaultContentSelector
	}
	if c.optOutAttribute == "" {
		c.optOutAttribute = DefaultOptOutAttribute
	}
	if c.busyLabel == "" {
		c.busyLabel = DefaultBusyLabel
	}
	if c.redirectMode != redirectManual {
		c.redirectMode = redirectFollow
	}
	return c
}

// Install subscribes the controller to submit and load events of its window.
// The returned func removes both subscriptions.
func (c *Controller) Install() func() {
	events := c.window.Events()
	offSubmit := events.Subscribe(func(ctx context.Context, ev *dom.SubmitEvent) {
		out := c.HandleSubmit(ctx, ev)
		if c.observer != nil {
			c.observer(out)
		}
	})
	offLoad := events.Subscribe(func(ctx context.Context, _ *dom.LoadEvent) {
		c.Bootstrap(ctx)
	})
	return func() {
		offSubmit()
		offLoad()
	}
}

// Eligible reports whether a submit on form is intercepted.
func (c *Controller) Eligible(form *dom.Element) bool {
	if form == nil || form.TagName() != "form" {
		return false
	}
	v, _ := form.Attr(c.optOutAttribute)
	return v == ""
}

// HandleSubmit runs one submit event to completion. Ineligible events are
// left untouched so the window navigates natively.
func (c *Controller) HandleSubmit(ctx context.Context, ev *dom.SubmitEvent) (out Outcome) {
	if !c.Eligible(ev.Target) {
		return Outcome{Result: ResultIgnored}
	}
	ev.PreventDefault()

	start := time.Now()
	ctx, span := tracer.Start(ctx, "navigation.submit")
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	getMetrics().inFlight.Inc()

	var busy *busyControl
	defer func() {
		rec := recover()
		busy.restore()
		c.page.Modals.CloseAll()
		getMetrics().inFlight.Dec()

		if rec != nil {
			span.SetStatus(codes.Error, fmt.Sprint(rec))
			span.End()
			panic(rec)
		}
		out.Duration = time.Since(start)
		c.record(span, out)
	}()

	in, err := c.capture(ev.Target, ev.Submitter)
	if err != nil {
		return c.networkFailure(Outcome{}, err)
	}
	out.Method = in.method
	out.Action = in.action
	span.SetAttributes(
		attribute.String("http.method", in.method),
		attribute.String("http.url", in.action.String()),
	)

	if in.submitter == nil {
		c.log.WithField("action", in.action.String()).Debug("no submit control found, skipping busy state")
	}
	busy = markBusy(in.submitter, c.busyLabel)

	res, err := c.send(ctx, in)
	if err != nil {
		return c.networkFailure(out, err)
	}
	out.Result = res.result
	out.Status = res.status
	out.FinalURL = res.finalURL

	switch res.result {
	case ResultError:
		out.Err = fmt.Errorf("%w: %d %s", ErrServerError, res.status, res.statusText)
		c.notify(&out, Signal{Kind: toast.Error, Message: "Server Error: " + res.statusText})
		return out
	case ResultRedirected:
		c.apply(ctx, &out, res.body)
		for _, s := range ExtractSignals(res.finalURL) {
			c.notify(&out, s)
		}
		return out
	default:
		c.apply(ctx, &out, res.body)
		return out
	}
}

func (c *Controller) networkFailure(out Outcome, err error) Outcome {
	out.Result = ResultNetworkFailure
	out.Err = fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	c.notify(&out, Signal{Kind: toast.Error, Message: "Network Request Failed: " + err.Error()})
	return out
}

// apply swaps body into the page, reloading the whole page when the content
// region cannot be matched on both sides.
func (c *Controller) apply(ctx context.Context, out *Outcome, body string) {
	active, err := c.swap(body)
	if err == nil {
		out.Swapped = true
		out.ActivePanel = active
		return
	}
	if !errors.Is(err, ErrStructuralMismatch) {
		out.Err = err
		c.log.WithError(err).Error("failed to swap content")
		return
	}

	c.log.WithError(err).Warn("content region missing, reloading page")
	getMetrics().fallbackReloads.Inc()
	out.Err = err
	if reloadErr := c.window.Reload(ctx); reloadErr != nil {
		out.Err = errors.Wrap(reloadErr, "reload")
		c.log.WithError(reloadErr).Error("failed to reload page")
		c.notify(out, Signal{Kind: toast.Error, Message: "Network Request Failed: " + reloadErr.Error()})
		return
	}
	out.Reloaded = true
}

func (c *Controller) notify(out *Outcome, s Signal) {
	out.Signals = append(out.Signals, s)
	if c.toasts != nil {
		c.toasts.Enqueue(s.Message, s.Kind)
	}
}

func (c *Controller) record(span trace.Span, out Outcome) {
	defer span.End()
	span.SetAttributes(
		attribute.String("navigation.result", string(out.Result)),
		attribute.Int("http.status_code", out.Status),
		attribute.Bool("navigation.swapped", out.Swapped),
		attribute.Bool("navigation.reloaded", out.Reloaded),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	getMetrics().submissionsTotal.WithLabelValues(string(out.Result)).Inc()
	getMetrics().submissionDuration.WithLabelValues(string(out.Result)).Observe(out.Duration.Seconds())

	fields := logrus.Fields{
		"method":   out.Method,
		"result":   out.Result,
		"status":   out.Status,
		"signals":  len(out.Signals),
		"duration": out.Duration,
	}
	if out.Action != nil {
		fields["action"] = out.Action.String()
	}
	entry := c.log.WithFields(fields)
	if out.Err != nil {
		entry.WithError(out.Err).Warn("submission finished with error")
		return
	}
	entry.Info("submission finished")
}
