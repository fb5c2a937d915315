// Package toast renders one-shot status notifications into a document.
package toast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/eventbus"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

const (
	DefaultDwell = 4000 * time.Millisecond
	DefaultExit  = 300 * time.Millisecond
)

const (
	containerClass = "toast-container"
	toastClass     = "toast"
	closeClass     = "toast-close"
	showClass      = "show"
	idAttr         = "data-toast-id"
)

type Toast struct {
	ID        uuid.UUID
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

type Options struct {
	Document  *dom.Document
	Scheduler Scheduler
	Dwell     time.Duration
	Exit      time.Duration
	Logger    *logrus.Logger
}

type entry struct {
	toast  Toast
	el     *dom.Element
	timers []Timer
}

type Queue struct {
	doc   *dom.Document
	sched Scheduler
	dwell time.Duration
	exit  time.Duration
	log   *logrus.Entry

	mu      sync.Mutex
	entries []*entry
}

func New(opts Options) *Queue {
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler(0)
	}
	if opts.Dwell <= 0 {
		opts.Dwell = DefaultDwell
	}
	if opts.Exit <= 0 {
		opts.Exit = DefaultExit
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Queue{
		doc:   opts.Document,
		sched: opts.Scheduler,
		dwell: opts.Dwell,
		exit:  opts.Exit,
		log:   opts.Logger.WithField("component", "toast"),
	}
}

// Enqueue appends a toast at the end of the container and schedules its lifecycle.
func (q *Queue) Enqueue(message string, kind Kind) Toast {
	t := Toast{
		ID:        uuid.New(),
		Message:   message,
		Kind:      kind,
		CreatedAt: q.sched.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	el := q.container().AppendHTML(
		`<div class="` + toastClass + ` ` + string(kind) + `" ` + idAttr + `="` + t.ID.String() + `">` +
			`<span></span> <span class="` + closeClass + `">✕</span></div>`,
	)
	el.QuerySelector("span").SetText(message)

	e := &entry{toast: t, el: el}
	q.entries = append(q.entries, e)
	e.timers = append(e.timers,
		q.sched.NextFrame(func() { q.show(t.ID) }),
		q.sched.AfterFunc(q.dwell, func() { q.hide(t.ID) }),
	)

	getMetrics().enqueuedTotal.WithLabelValues(string(kind)).Inc()
	getMetrics().visible.Inc()
	q.log.WithFields(logrus.Fields{"id": t.ID, "kind": kind}).Debug("toast enqueued")
	return t
}

// Dismiss removes a toast immediately and cancels its pending timers.
// It reports whether the toast was still present.
func (q *Queue) Dismiss(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.find(id)
	if e == nil {
		return false
	}
	for _, timer := range e.timers {
		timer.Stop()
	}
	q.drop(e)
	getMetrics().dismissedTotal.Inc()
	return true
}

// Active returns the toasts still in the document, in insertion order.
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, 0, len(q.entries))
	for _, e := range q.entries {
		if e.el.IsConnected() {
			out = append(out, e.toast)
		}
	}
	return out
}

// Install wires the close control of every toast to Dismiss.
func (q *Queue) Install(bus eventbus.EventBus) func() {
	return bus.Subscribe(func(_ context.Context, ev *dom.ClickEvent) {
		closeEl := ev.Target.Closest("." + closeClass)
		if closeEl == nil {
			return
		}
		toastEl := closeEl.Closest("." + toastClass)
		if toastEl == nil {
			return
		}
		raw, _ := toastEl.Attr(idAttr)
		id, err := uuid.Parse(raw)
		if err != nil {
			toastEl.Remove()
			return
		}
		q.Dismiss(id)
	})
}

func (q *Queue) show(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e := q.find(id); e != nil {
		e.el.AddClass(showClass)
	}
}

func (q *Queue) hide(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.find(id)
	if e == nil {
		return
	}
	e.el.RemoveClass(showClass)
	e.timers = append(e.timers, q.sched.AfterFunc(q.exit, func() { q.remove(id) }))
}

func (q *Queue) remove(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e := q.find(id); e != nil {
		q.drop(e)
	}
}

// container must be called with q.mu held.
func (q *Queue) container() *dom.Element {
	if c := q.doc.QuerySelector("." + containerClass); c != nil {
		return c
	}
	return q.doc.Body().AppendHTML(`<div class="` + containerClass + `"></div>`)
}

func (q *Queue) find(id uuid.UUID) *entry {
	for _, e := range q.entries {
		if e.toast.ID == id {
			return e
		}
	}
	return nil
}

func (q *Queue) drop(e *entry) {
	e.el.Remove()
	for i, other := range q.entries {
		if other == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	getMetrics().visible.Dec()
}
