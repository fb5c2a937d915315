// Package browser assembles a headless dashboard tab: a window, its toast
// queue and panels, the submit interceptor and the calendar loader, all
// configured from one Configuration.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/iota-uz/labdesk/internal/fragment"
	"github.com/iota-uz/labdesk/internal/navigation"
	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/internal/toast"
	"github.com/iota-uz/labdesk/pkg/configuration"
	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/eventbus"
)

type Options struct {
	Config *configuration.Configuration
	// Client defaults to NewClient().
	Client *http.Client
	// Layout names the page layout, "admin" when empty.
	Layout    string
	Scheduler toast.Scheduler
	Logger    *logrus.Logger
}

type Session struct {
	Window     *dom.Window
	Toasts     *toast.Queue
	Page       *panels.Page
	Navigation *navigation.Controller
	Calendar   *fragment.Loader

	mu        sync.Mutex
	outcomes  []navigation.Outcome
	uninstall []func()
}

// NewClient returns an HTTP client with a cookie jar, so session cookies set
// by the server survive across submissions.
func NewClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &http.Client{Jar: jar}, nil
}

func New(opts Options) (*Session, error) {
	conf := opts.Config
	if conf == nil {
		return nil, fmt.Errorf("browser: configuration is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = conf.Logger()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client := opts.Client
	if client == nil {
		var err error
		if client, err = NewClient(); err != nil {
			return nil, err
		}
	}

	layouts, err := panels.LoadLayouts(conf.LayoutsPath)
	if err != nil {
		return nil, err
	}
	name := opts.Layout
	if name == "" {
		name = "admin"
	}
	layout, err := layouts.Get(name)
	if err != nil {
		return nil, err
	}
	if def := conf.Navigation.DefaultPanel; def != "" && layout.HasPanel(def) {
		layout.DefaultPanel = def
	}

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = toast.NewScheduler(conf.Toast.Frame)
	}

	win := dom.NewWindow(dom.WindowOptions{
		Client: client,
		Logger: logger,
		Events: eventbus.New(logger),
	})
	s := &Session{Window: win}
	s.Toasts = toast.New(toast.Options{
		Document:  win.Document(),
		Scheduler: scheduler,
		Dwell:     conf.Toast.Dwell,
		Exit:      conf.Toast.Exit,
		Logger:    logger,
	})
	s.Page = panels.NewPage(win.Document(), layout, conf.Navigation.ModalSelector)
	s.Navigation = navigation.New(navigation.Options{
		Window:          win,
		Toasts:          s.Toasts,
		Page:            s.Page,
		ContentSelector: conf.Navigation.ContentSelector,
		OptOutAttribute: conf.Navigation.OptOutAttribute,
		BusyLabel:       conf.Navigation.BusyLabel,
		RedirectMode:    conf.Navigation.RedirectMode,
		RequestTimeout:  conf.Navigation.RequestTimeout,
		RequestIDHeader: conf.RequestIDHeader,
		Logger:          logger,
		Observer:        s.observe,
	})
	calendar := fragment.Options{
		Window:         win,
		Endpoint:       conf.Fragment.Endpoint,
		ContainerID:    conf.Fragment.ContainerID,
		FailureMessage: conf.Fragment.FailureMessage,
		Logger:         logger,
	}
	if conf.Fragment.ReportToToast {
		calendar.Reporter = s.Toasts
	}
	s.Calendar = fragment.New(calendar)

	s.uninstall = append(s.uninstall,
		s.Navigation.Install(),
		s.Toasts.Install(win.Events()),
		s.Page.Modals.Install(win.Events()),
	)
	return s, nil
}

func (s *Session) observe(out navigation.Outcome) {
	s.mu.Lock()
	s.outcomes = append(s.outcomes, out)
	s.mu.Unlock()
}

// Outcomes returns the results of every submit event seen so far.
func (s *Session) Outcomes() []navigation.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]navigation.Outcome(nil), s.outcomes...)
}

// Open navigates the window to rawURL. Status messages in the URL are shown
// and stripped once the page loads.
func (s *Session) Open(ctx context.Context, rawURL string) error {
	return s.Window.Open(ctx, rawURL)
}

// Submit fills the form matched by selector with values and submits it
// through its default submit control, as a click would.
func (s *Session) Submit(ctx context.Context, selector string, values []dom.Field) (navigation.Outcome, error) {
	form := s.Window.Document().QuerySelector(selector)
	if form == nil {
		return navigation.Outcome{}, fmt.Errorf("%w: %s", ErrFormNotFound, selector)
	}
	for _, v := range values {
		if !form.SetFieldValue(v.Name, v.Value) {
			return navigation.Outcome{}, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, v.Name, selector)
		}
	}

	before := len(s.Outcomes())
	if err := s.Window.Submit(ctx, form, form.SubmitControl()); err != nil {
		return navigation.Outcome{}, err
	}
	outcomes := s.Outcomes()
	if len(outcomes) == before {
		return navigation.Outcome{Result: navigation.ResultIgnored}, nil
	}
	return outcomes[len(outcomes)-1], nil
}

// Close removes every listener the session installed.
func (s *Session) Close() {
	for _, off := range s.uninstall {
		off()
	}
	s.uninstall = nil
}
