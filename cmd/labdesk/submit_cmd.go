package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/labdesk/internal/browser"
	"github.com/iota-uz/labdesk/internal/navigation"
	"github.com/iota-uz/labdesk/pkg/configuration"
	"github.com/iota-uz/labdesk/pkg/dom"
)

type submitOptions struct {
	page         string
	form         string
	set          []string
	layout       string
	panel        string
	redirectMode string
}

func newSubmitCmd(root *rootOptions) *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Load a dashboard page, fill a form and submit it in place",
		Example: `  labdesk submit --page http://localhost:3200/ --form '#booking-form' \
    --set lab_id=1 --set booking_date=2024-03-14 --set start_time=09:00 --set end_time=11:00`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := parseAssignments(opts.set)
			if err != nil {
				return withCode(exitUsage, err)
			}
			conf, err := root.config()
			if err != nil {
				return err
			}
			defer conf.Unload()
			if opts.redirectMode != "" {
				conf.Navigation.RedirectMode = opts.redirectMode
				if err := conf.Navigation.Validate(); err != nil {
					return withCode(exitUsage, err)
				}
			}

			s, err := browser.New(browser.Options{Config: conf, Layout: opts.layout})
			if err != nil {
				return withCode(exitConfig, err)
			}
			defer s.Close()

			ctx := cmd.Context()
			if err := s.Open(ctx, pageURL(conf, opts.page)); err != nil {
				return withCode(exitNetwork, err)
			}
			if opts.panel != "" {
				if err := s.Page.Tabs.Activate(opts.panel); err != nil {
					if hints := s.Page.Layout.Suggest(opts.panel); len(hints) > 0 {
						err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(hints, ", "))
					}
					return withCode(exitUsage, err)
				}
			}

			out, err := s.Submit(ctx, opts.form, fields)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if err := writeJSONLine(cmd.OutOrStdout(), newOutcomeLine(s, out)); err != nil {
				return err
			}
			switch out.Result {
			case navigation.ResultNetworkFailure:
				return withCode(exitNetwork, out.Err)
			case navigation.ResultError:
				return withCode(exitRejected, out.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.page, "page", "", "page to load (defaults to LABDESK_BASE_URL)")
	cmd.Flags().StringVar(&opts.form, "form", "#booking-form", "CSS selector of the form to submit")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "field assignment name=value, repeatable")
	cmd.Flags().StringVar(&opts.layout, "layout", "admin", "page layout (admin or instructor)")
	cmd.Flags().StringVar(&opts.panel, "panel", "", "panel to activate before submitting")
	cmd.Flags().StringVar(&opts.redirectMode, "redirect-mode", "", "override NAV_REDIRECT_MODE (follow or manual)")
	return cmd
}

func parseAssignments(raw []string) ([]dom.Field, error) {
	fields := make([]dom.Field, 0, len(raw))
	for _, a := range raw {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", a)
		}
		fields = append(fields, dom.Field{Name: name, Value: value})
	}
	return fields, nil
}

func pageURL(conf *configuration.Configuration, page string) string {
	if page != "" {
		return page
	}
	return strings.TrimRight(conf.BaseURL, "/") + "/"
}
