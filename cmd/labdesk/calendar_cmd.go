package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/labdesk/internal/browser"
	"github.com/iota-uz/labdesk/internal/fragment"
)

type calendarOptions struct {
	page   string
	layout string
	year   int
	month  int
}

func newCalendarCmd(root *rootOptions) *cobra.Command {
	now := time.Now()
	opts := &calendarOptions{}
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Load a dashboard page and swap in the calendar for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.month < 1 || opts.month > 12 {
				return withCode(exitUsage, fmt.Errorf("%w: got %d", fragment.ErrInvalidMonth, opts.month))
			}
			conf, err := root.config()
			if err != nil {
				return err
			}
			defer conf.Unload()

			s, err := browser.New(browser.Options{Config: conf, Layout: opts.layout})
			if err != nil {
				return withCode(exitConfig, err)
			}
			defer s.Close()

			ctx := cmd.Context()
			if err := s.Open(ctx, pageURL(conf, opts.page)); err != nil {
				return withCode(exitNetwork, err)
			}
			loadErr := s.Calendar.LoadCalendar(ctx, opts.year, opts.month)

			if container := s.Window.Document().GetElementByID(conf.Fragment.ContainerID); container != nil {
				fmt.Fprintln(cmd.OutOrStdout(), container.InnerHTML())
			}
			if loadErr != nil {
				return withCode(exitNetwork, loadErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.page, "page", "", "page to load (defaults to LABDESK_BASE_URL)")
	cmd.Flags().StringVar(&opts.layout, "layout", "admin", "page layout (admin or instructor)")
	cmd.Flags().IntVar(&opts.year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(&opts.month, "month", int(now.Month()), "calendar month, 1-12")
	return cmd
}
