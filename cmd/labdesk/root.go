package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/labdesk/pkg/configuration"
)

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "labdesk",
		Short:         "Lab booking dashboard runtime: reference server and headless submit client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", []string{".env", ".env.local"}, "env files to load before reading configuration")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSubmitCmd(opts))
	cmd.AddCommand(newCalendarCmd(opts))
	return cmd
}

func (o *rootOptions) config() (*configuration.Configuration, error) {
	conf, err := configuration.New(o.envFiles...)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	return conf, nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitConfig  = 3
	exitNetwork = 4
	// exitRejected means the server answered but the submission failed.
	exitRejected = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
