package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and list every problem found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd.OutOrStdout())
		},
	}
}

func (a *app) validate(out io.Writer) error {
	_, cfg, err := a.loadRun()
	if err != nil {
		problems := flatten(err)
		for _, p := range problems {
			fmt.Fprintln(out, p)
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("%d problems in %s", len(problems), a.configPath)}
	}
	fmt.Fprintf(out, "%s: ok, %d fields\n", a.configPath, len(cfg.Vars))
	return nil
}

// flatten expands joined errors into one message per ConfigError.
func flatten(err error) []string {
	if cerr, ok := err.(*config.ConfigError); ok {
		return []string{cerr.Error()}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
