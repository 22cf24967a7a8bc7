package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/locate"
	"github.com/couchcryptid/storm-mode-driver/internal/pipeline"
)

func newRenderCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the fields, command and environment of each invocation without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.render(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.inits, "init", nil, "init times as YYYYMMDDHH[MM[SS]]")
	cmd.Flags().StringSliceVar(&opts.leads, "lead", nil, "forecast leads in hours or as durations")
	return cmd
}

func (a *app) render(out io.Writer, opts *runOptions) error {
	store, cfg, err := a.loadRun()
	if err != nil {
		return err
	}
	steps, err := times(store, opts.inits, opts.leads)
	if err != nil {
		return err
	}

	for _, ti := range steps {
		fcstPath, err := expectedPath(cfg.Fcst, ti)
		if err != nil {
			return err
		}
		obsPath, err := expectedPath(cfg.Obs, ti)
		if err != nil {
			return err
		}
		for _, v := range cfg.Vars {
			pairs, err := pipeline.ExpandThresholds(v, cfg.Fcst.IsProb)
			if err != nil {
				fmt.Fprintf(out, "# %s var%d %s %s: %v\n\n", ti, v.Index, v.FcstName, v.FcstLevel, err)
				continue
			}
			for _, pair := range pairs {
				it, err := pipeline.RenderIteration(cfg, ti, v, pair, fcstPath, obsPath)
				if err != nil {
					return err
				}
				writeIteration(out, ti, v, it)
			}
		}
	}
	return nil
}

// expectedPath is the exact-match path the locator would try first.
func expectedPath(side config.SideConfig, ti domain.TimeInfo) (string, error) {
	name, err := locate.Fill(side.InputTemplate, ti)
	if err != nil {
		return "", fmt.Errorf("%s input template: %w", side.Side, err)
	}
	return filepath.Join(side.InputDir, name), nil
}

func writeIteration(out io.Writer, ti domain.TimeInfo, v domain.VarInfo, it pipeline.Iteration) {
	fmt.Fprintf(out, "# %s var%d %s %s fcst_thresh=%s obs_thresh=%s\n",
		ti, v.Index, v.FcstName, v.FcstLevel, it.Pair.Fcst, it.Pair.Obs)
	fmt.Fprintf(out, "FCST_FIELD: %s\n", it.FcstField)
	fmt.Fprintf(out, "OBS_FIELD:  %s\n", it.ObsField)
	if line, err := it.Invocation.CommandLine(); err != nil {
		fmt.Fprintf(out, "command:    %v\n", err)
	} else {
		fmt.Fprintf(out, "command:    %s\n", line)
	}
	fmt.Fprintf(out, "env:        %s\n\n", it.Invocation.Env.Copyable())
}
