package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	execadapter "github.com/couchcryptid/storm-mode-driver/internal/adapter/exec"
	httpadapter "github.com/couchcryptid/storm-mode-driver/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-mode-driver/internal/adapter/kafka"
	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/locate"
	"github.com/couchcryptid/storm-mode-driver/internal/pipeline"
)

type runOptions struct {
	inits []string
	leads []string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run MODE for every time step",
		Example: `  modedriver run -c mode.toml --init 2024042600 --lead 3,6
  RUNNER=dry-run modedriver run -c mode.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.inits, "init", nil, "init times as YYYYMMDDHH[MM[SS]] (default: INIT_BEG..INIT_END from the config)")
	cmd.Flags().StringSliceVar(&opts.leads, "lead", nil, "forecast leads in hours or as durations (default: LEAD_SEQ from the config)")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, opts *runOptions) error {
	settings, err := a.settings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	logger := a.newLogger(settings).With("run_id", uuid.NewString())
	metrics := a.newMetrics()

	store, cfg, err := a.loadRun()
	if err != nil {
		return err
	}
	steps, err := times(store, opts.inits, opts.leads)
	if err != nil {
		return err
	}

	runner, closeRunner, err := a.newRunner(settings, logger, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRunner(); err != nil {
			logger.Error("runner close error", "error", err)
		}
	}()

	driver := pipeline.New(cfg, a.fs, locate.NewTemplateLocator(a.fs, cfg), runner, logger, metrics)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if settings.HTTPAddr != "" {
		srv := httpadapter.NewServer(settings.HTTPAddr, driver, driver, logger)
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var failed int
	g.Go(func() error {
		defer cancel()
		for _, ti := range steps {
			report, err := driver.RunAtTime(gctx, ti)
			fmt.Fprintf(out, "%s: fields=%d succeeded=%d failed=%d skipped=%d no_command=%d\n",
				ti, report.Fields, report.Succeeded, report.Failed, report.Skipped, report.NoCommand)
			if err != nil {
				return err
			}
			failed += report.Failed
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if failed > 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("%d mode invocations failed", failed)}
	}
	return nil
}

// newRunner selects the command runner named by RUNNER. The returned close
// function is always safe to call.
func (a *app) newRunner(s *config.Settings, logger *slog.Logger, out io.Writer) (pipeline.CommandRunner, func() error, error) {
	noop := func() error { return nil }
	switch s.Runner {
	case config.RunnerExec:
		return execadapter.NewRunner(out, a.stderr, logger), noop, nil
	case config.RunnerDryRun:
		return execadapter.NewDryRunner(logger), noop, nil
	case config.RunnerKafka:
		p := kafkaadapter.NewPublisher(s, logger)
		return p, p.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown runner %q", s.Runner)
}
