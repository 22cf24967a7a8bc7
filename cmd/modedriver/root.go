package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/observability"
)

// ExitError carries a process exit code out of a RunE handler.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// app holds the collaborators the commands share. Tests replace them.
type app struct {
	configPath string

	fs         afero.Fs
	stderr     io.Writer
	settings   func() (*config.Settings, error)
	newMetrics func() *observability.Metrics
	newLogger  func(*config.Settings) *slog.Logger
}

func newApp() *app {
	return &app{
		fs:         afero.NewOsFs(),
		stderr:     os.Stderr,
		settings:   config.LoadSettings,
		newMetrics: observability.NewMetrics,
		newLogger:  observability.NewLogger,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "modedriver",
		Short: "Run MET MODE over a set of forecast variables and thresholds",
		Long: `modedriver builds the field specifications and environment for each
forecast/observation threshold pair of a verification run and executes the
MODE tool once per pair, locally or through a Kafka worker queue.

Process settings come from the environment (LOG_LEVEL, LOG_FORMAT, RUNNER,
HTTP_ADDR, KAFKA_BROKERS, KAFKA_TOPIC, SHUTDOWN_TIMEOUT); verification
settings come from the file named by --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "verification config file (toml, yaml or json)")
	_ = root.MarkPersistentFlagRequired("config")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newRenderCmd(a))
	return root
}

// loadRun opens the config file and builds the run configuration.
func (a *app) loadRun() (config.Store, *config.RunConfig, error) {
	store, err := config.OpenStore(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Build(store)
	if err != nil {
		return store, nil, err
	}
	return store, cfg, nil
}

// times resolves the time steps from flags, falling back to the INIT_BEG
// loop of the config. Leads default to LEAD_SEQ.
func times(store config.Store, inits, leads []string) ([]domain.TimeInfo, error) {
	if len(inits) == 0 {
		if len(leads) > 0 {
			return nil, errors.New("--lead needs --init")
		}
		ts, err := config.TimeLoop(store)
		if errors.Is(err, config.ErrNoTimes) {
			return nil, fmt.Errorf("%w: pass --init or set INIT_BEG", err)
		}
		return ts, err
	}
	if len(leads) == 0 {
		var err error
		if leads, err = store.List(config.SectionConfig, "LEAD_SEQ"); err != nil {
			return nil, err
		}
	}
	return config.Times(inits, leads)
}
