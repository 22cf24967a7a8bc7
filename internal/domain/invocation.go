package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoCommand means an invocation lacks the pieces needed to build a
// command line.
var ErrNoCommand = errors.New("could not generate command")

// Invocation is everything a command runner needs to run mode once.
type Invocation struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	App         string    `json:"app"`
	Inputs      []string  `json:"inputs"`
	ConfigFile  string    `json:"config_file"`
	OutputDir   string    `json:"output_dir"`
	MergeConfig string    `json:"merge_config,omitempty"`
	Verbosity   int       `json:"verbosity"`
	Env         EnvSet    `json:"env"`

	// Descriptive fields for logs and message headers.
	FcstVar    string `json:"fcst_var"`
	ObsVar     string `json:"obs_var"`
	FcstThresh string `json:"fcst_thresh,omitempty"`
	ObsThresh  string `json:"obs_thresh,omitempty"`
}

// NewInvocation stamps an invocation with the package clock and an ID
// derived from the variable, time step, and threshold position.
func NewInvocation(ti TimeInfo, v VarInfo, pairIndex int) Invocation {
	return Invocation{
		ID:        fmt.Sprintf("mode-%s-f%03d-var%d-%s-%d", ti.InitFmt(), ti.LeadHours(), v.Index, v.FcstLevel, pairIndex),
		CreatedAt: clock.Now().UTC(),
		FcstVar:   v.FcstName,
		ObsVar:    v.ObsName,
	}
}

// Args assembles the command-line arguments after the app path:
// forecast and observation files, config file, output directory, the
// optional merge config, and verbosity.
func (inv Invocation) Args() ([]string, error) {
	switch {
	case inv.App == "":
		return nil, fmt.Errorf("%w: no app path", ErrNoCommand)
	case len(inv.Inputs) < 2:
		return nil, fmt.Errorf("%w: need forecast and observation inputs, have %d", ErrNoCommand, len(inv.Inputs))
	case inv.ConfigFile == "":
		return nil, fmt.Errorf("%w: no config file", ErrNoCommand)
	case inv.OutputDir == "":
		return nil, fmt.Errorf("%w: no output directory", ErrNoCommand)
	}

	args := make([]string, 0, len(inv.Inputs)+7)
	args = append(args, inv.Inputs...)
	args = append(args, inv.ConfigFile, "-outdir", inv.OutputDir)
	if inv.MergeConfig != "" {
		args = append(args, "-config_merge", inv.MergeConfig)
	}
	args = append(args, "-v", strconv.Itoa(inv.Verbosity))
	return args, nil
}

// CommandLine renders the full command for logs.
func (inv Invocation) CommandLine() (string, error) {
	args, err := inv.Args()
	if err != nil {
		return "", err
	}
	return inv.App + " " + strings.Join(args, " "), nil
}
