// Package locate finds MODE input files by filling filename templates
// with the time step being processed.
package locate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
)

// ErrNotFound means no file matched within the search window.
var ErrNotFound = errors.New("file not found")

const windowStep = time.Minute

// TemplateLocator resolves forecast and observation files from the input
// directories and templates of a RunConfig.
type TemplateLocator struct {
	fs   afero.Fs
	fcst config.SideConfig
	obs  config.SideConfig
}

// NewTemplateLocator creates a locator over fs. Pass afero.NewOsFs() for
// the real filesystem.
func NewTemplateLocator(fs afero.Fs, cfg *config.RunConfig) *TemplateLocator {
	return &TemplateLocator{fs: fs, fcst: cfg.Fcst, obs: cfg.Obs}
}

// FindForecast returns the forecast file for ti. The search window shifts
// the lead while keeping the init time.
func (l *TemplateLocator) FindForecast(ctx context.Context, ti domain.TimeInfo, _ domain.VarInfo) (string, error) {
	return l.find(ctx, l.fcst, ti)
}

// FindObservation returns the observation file valid at ti, or the one
// closest to it inside the window.
func (l *TemplateLocator) FindObservation(ctx context.Context, ti domain.TimeInfo, _ domain.VarInfo) (string, error) {
	return l.find(ctx, l.obs, ti)
}

func (l *TemplateLocator) find(ctx context.Context, side config.SideConfig, ti domain.TimeInfo) (string, error) {
	for _, offset := range windowOffsets(side.WindowBegin, side.WindowEnd) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := domain.NewTimeInfo(ti.Init, ti.Lead+offset)
		name, err := Fill(side.InputTemplate, candidate)
		if err != nil {
			return "", err
		}
		p := filepath.Join(side.InputDir, name)
		ok, err := afero.Exists(l.fs, p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		if ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s input in %s for %s: %w", side.Side, side.InputDir, ti, ErrNotFound)
}

// windowOffsets lists the offsets to try, nearest first; on ties the
// earlier time wins. begin and end are in seconds.
func windowOffsets(begin, end int) []time.Duration {
	offsets := []time.Duration{0}
	lo := time.Duration(min(begin, 0)) * time.Second
	hi := time.Duration(max(end, 0)) * time.Second
	for d := windowStep; d <= -lo || d <= hi; d += windowStep {
		if d <= -lo {
			offsets = append(offsets, -d)
		}
		if d <= hi {
			offsets = append(offsets, d)
		}
	}
	return offsets
}
