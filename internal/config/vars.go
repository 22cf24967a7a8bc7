package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/couchcryptid/storm-mode-driver/internal/domain"
	"github.com/couchcryptid/storm-mode-driver/internal/threshold"
)

var fcstVarName = regexp.MustCompile(`^FCST_VAR(\d+)_NAME$`)

// ParseVarList reads the FCST_VAR<n>_* and OBS_VAR<n>_* keys into one
// VarInfo per level, ordered by n and then by level. Observation name,
// levels and thresholds default to the forecast values.
func ParseVarList(store Store) ([]domain.VarInfo, error) {
	var indices []int
	for _, key := range store.Keys(SectionConfig) {
		if m := fcstVarName.FindStringSubmatch(key); m != nil {
			n, _ := strconv.Atoi(m[1])
			indices = append(indices, n)
		}
	}
	sort.Ints(indices)

	var (
		vars []domain.VarInfo
		errs []error
	)
	for _, n := range indices {
		vs, err := parseVar(store, n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vars = append(vars, vs...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return vars, nil
}

func parseVar(store Store, n int) ([]domain.VarInfo, error) {
	key := func(side domain.Side, suffix string) string {
		return fmt.Sprintf("%s_VAR%d_%s", side, n, suffix)
	}
	list := func(side domain.Side, suffix string) ([]string, error) {
		return store.List(SectionConfig, key(side, suffix))
	}

	fcstName := store.String(SectionConfig, key(domain.Forecast, "NAME"), "")
	if fcstName == "" {
		return nil, &ConfigError{Section: SectionConfig, Key: key(domain.Forecast, "NAME"), Err: ErrMissingKey}
	}
	fcstLevels, err := list(domain.Forecast, "LEVELS")
	if err != nil {
		return nil, err
	}
	if len(fcstLevels) == 0 {
		fcstLevels = []string{""}
	}
	fcstThresh, err := list(domain.Forecast, "THRESH")
	if err != nil {
		return nil, err
	}
	if err := threshold.ValidateList(fcstThresh); err != nil {
		return nil, &ConfigError{Section: SectionConfig, Key: key(domain.Forecast, "THRESH"), Err: err}
	}

	obsName := store.String(SectionConfig, key(domain.Observation, "NAME"), fcstName)
	obsLevels := fcstLevels
	if store.Has(SectionConfig, key(domain.Observation, "LEVELS")) {
		if obsLevels, err = list(domain.Observation, "LEVELS"); err != nil {
			return nil, err
		}
	}
	obsThresh := fcstThresh
	if store.Has(SectionConfig, key(domain.Observation, "THRESH")) {
		if obsThresh, err = list(domain.Observation, "THRESH"); err != nil {
			return nil, err
		}
		if err := threshold.ValidateList(obsThresh); err != nil {
			return nil, &ConfigError{Section: SectionConfig, Key: key(domain.Observation, "THRESH"), Err: err}
		}
	}

	if len(obsLevels) != len(fcstLevels) {
		return nil, &ConfigError{Section: SectionConfig, Key: key(domain.Observation, "LEVELS"),
			Err: fmt.Errorf("has %d levels, forecast has %d", len(obsLevels), len(fcstLevels))}
	}
	if len(obsThresh) != len(fcstThresh) {
		return nil, &ConfigError{Section: SectionConfig, Key: key(domain.Observation, "THRESH"),
			Err: fmt.Errorf("has %d thresholds, forecast has %d", len(obsThresh), len(fcstThresh))}
	}

	fcstExtra := store.String(SectionConfig, key(domain.Forecast, "OPTIONS"), "")
	obsExtra := store.String(SectionConfig, key(domain.Observation, "OPTIONS"), "")

	vars := make([]domain.VarInfo, len(fcstLevels))
	for i := range fcstLevels {
		vars[i] = domain.VarInfo{
			Index:      n,
			FcstName:   fcstName,
			FcstLevel:  fcstLevels[i],
			FcstExtra:  fcstExtra,
			FcstThresh: fcstThresh,
			ObsName:    obsName,
			ObsLevel:   obsLevels[i],
			ObsExtra:   obsExtra,
			ObsThresh:  obsThresh,
		}
	}
	return vars, nil
}
