package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-mode-driver/internal/domain"
)

// ErrNoTimes is returned when neither the command line nor the config
// file names an initialization time.
var ErrNoTimes = errors.New("no initialization times configured")

// initLayouts maps the length of an init time string to its layout.
var initLayouts = map[int]string{
	8:  "20060102",
	10: "2006010215",
	12: "200601021504",
	14: "20060102150405",
}

// ParseInit reads an initialization time written as YYYYMMDD[HH[MM[SS]]].
func ParseInit(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout, ok := initLayouts[len(s)]
	if !ok {
		return time.Time{}, fmt.Errorf("init time %q: want YYYYMMDD, YYYYMMDDHH, YYYYMMDDHHMM or YYYYMMDDHHMMSS", s)
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("init time %q: %w", s, err)
	}
	return t, nil
}

// ParseLead reads a forecast lead. A bare integer is a number of hours;
// anything else must be a Go duration such as 90m or 3h.
func ParseLead(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if h, err := strconv.Atoi(s); err == nil {
		return time.Duration(h) * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("lead %q: want hours or a duration", s)
	}
	return d, nil
}

// Times crosses every init time with every lead, init times first.
// An empty lead list means a single zero lead.
func Times(inits, leads []string) ([]domain.TimeInfo, error) {
	if len(inits) == 0 {
		return nil, ErrNoTimes
	}
	if len(leads) == 0 {
		leads = []string{"0"}
	}
	durations := make([]time.Duration, len(leads))
	for i, l := range leads {
		d, err := ParseLead(l)
		if err != nil {
			return nil, err
		}
		durations[i] = d
	}

	out := make([]domain.TimeInfo, 0, len(inits)*len(durations))
	for _, s := range inits {
		init, err := ParseInit(s)
		if err != nil {
			return nil, err
		}
		for _, d := range durations {
			out = append(out, domain.NewTimeInfo(init, d))
		}
	}
	return out, nil
}

// TimeLoop reads the run's time steps from INIT_BEG, INIT_END,
// INIT_INCREMENT (seconds, default 86400) and LEAD_SEQ.
func TimeLoop(store Store) ([]domain.TimeInfo, error) {
	begin := store.String(SectionConfig, "INIT_BEG", "")
	if begin == "" {
		return nil, ErrNoTimes
	}
	start, err := ParseInit(begin)
	if err != nil {
		return nil, &ConfigError{Section: SectionConfig, Key: "INIT_BEG", Err: err}
	}
	end := start
	if s := store.String(SectionConfig, "INIT_END", ""); s != "" {
		if end, err = ParseInit(s); err != nil {
			return nil, &ConfigError{Section: SectionConfig, Key: "INIT_END", Err: err}
		}
	}
	if end.Before(start) {
		return nil, &ConfigError{Section: SectionConfig, Key: "INIT_END", Err: errors.New("before INIT_BEG")}
	}
	step, err := store.Int(SectionConfig, "INIT_INCREMENT", 86400)
	if err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, &ConfigError{Section: SectionConfig, Key: "INIT_INCREMENT", Err: errors.New("must be positive")}
	}
	leads, err := store.List(SectionConfig, "LEAD_SEQ")
	if err != nil {
		return nil, err
	}

	var inits []string
	for t := start; !t.After(end); t = t.Add(time.Duration(step) * time.Second) {
		inits = append(inits, t.Format("20060102150405"))
	}
	times, err := Times(inits, leads)
	if err != nil {
		return nil, &ConfigError{Section: SectionConfig, Key: "LEAD_SEQ", Err: err}
	}
	return times, nil
}
