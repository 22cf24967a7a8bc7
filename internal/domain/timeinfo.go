package domain

import (
	"fmt"
	"time"
)

const timestampLayout = "20060102150405"

// TimeInfo identifies one forecast time step.
type TimeInfo struct {
	Init  time.Time
	Valid time.Time
	Lead  time.Duration
}

// NewTimeInfo derives the valid time from an init time and lead.
func NewTimeInfo(init time.Time, lead time.Duration) TimeInfo {
	init = init.UTC()
	return TimeInfo{Init: init, Valid: init.Add(lead), Lead: lead}
}

// InitFmt returns the init time as YYYYMMDDHHMMSS.
func (t TimeInfo) InitFmt() string { return t.Init.Format(timestampLayout) }

// ValidFmt returns the valid time as YYYYMMDDHHMMSS.
func (t TimeInfo) ValidFmt() string { return t.Valid.Format(timestampLayout) }

// LeadHours returns the lead truncated to whole hours.
func (t TimeInfo) LeadHours() int { return int(t.Lead / time.Hour) }

// ValidHHMM returns the zero-padded hour and minute of the valid time.
func (t TimeInfo) ValidHHMM() string { return t.Valid.Format("1504") }

func (t TimeInfo) String() string {
	return fmt.Sprintf("init %s f%03d", t.InitFmt(), t.LeadHours())
}
