package domain

import "strings"

// VarInfo describes one forecast/observation field pair to verify. The
// threshold lists are paired by position.
type VarInfo struct {
	Index int

	FcstName   string
	FcstLevel  string
	FcstExtra  string
	FcstThresh []string

	ObsName   string
	ObsLevel  string
	ObsExtra  string
	ObsThresh []string
}

// SplitLevel separates a leading level-type letter from the level value:
// "P500" gives ("P", "500") and "500" gives ("", "500").
func SplitLevel(level string) (levelType, value string) {
	level = strings.TrimSpace(level)
	if level == "" {
		return "", ""
	}
	c := level[0]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		return level[:1], level[1:]
	}
	return "", level
}

// zfill left-pads s with zeros to width, keeping a leading sign in front.
func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}
