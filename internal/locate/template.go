package locate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/storm-mode-driver/internal/domain"
)

// tagRe matches filename template tags such as {init?fmt=%Y%m%d%H}.
var tagRe = regexp.MustCompile(`\{(init|valid|lead)\?fmt=([^}]*)\}`)

// Fill substitutes the time tags of a filename template. Init and valid
// tags accept %Y %y %m %d %j %H %M %S; lead tags accept %H, %HH and %HHH
// (hours padded to 2 or 3 digits), %M and %S.
func Fill(template string, ti domain.TimeInfo) (string, error) {
	var firstErr error
	out := tagRe.ReplaceAllStringFunc(template, func(tag string) string {
		m := tagRe.FindStringSubmatch(tag)
		var (
			s   string
			err error
		)
		switch m[1] {
		case "init":
			s, err = formatTime(ti.Init, m[2])
		case "valid":
			s, err = formatTime(ti.Valid, m[2])
		case "lead":
			s, err = formatLead(ti.Lead, m[2])
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("template tag %s: %w", tag, err)
		}
		return s
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func formatTime(t time.Time, format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case '%':
			b.WriteByte('%')
		default:
			return "", fmt.Errorf("unsupported directive %%%c", format[i])
		}
	}
	return b.String(), nil
}

func formatLead(lead time.Duration, format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'H':
			width := 1
			for i+1 < len(format) && format[i+1] == 'H' {
				width++
				i++
			}
			fmt.Fprintf(&b, "%0*d", max(width, 2), int(lead/time.Hour))
		case 'M':
			fmt.Fprintf(&b, "%02d", int(lead%time.Hour/time.Minute))
		case 'S':
			fmt.Fprintf(&b, "%02d", int(lead%time.Minute/time.Second))
		case '%':
			b.WriteByte('%')
		default:
			return "", fmt.Errorf("unsupported lead directive %%%c", format[i])
		}
	}
	return b.String(), nil
}
