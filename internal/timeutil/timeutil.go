// Package timeutil converts between the "HH:MM:SS" clock strings used on the
// wire and seconds on the video time axis.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// SecondsToClock renders seconds as "HH:MM:SS", truncating fractions.
func SecondsToClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ClockToSeconds parses "HH:MM:SS", "MM:SS" or "SS" clock strings. Malformed
// input yields 0, matching the forgiving behavior expected of display
// strings.
func ClockToSeconds(clock string) float64 {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0
		}
		total = total*60 + v
	}
	return total
}

// Compact drops zero segments for display: "00:01:30" becomes "01:30". This
// is the form the relation delete tuple uses.
func Compact(clock string) string {
	parts := strings.Split(clock, ":")
	kept := parts[:0]
	for _, p := range parts {
		if p != "00" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}
