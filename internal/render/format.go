package render

import (
	"strconv"
	"time"

	"github.com/gookit/color"
)

// timeLayout is the timestamp format used across the CLI output.
const timeLayout = "2006-01-02 15:04:05"

// Never is rendered for state that was never reached: a zero timestamp or
// the badge of a table that was never analyzed.
const Never = "never"

// Health score bands for badge coloring.
const (
	healthGreenMin  = 80
	healthYellowMin = 50
)

// HealthBadge renders a 0-100 health score as a colored badge. Scores in
// the green band render green, the middle band yellow, the rest red.
// Negative scores mean the table was never analyzed and render a gray
// Never badge.
func HealthBadge(health int) string {
	switch {
	case health < 0:
		return color.Gray.Sprint(Never)
	case health >= healthGreenMin:
		return color.Green.Sprint(strconv.Itoa(health))
	case health >= healthYellowMin:
		return color.Yellow.Sprint(strconv.Itoa(health))
	default:
		return color.Red.Sprint(strconv.Itoa(health))
	}
}

// FormatMillis renders an epoch-milliseconds timestamp in UTC. Zero
// renders Never.
func FormatMillis(ms int64) string {
	if ms == 0 {
		return Never
	}
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}
