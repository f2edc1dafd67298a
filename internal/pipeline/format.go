package pipeline

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as MM:SS, or HH:MM:SS once an hour is
// reached, rounding to the nearest second. nil renders as "Unknown".
func FormatDuration(seconds *float64) string {
	if seconds == nil || math.IsNaN(*seconds) || *seconds < 0 {
		return "Unknown"
	}
	total := int64(math.Round(*seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
