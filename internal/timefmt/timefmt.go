// Package timefmt converts between clock strings and whole seconds.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is rendered in place of a duration that could not be computed.
const NotAvailable = "N/A"

// fullWidthColon is the colon typed by Japanese input methods.
const fullWidthColon = "："

// ParseDuration parses "H:MM:SS", "M:SS" or a bare number of seconds.
// Both ASCII and full-width colons are accepted. The second return value is
// false for blank, negative or otherwise malformed input.
func ParseDuration(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	parts := strings.Split(strings.ReplaceAll(text, fullWidthColon, ":"), ":")
	if len(parts) > 3 {
		return 0, false
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		values[i] = n
	}

	switch len(values) {
	case 3:
		return values[0]*3600 + values[1]*60 + values[2], true
	case 2:
		return values[0]*60 + values[1], true
	default:
		return values[0], true
	}
}

// Format renders seconds as H:MM:SS when forceHours is set or the value
// reaches an hour, and as M:SS otherwise. The value is rounded to the nearest
// second first. Negative and non-finite values render as NotAvailable.
func Format(seconds float64, forceHours bool) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return NotAvailable
	}
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if forceHours || h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatOptional is Format for a value that may be missing.
func FormatOptional(seconds *int, forceHours bool) string {
	if seconds == nil {
		return NotAvailable
	}
	return Format(float64(*seconds), forceHours)
}

// PerKilometre renders a pace such as "4:31/km".
func PerKilometre(seconds int) string {
	return Format(float64(seconds), false) + "/km"
}
